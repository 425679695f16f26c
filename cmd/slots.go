package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"roombook/picker"
	"roombook/preset"
	"roombook/slots"

	"github.com/spf13/cobra"
)

type slotsOutput struct {
	Hours   []slots.Slot `json:"hours"`
	Minutes []slots.Slot `json:"minutes"`
	Presets []int        `json:"presets"`
}

func slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show the bookable hours, minutes and duration presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(context.Background(), os.Stdout, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			out := offeredSlots(a)
			if outputJSON {
				return writeJSON(out)
			}

			labels := make([]string, 0, len(out.Hours))
			for _, h := range out.Hours {
				labels = append(labels, h.Label)
			}
			minutes := make([]string, 0, len(out.Minutes))
			for _, m := range out.Minutes {
				minutes = append(minutes, m.Value)
			}
			presets := make([]string, 0, len(out.Presets))
			for _, p := range out.Presets {
				presets = append(presets, preset.FormatDuration(p))
			}
			fmt.Printf("Hours:   %s\n", strings.Join(labels, ", "))
			fmt.Printf("Minutes: %s\n", strings.Join(minutes, ", "))
			fmt.Printf("Presets: %s\n", strings.Join(presets, ", "))
			return nil
		},
	}
	return cmd
}

// offeredSlots reports what the new-booking form actually offers.
func offeredSlots(a *app) slotsOutput {
	set := a.form.Pickers()
	return slotsOutput{
		Hours:   set.Control(picker.StartHour).Options(),
		Minutes: set.Control(picker.StartMinute).Options(),
		Presets: a.form.Presets().Durations(),
	}
}
