package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"roombook/api"
	"roombook/booking"
	"roombook/calendar"
	"roombook/picker"

	"github.com/spf13/cobra"
)

func bookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Browse and manage bookings",
	}

	cmd.AddCommand(bookingsListCmd())
	cmd.AddCommand(bookingsShowCmd())
	cmd.AddCommand(bookingsEditCmd())
	cmd.AddCommand(bookingsDeleteCmd())
	cmd.AddCommand(bookingsExportCmd())
	return cmd
}

type rangeFlags struct {
	room string
	from string
	to   string
	days int
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.room, "room", "", "Only this room (name, id or favourite alias)")
	cmd.Flags().StringVar(&f.from, "from", "today", "First day")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day (default --from plus --days)")
	cmd.Flags().IntVar(&f.days, "days", 7, "Number of days when --to is not set")
}

// load fetches the feed for the selected room and returns the events in the
// selected days.
func (f *rangeFlags) load(ctx context.Context, a *app) ([]api.Event, error) {
	if f.room != "" {
		roomID, err := resolveRoom(f.room, cfg.FavouriteRooms, func() ([]api.Room, error) {
			return client.ListRooms(ctx)
		})
		if err != nil {
			return nil, err
		}
		a.grid.SetRoomFilter(roomID)
	}

	now := time.Now().In(a.loc)
	first, err := parseDateInput(f.from, now, cfg.Formats)
	if err != nil {
		return nil, err
	}
	last := first.AddDays(f.days - 1)
	if f.to != "" {
		last, err = parseDateInput(f.to, now, cfg.Formats)
		if err != nil {
			return nil, err
		}
	}
	if last.Before(first) {
		return nil, fmt.Errorf("--from must be on or before --to")
	}

	if err := a.grid.RefetchEvents(ctx); err != nil {
		return nil, err
	}
	from, _ := dayBounds(first, a.loc)
	_, to := dayBounds(last, a.loc)
	return a.grid.Events(ctx, from, to)
}

func bookingsListCmd() *cobra.Command {
	var flags rangeFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings day by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, os.Stdout, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := flags.load(ctx, a)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(events)
			}
			if len(events) == 0 {
				fmt.Println("No bookings found.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			if outputCompact {
				for _, e := range events {
					fmt.Fprintf(writer, "%d\t%s\t%s\n", e.ID, e.Start.Format("2006-01-02"), calendar.EventLabel(e))
				}
				return writer.Flush()
			}
			fmt.Fprintln(writer, "ID\tDATE\tTIME\tTITLE\tROOM\tORGANIZER")
			for _, e := range events {
				fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\n",
					e.ID,
					e.Start.Format("Mon 2 Jan"),
					booking.FormatEventTime(e.Start, e.End),
					e.Title,
					e.RoomName,
					e.Organizer)
			}
			return writer.Flush()
		},
	}

	flags.register(cmd)
	return cmd
}

// activate refetches the feed and opens the details modal for id.
func activate(ctx context.Context, a *app, arg string) (api.Event, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return api.Event{}, fmt.Errorf("invalid booking id %q", arg)
	}
	if err := a.grid.RefetchEvents(ctx); err != nil {
		return api.Event{}, err
	}
	return a.grid.Activate(ctx, id)
}

func bookingsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, os.Stdout, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			event, err := activate(ctx, a, args[0])
			if err != nil {
				return err
			}
			defer a.details.Close()
			if outputJSON {
				return writeJSON(event)
			}
			return nil
		},
	}
	return cmd
}

func bookingsEditCmd() *cobra.Command {
	var title string
	var date string
	var start string
	var end string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, day or time of a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, os.Stdout, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := activate(ctx, a, args[0]); err != nil {
				return err
			}
			defer a.details.Close()
			if err := a.details.EnterEditMode(); err != nil {
				return err
			}

			if cmd.Flags().Changed("title") {
				if err := a.details.SetTitle(title); err != nil {
					return err
				}
			}
			if date != "" {
				day, err := parseDateInput(date, time.Now().In(a.loc), cfg.Formats)
				if err != nil {
					return err
				}
				if err := a.details.SetDate(day); err != nil {
					return err
				}
			}
			if err := selectClock(a.details.SelectTime, start, picker.StartHour, picker.StartMinute); err != nil {
				return err
			}
			if err := selectClock(a.details.SelectTime, end, picker.EndHour, picker.EndMinute); err != nil {
				return err
			}

			draft, err := a.details.EditDraft()
			if err != nil {
				return err
			}
			if err := a.details.SubmitEdit(ctx); err != nil {
				return err
			}
			fmt.Printf("Updated booking %s: %s %s %s\n", args[0], draft.Title, booking.DisplayRange(draft.Time), cfg.DisplayDate(draft.Date))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&date, "date", "", "New day")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM)")
	return cmd
}

func selectClock(sel func(picker.Field, string) error, input string, hourField, minuteField picker.Field) error {
	if input == "" {
		return nil
	}
	minutes, err := parseClock(input)
	if err != nil {
		return err
	}
	hour, minute := clockValues(minutes)
	if err := sel(hourField, hour); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := sel(minuteField, minute); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	return nil
}

func bookingsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx, os.Stdout, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			event, err := activate(ctx, a, args[0])
			if err != nil {
				return err
			}
			defer a.details.Close()
			if err := a.details.Delete(ctx); err != nil {
				return err
			}
			fmt.Printf("Deleted booking %d (%s).\n", event.ID, event.Title)
			return nil
		},
	}
	return cmd
}

func bookingsExportCmd() *cobra.Command {
	var flags rangeFlags
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export bookings as an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return fmt.Errorf("--out is required")
			}
			ctx := context.Background()
			a, err := newApp(ctx, os.Stdout, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := flags.load(ctx, a)
			if err != nil {
				return err
			}

			host := ""
			if base, err := url.Parse(cfg.BaseURL); err == nil {
				host = base.Hostname()
			}
			file, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := calendar.WriteICS(file, events, host, time.Now()); err != nil {
				_ = file.Close()
				_ = os.Remove(outPath)
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Printf("Exported %d bookings to %s.\n", len(events), outPath)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outPath, "out", "", "Output .ics file")
	return cmd
}
