package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"roombook/api"
	"roombook/booking"
	"roombook/preset"

	"github.com/spf13/cobra"
)

const occurrencePreviewLimit = 52

type bookOutput struct {
	ID          int                `json:"id,omitempty"`
	DryRun      bool               `json:"dry_run,omitempty"`
	Request     api.BookingRequest `json:"request"`
	Occurrences []time.Time        `json:"occurrences,omitempty"`
}

func bookCmd() *cobra.Command {
	var date string
	var start string
	var end string
	var presetMinutes int
	var room string
	var title string
	var description string
	var public bool
	var recurring string
	var until string
	var visibility string
	var companies []int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			if room == "" {
				return fmt.Errorf("--room is required")
			}
			ctx := context.Background()
			a, err := newApp(ctx, os.Stdout, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now().In(a.loc)
			if start == "" {
				a.form.OpenForNewBooking(ctx, time.Time{}, time.Time{})
			} else {
				day := booking.DateOf(now)
				if date != "" {
					day, err = parseDateInput(date, now, cfg.Formats)
					if err != nil {
						return err
					}
				}
				startMinutes, err := parseClock(start)
				if err != nil {
					return err
				}
				if end == "" {
					a.form.OpenForNewBooking(ctx, day.At(startMinutes, a.loc), time.Time{})
				} else {
					endMinutes, err := parseClock(end)
					if err != nil {
						return err
					}
					if err := a.grid.SelectRange(day.At(startMinutes, a.loc), day.At(endMinutes, a.loc)); err != nil {
						return err
					}
				}
			}
			defer a.form.Cancel()

			if start == "" && date != "" {
				day, err := parseDateInput(date, now, cfg.Formats)
				if err != nil {
					return err
				}
				if err := a.form.SetDate(day); err != nil {
					return err
				}
			}
			if presetMinutes > 0 {
				if err := a.form.ApplyPreset(presetMinutes); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("title") {
				if err := a.form.SetTitle(title); err != nil {
					return err
				}
			}
			if err := a.form.SetDescription(description); err != nil {
				return err
			}
			if err := a.form.SetPublic(public); err != nil {
				return err
			}

			mode, err := booking.ParseRecurrenceMode(recurring)
			if err != nil {
				return err
			}
			var untilDate *booking.CalendarDate
			if until != "" {
				parsed, err := parseDateInput(until, now, cfg.Formats)
				if err != nil {
					return err
				}
				untilDate = &parsed
			}
			if err := a.form.SetRecurrence(mode, untilDate); err != nil {
				return err
			}

			if visibility != "" || len(companies) > 0 {
				kind, err := booking.ParseVisibilityType(visibility)
				if err != nil {
					return err
				}
				if len(companies) > 0 && visibility == "" {
					kind = booking.VisibilitySpecific
				}
				if err := a.form.SetVisibility(ctx, kind, companies); err != nil {
					return err
				}
			}

			roomID, err := resolveRoom(room, cfg.FavouriteRooms, func() ([]api.Room, error) {
				return a.form.Rooms(ctx)
			})
			if err != nil {
				return err
			}
			if _, err := a.form.Rooms(ctx); err != nil {
				return fmt.Errorf("load rooms: %w", err)
			}
			if err := a.form.SelectRoom(roomID); err != nil {
				return err
			}

			if dryRun {
				return previewBooking(a)
			}

			draft := a.form.Draft()
			out, err := submitBooking(ctx, a)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(out)
			}
			fmt.Printf("Booked: %s %s %s\n", strings.TrimSpace(draft.Title), booking.DisplayRange(draft.Time), cfg.DisplayDate(draft.Date))
			if !outputCompact {
				if presetMinutes > 0 {
					fmt.Printf("Duration: %s\n", preset.FormatDuration(presetMinutes))
				}
				if mode != booking.RecurNone {
					fmt.Printf("Repeats: %s\n", mode)
				}
			}
			fmt.Printf("Booking ID: %d\n", out.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM); default now")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM); default one hour after start")
	cmd.Flags().IntVar(&presetMinutes, "preset", 0, "Duration preset in minutes")
	cmd.Flags().StringVar(&room, "room", "", "Room name, id or favourite alias")
	cmd.Flags().StringVar(&title, "title", booking.DefaultTitle, "Booking title")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().BoolVar(&public, "public", false, "Visible to everyone")
	cmd.Flags().StringVar(&recurring, "recurring", "none", "Repeat: none, daily, weekly or monthly")
	cmd.Flags().StringVar(&until, "until", "", "Last day of the series")
	cmd.Flags().StringVar(&visibility, "visibility", "", "company, public or specific_companies")
	cmd.Flags().IntSliceVar(&companies, "company", nil, "Company id allowed to see the booking (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the request and occurrences without booking")
	return cmd
}

// submitBooking sends the open form and reports the request that went out.
func submitBooking(ctx context.Context, a *app) (bookOutput, error) {
	payload, err := a.form.Payload()
	if err != nil {
		return bookOutput{}, err
	}
	id, err := a.form.Submit(ctx)
	if err != nil {
		return bookOutput{}, err
	}
	return bookOutput{ID: id, Request: payload}, nil
}

func previewBooking(a *app) error {
	payload, err := a.form.Payload()
	if err != nil {
		return err
	}
	occurrences, err := booking.Occurrences(a.form.Draft(), a.loc, occurrencePreviewLimit)
	if err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(bookOutput{DryRun: true, Request: payload, Occurrences: occurrences})
	}

	fmt.Printf("Would book: %s\n", payload.Title)
	fmt.Printf("  start_time: %s\n", payload.StartTime)
	fmt.Printf("  end_time:   %s\n", payload.EndTime)
	fmt.Printf("  room_id:    %d\n", payload.RoomID)
	if payload.RecurringEndDate != nil {
		fmt.Printf("  repeats:    %s until %s\n", payload.Recurring, *payload.RecurringEndDate)
	}
	if len(occurrences) > 1 && !outputCompact {
		fmt.Printf("%d occurrences:\n", len(occurrences))
		for _, occ := range occurrences {
			fmt.Printf("  %s\n", occ.Format("Mon 2 Jan 2006 15:04"))
		}
	}
	return nil
}
