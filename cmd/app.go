package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"roombook/booking"
	"roombook/calendar"
	"roombook/picker"
	"roombook/storage"
)

var stdin = os.Stdin

// app wires one calendar grid to the new-booking and details modals, the way
// the browser page does: a grid selection opens the form, a click on an event
// opens the details.
type app struct {
	loc     *time.Location
	store   *storage.EventStore
	grid    *calendar.Grid
	form    *booking.FormController
	details *booking.DetailsController
	buttons *presetButtons
	pickers picker.Views
}

func newApp(ctx context.Context, out, errOut io.Writer) (*app, error) {
	loc, err := cfg.location()
	if err != nil {
		return nil, err
	}
	store, err := storage.OpenEventStore(logger)
	if err != nil {
		return nil, err
	}
	grid, err := calendar.NewGrid(client, store, calendar.GridConfig{Location: loc, Logger: logger})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	group := picker.NewGroup()
	notifier := stderrNotifier{out: errOut}
	a := &app{
		loc:     loc,
		store:   store,
		grid:    grid,
		buttons: &presetButtons{},
		pickers: newFieldViews(),
	}

	a.form, err = booking.NewFormController(booking.FormDeps{
		Group:    group,
		Pickers:  a.pickers,
		Buttons:  a.buttons,
		View:     &formView{errOut: errOut},
		Backend:  client,
		Calendar: grid,
		Notifier: notifier,
		Logger:   logger,
	}, booking.FormConfig{
		OpeningHour:  &cfg.OpeningHour,
		ClosingHour:  cfg.ClosingHour,
		DefaultTitle: cfg.DefaultTitle,
		Presets:      cfg.Presets,
		FlashDelay:   cfg.FlashDelay,
		Formats:      cfg.Formats,
		Location:     loc,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a.details, err = booking.NewDetailsController(booking.DetailsDeps{
		Group:     group,
		Pickers:   newFieldViews(),
		View:      &detailsView{out: out, errOut: errOut, quiet: outputJSON},
		Backend:   client,
		Calendar:  grid,
		Notifier:  notifier,
		Confirmer: terminalConfirmer{in: stdin, out: errOut, assume: assumeYes},
		Logger:    logger,
	}, booking.DetailsConfig{
		OpeningHour: &cfg.OpeningHour,
		ClosingHour: cfg.ClosingHour,
		Formats:     cfg.Formats,
		Location:    loc,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	grid.OnRangeSelected(func(start, end time.Time) {
		a.form.OpenForNewBooking(ctx, start, end)
	})
	grid.OnEventActivated(a.details.Populate)
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
