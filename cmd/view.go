package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"roombook/api"
	"roombook/booking"
	"roombook/picker"
	"roombook/slots"

	"golang.org/x/term"
)

// fieldView keeps the rendered state of one time dropdown. The terminal has
// no live widget, so commands print the final labels.
type fieldView struct {
	mu      sync.Mutex
	options []slots.Slot
	label   string
	open    bool
	state   picker.VisualState
}

func (v *fieldView) SetOptions(options []slots.Slot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.options = options
}

func (v *fieldView) SetLabel(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = text
}

func (v *fieldView) SetOpen(open bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.open = open
}

func (v *fieldView) SetState(state picker.VisualState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = state
}

func (v *fieldView) Label() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.label
}

func newFieldViews() picker.Views {
	return picker.Views{
		StartHour:   &fieldView{},
		StartMinute: &fieldView{},
		EndHour:     &fieldView{},
		EndMinute:   &fieldView{},
	}
}

type presetButtons struct {
	mu     sync.Mutex
	active int
}

func (b *presetButtons) SetActive(minutes int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = minutes
}

func (b *presetButtons) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

type stderrNotifier struct {
	out io.Writer
}

func (n stderrNotifier) Alert(message string) {
	fmt.Fprintf(n.out, "! %s\n", message)
}

type formView struct {
	mu         sync.Mutex
	errOut     io.Writer
	rooms      []api.Room
	companies  []api.Company
	submitting bool
}

func (v *formView) Show() {}
func (v *formView) Hide() {}
func (v *formView) SetTitle(string) {}
func (v *formView) SetDate(booking.CalendarDate) {}
func (v *formView) SetSelectedRoom(int) {}
func (v *formView) ShowCompanySelector(bool) {}
func (v *formView) SetRecurrence(booking.Recurrence) {}

func (v *formView) SetRooms(rooms []api.Room) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rooms = rooms
}

func (v *formView) SetCompanies(companies []api.Company) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.companies = companies
}

func (v *formView) SetSubmitting(submitting bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitting = submitting
}

func (v *formView) ShowError(message string) {
	fmt.Fprintln(v.errOut, message)
}

type detailsView struct {
	out     io.Writer
	errOut  io.Writer
	quiet   bool
	details booking.EventDetails
}

func (v *detailsView) Show() {}
func (v *detailsView) Hide() {}

func (v *detailsView) ShowDetails(details booking.EventDetails) {
	v.details = details
	if v.quiet {
		return
	}
	fmt.Fprintf(v.out, "%s\n", details.Title)
	fmt.Fprintf(v.out, "  Time:      %s\n", details.Time)
	if details.Organizer != "" {
		fmt.Fprintf(v.out, "  Organizer: %s\n", details.Organizer)
	}
	if details.Room != "" {
		fmt.Fprintf(v.out, "  Room:      %s\n", details.Room)
	}
	if !details.CanEdit {
		fmt.Fprintln(v.out, "  (read only)")
	}
}

func (v *detailsView) ShowEditForm(string, booking.CalendarDate) {}
func (v *detailsView) SetSubmitting(bool) {}

func (v *detailsView) ShowError(message string) {
	fmt.Fprintln(v.errOut, message)
}

// terminalConfirmer prompts on an interactive terminal. Without one it only
// proceeds when --yes was given.
type terminalConfirmer struct {
	in     *os.File
	out    io.Writer
	assume bool
}

func (c terminalConfirmer) Confirm(prompt string) bool {
	if c.assume {
		return true
	}
	if !term.IsTerminal(int(c.in.Fd())) {
		fmt.Fprintf(c.out, "%s Refusing without a terminal; pass --yes.\n", prompt)
		return false
	}
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
