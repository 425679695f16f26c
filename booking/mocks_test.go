package booking

import (
	"context"
	"sync"
	"time"

	"roombook/api"
	"roombook/picker/pickertest"

	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListRooms(ctx context.Context) ([]api.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.Room), args.Error(1)
}

func (m *MockBackend) ListCompanies(ctx context.Context) ([]api.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.Company), args.Error(1)
}

func (m *MockBackend) CreateBooking(ctx context.Context, payload api.BookingRequest) (int, error) {
	args := m.Called(ctx, payload)
	return args.Int(0), args.Error(1)
}

func (m *MockBackend) UpdateBooking(ctx context.Context, id int, payload api.BookingRequest) error {
	args := m.Called(ctx, id, payload)
	return args.Error(0)
}

func (m *MockBackend) DeleteBooking(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) RefetchEvents(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []string
}

func (n *recordingNotifier) Alert(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, message)
}

func (n *recordingNotifier) Alerts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.alerts...)
}

type recordingButtons struct {
	mu     sync.Mutex
	active int
	calls  int
}

func (b *recordingButtons) SetActive(minutes int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = minutes
	b.calls++
}

func (b *recordingButtons) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

type fakeFormView struct {
	mu             sync.Mutex
	visible        bool
	title          string
	date           CalendarDate
	rooms          []api.Room
	selectedRoom   int
	companies      []api.Company
	companySection bool
	recurrence     Recurrence
	submitting     bool
	submitHistory  []bool
	errors         []string
}

func (v *fakeFormView) Show() { v.mu.Lock(); v.visible = true; v.mu.Unlock() }
func (v *fakeFormView) Hide() { v.mu.Lock(); v.visible = false; v.mu.Unlock() }

func (v *fakeFormView) SetTitle(title string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.title = title
}

func (v *fakeFormView) SetDate(date CalendarDate) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.date = date
}

func (v *fakeFormView) SetRooms(rooms []api.Room) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rooms = rooms
}

func (v *fakeFormView) SetSelectedRoom(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selectedRoom = id
}

func (v *fakeFormView) SetCompanies(companies []api.Company) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.companies = companies
}

func (v *fakeFormView) ShowCompanySelector(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.companySection = visible
}

func (v *fakeFormView) SetRecurrence(r Recurrence) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.recurrence = r
}

func (v *fakeFormView) SetSubmitting(submitting bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitting = submitting
	v.submitHistory = append(v.submitHistory, submitting)
}

func (v *fakeFormView) ShowError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errors = append(v.errors, message)
}

func (v *fakeFormView) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

func (v *fakeFormView) Submitting() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.submitting
}

func (v *fakeFormView) Rooms() []api.Room {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rooms
}

func (v *fakeFormView) Companies() []api.Company {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.companies
}

func (v *fakeFormView) Errors() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.errors...)
}

type fakeDetailsView struct {
	mu         sync.Mutex
	visible    bool
	details    EventDetails
	editing    bool
	editTitle  string
	editDate   CalendarDate
	submitting bool
	errors     []string
}

func (v *fakeDetailsView) Show() { v.mu.Lock(); v.visible = true; v.mu.Unlock() }
func (v *fakeDetailsView) Hide() { v.mu.Lock(); v.visible = false; v.mu.Unlock() }

func (v *fakeDetailsView) ShowDetails(details EventDetails) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.details = details
	v.editing = false
}

func (v *fakeDetailsView) ShowEditForm(title string, date CalendarDate) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editing = true
	v.editTitle = title
	v.editDate = date
}

func (v *fakeDetailsView) SetSubmitting(submitting bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitting = submitting
}

func (v *fakeDetailsView) ShowError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errors = append(v.errors, message)
}

type stubConfirmer struct {
	answer  bool
	prompts []string
}

func (s *stubConfirmer) Confirm(prompt string) bool {
	s.prompts = append(s.prompts, prompt)
	return s.answer
}

// 23 December 2025 is a Tuesday.
var tuesday = time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return tuesday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

var boardroomRooms = []api.Room{
	{ID: 2, Name: "Focus Pod"},
	{ID: 4, Name: "Boardroom"},
}

func newPickerViews() *pickertest.Views {
	return pickertest.NewViews()
}
