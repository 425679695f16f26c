package preset

import (
	"sync"
	"testing"
	"time"

	"roombook/picker"
	"roombook/picker/pickertest"
	"roombook/slots"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingButtons struct {
	active []int
}

func (b *recordingButtons) SetActive(minutes int) {
	b.active = append(b.active, minutes)
}

func (b *recordingButtons) last() int {
	if len(b.active) == 0 {
		return -1
	}
	return b.active[len(b.active)-1]
}

type recordingNotifier struct {
	alerts []string
}

func (n *recordingNotifier) Alert(message string) {
	n.alerts = append(n.alerts, message)
}

type manualTimers struct {
	mu      sync.Mutex
	pending []func()
}

func (m *manualTimers) AfterFunc(_ time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, f)
}

func (m *manualTimers) fire() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

type fixture struct {
	set      *picker.Set
	views    *pickertest.Views
	buttons  *recordingButtons
	notifier *recordingNotifier
	timers   *manualTimers
	engine   *Engine
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	views := pickertest.NewViews()
	set, err := picker.NewSet(picker.NewGroup(), "new", slots.DefaultHours(), views.Picker())
	require.NoError(t, err)

	f := &fixture{
		set:      set,
		views:    views,
		buttons:  &recordingButtons{},
		notifier: &recordingNotifier{},
		timers:   &manualTimers{},
	}
	f.engine, err = New(set, f.buttons, f.notifier, Config{
		ClosingHour: 18,
		Now:         func() time.Time { return now },
		AfterFunc:   f.timers.AfterFunc,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) selectStart(t *testing.T, hour, minute string) {
	t.Helper()
	require.NoError(t, f.set.Select(picker.StartHour, hour))
	require.NoError(t, f.set.Select(picker.StartMinute, minute))
}

var morning = time.Date(2025, 12, 23, 7, 40, 0, 0, time.UTC)

func TestApplyPresetComputesEnd(t *testing.T) {
	f := newFixture(t, morning)
	f.selectStart(t, "09", "00")

	require.NoError(t, f.engine.ApplyPreset(60))

	r := f.set.Range()
	assert.Equal(t, "10", r.EndHour)
	assert.Equal(t, "00", r.EndMinute)
	assert.Equal(t, "10 am", f.views.EndHour.Label())
	assert.Equal(t, 60, f.buttons.last())

	selected, ok := f.engine.Selected()
	assert.True(t, ok)
	assert.Equal(t, 60, selected)
	assert.Empty(t, f.notifier.alerts)
}

func TestApplyPresetRejectsPastClosing(t *testing.T) {
	f := newFixture(t, morning)
	f.selectStart(t, "17", "30")

	err := f.engine.ApplyPreset(60)
	assert.ErrorIs(t, err, ErrPastClosing)

	r := f.set.Range()
	assert.Empty(t, r.EndHour)
	assert.Empty(t, r.EndMinute)
	assert.Len(t, f.notifier.alerts, 1)
	_, ok := f.engine.Selected()
	assert.False(t, ok)
}

func TestApplyPresetEndingExactlyAtClosing(t *testing.T) {
	f := newFixture(t, morning)
	f.selectStart(t, "17", "00")

	require.NoError(t, f.engine.ApplyPreset(60))
	assert.Equal(t, "18", f.set.Range().EndHour)
}

func TestApplyPresetDefaultsStart(t *testing.T) {
	t.Run("before nine uses nine", func(t *testing.T) {
		f := newFixture(t, morning)
		require.NoError(t, f.engine.ApplyPreset(30))

		r := f.set.Range()
		assert.Equal(t, picker.TimeRange{StartHour: "09", StartMinute: "00", EndHour: "09", EndMinute: "30"}, *r)
		assert.Equal(t, "9 am", f.views.StartHour.Label())
	})

	t.Run("afternoon uses current hour", func(t *testing.T) {
		f := newFixture(t, time.Date(2025, 12, 23, 14, 37, 0, 0, time.UTC))
		require.NoError(t, f.engine.ApplyPreset(90))
		assert.Equal(t, picker.TimeRange{StartHour: "14", StartMinute: "00", EndHour: "15", EndMinute: "30"}, *f.set.Range())
	})

	t.Run("evening is rejected without touching the start", func(t *testing.T) {
		f := newFixture(t, time.Date(2025, 12, 23, 19, 5, 0, 0, time.UTC))
		assert.ErrorIs(t, f.engine.ApplyPreset(30), ErrPastClosing)
		assert.Equal(t, picker.TimeRange{}, *f.set.Range())
	})

	t.Run("missing minute defaults to zero", func(t *testing.T) {
		f := newFixture(t, morning)
		require.NoError(t, f.set.Select(picker.StartHour, "11"))
		require.NoError(t, f.engine.ApplyPreset(60))
		assert.Equal(t, picker.TimeRange{StartHour: "11", StartMinute: "00", EndHour: "12", EndMinute: "00"}, *f.set.Range())
	})
}

func TestStartChangeRecomputesEnd(t *testing.T) {
	f := newFixture(t, morning)
	f.selectStart(t, "09", "00")
	require.NoError(t, f.engine.ApplyPreset(30))
	assert.Equal(t, "30", f.set.Range().EndMinute)

	require.NoError(t, f.set.Select(picker.StartMinute, "15"))

	r := f.set.Range()
	assert.Equal(t, "09", r.EndHour)
	assert.Equal(t, "45", r.EndMinute)
	assert.Empty(t, f.notifier.alerts)
}

func TestRecomputePastClosingIsSilent(t *testing.T) {
	f := newFixture(t, morning)
	f.selectStart(t, "16", "00")
	require.NoError(t, f.engine.ApplyPreset(120))

	require.NoError(t, f.set.Select(picker.StartHour, "17"))

	r := f.set.Range()
	assert.Equal(t, "18", r.EndHour)
	assert.Equal(t, "00", r.EndMinute)
	assert.Empty(t, f.notifier.alerts)
	assert.False(t, f.engine.RecomputeFromStart())
}

func TestManualEndEditClearsPreset(t *testing.T) {
	f := newFixture(t, morning)
	f.selectStart(t, "09", "00")
	require.NoError(t, f.engine.ApplyPreset(30))

	require.NoError(t, f.set.Select(picker.EndHour, "11"))
	_, ok := f.engine.Selected()
	assert.False(t, ok)
	assert.Equal(t, 0, f.buttons.last())

	require.NoError(t, f.set.Select(picker.StartHour, "10"))
	r := f.set.Range()
	assert.Equal(t, "11", r.EndHour)
	assert.Equal(t, "30", r.EndMinute)
}

func TestRecomputeWithoutPresetDoesNothing(t *testing.T) {
	f := newFixture(t, morning)
	f.selectStart(t, "09", "00")
	assert.False(t, f.engine.RecomputeFromStart())
	assert.Empty(t, f.set.Range().EndHour)
}

func TestUpdatedHighlightClears(t *testing.T) {
	f := newFixture(t, morning)
	f.selectStart(t, "09", "00")
	require.NoError(t, f.engine.ApplyPreset(60))

	assert.Equal(t, picker.StateUpdated, f.views.EndHour.State())
	assert.Equal(t, picker.StateUpdated, f.views.EndMinute.State())

	f.timers.fire()
	assert.Equal(t, picker.StateNone, f.views.EndHour.State())
	assert.Equal(t, picker.StateNone, f.views.EndMinute.State())
}

func TestUpdatedHighlightClearsWithRealTimer(t *testing.T) {
	views := pickertest.NewViews()
	set, err := picker.NewSet(picker.NewGroup(), "new", slots.DefaultHours(), views.Picker())
	require.NoError(t, err)
	engine, err := New(set, &recordingButtons{}, &recordingNotifier{}, Config{FlashDelay: 10 * time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, set.Select(picker.StartHour, "09"))
	require.NoError(t, set.Select(picker.StartMinute, "00"))
	require.NoError(t, engine.ApplyPreset(60))

	assert.Eventually(t, func() bool {
		return views.EndHour.State() == picker.StateNone
	}, time.Second, 5*time.Millisecond)
}

func TestResetClearsSelection(t *testing.T) {
	f := newFixture(t, morning)
	require.NoError(t, f.engine.ApplyPreset(60))
	f.engine.Reset()

	_, ok := f.engine.Selected()
	assert.False(t, ok)
	assert.Equal(t, 0, f.buttons.last())
}

func TestApplyPresetRejectsNonPositive(t *testing.T) {
	f := newFixture(t, morning)
	assert.ErrorIs(t, f.engine.ApplyPreset(0), ErrInvalidDuration)
	assert.Empty(t, f.buttons.active)
}

func TestNewFailsFast(t *testing.T) {
	_, err := New(nil, &recordingButtons{}, &recordingNotifier{}, Config{})
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30 min", FormatDuration(30))
	assert.Equal(t, "1 hour", FormatDuration(60))
	assert.Equal(t, "1h 30m", FormatDuration(90))
	assert.Equal(t, "2 hours", FormatDuration(120))
}

func TestDurationsDefaultAndCustom(t *testing.T) {
	f := newFixture(t, morning)
	assert.Equal(t, []int{30, 60, 90, 120}, f.engine.Durations())

	engine, err := New(f.set, f.buttons, f.notifier, Config{Durations: []int{15, 45}})
	require.NoError(t, err)
	got := engine.Durations()
	assert.Equal(t, []int{15, 45}, got)

	got[0] = 999
	assert.Equal(t, []int{15, 45}, engine.Durations())
}
