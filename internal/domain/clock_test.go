package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{"00:00", 0, false},
		{"9:05", 9*60 + 5, false},
		{"09:05", 9*60 + 5, false},
		{"23:59", 23*60 + 59, false},
		{"24:00", MinutesPerDay, false},
		{"24:01", 0, true},
		{"12:60", 0, true},
		{"12:5", 0, true},
		{"123:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
		{"-1:00", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockTime_Text(t *testing.T) {
	assert.Equal(t, "07:30", MustClock("7:30").String())

	var slot TimeSlot
	require.NoError(t, json.Unmarshal([]byte(`{"start":"18:00","end":"24:00"}`), &slot))
	assert.Equal(t, 360, slot.DurationMin())

	data, err := json.Marshal(slot)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"18:00","end":"24:00"}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"start":"18","end":"19:00"}`), &slot))
}

func TestTimeSlot(t *testing.T) {
	slot := TimeSlot{Start: MustClock("09:00"), End: MustClock("10:00")}

	assert.NoError(t, slot.Validate())
	assert.Error(t, TimeSlot{Start: MustClock("10:00"), End: MustClock("10:00")}.Validate())

	assert.True(t, slot.Contains(MustClock("09:00"), MustClock("10:00")))
	assert.True(t, slot.Contains(MustClock("09:15"), MustClock("09:45")))
	assert.False(t, slot.Contains(MustClock("08:59"), MustClock("09:30")))
	assert.False(t, slot.Contains(MustClock("09:30"), MustClock("10:01")))

	assert.True(t, slot.Overlaps(TimeSlot{Start: MustClock("09:30"), End: MustClock("11:00")}))
	assert.False(t, slot.Overlaps(TimeSlot{Start: MustClock("10:00"), End: MustClock("11:00")}), "touching slots do not overlap")
}

func TestAvailableDateEntry_SlotContaining(t *testing.T) {
	e := AvailableDateEntry{
		Date: MustDate("2026-02-02"),
		Slots: []TimeSlot{
			{Start: MustClock("09:00"), End: MustClock("10:00")},
			{Start: MustClock("10:00"), End: MustClock("11:00")},
		},
	}
	assert.Equal(t, 1, e.SlotContaining(MustClock("10:00"), MustClock("10:30")))
	assert.Equal(t, -1, e.SlotContaining(MustClock("09:30"), MustClock("10:30")), "spanning adjacent slots is not contained")
}

func TestWeeklySchedule_JSON(t *testing.T) {
	var ws WeeklySchedule
	require.NoError(t, json.Unmarshal([]byte(`{"MONDAY":[{"start":"09:00","end":"10:00"}],"friday":[]}`), &ws))
	assert.Len(t, ws.SlotsFor(Monday), 1)
	assert.Nil(t, ws.SlotsFor(Tuesday))

	norm := ws.Normalized()
	assert.Len(t, norm, 7)
	assert.NotNil(t, norm[Tuesday])

	assert.ErrorContains(t, json.Unmarshal([]byte(`{"someday":[]}`), &ws), "weekly_schedule")
}

func TestWeeklySchedule_CaseVariantsMergeInKeyOrder(t *testing.T) {
	data := []byte(`{"monday":[{"start":"18:00","end":"19:00"}],"Monday":[{"start":"07:00","end":"08:00"}]}`)
	want := []TimeSlot{
		{Start: MustClock("07:00"), End: MustClock("08:00")},
		{Start: MustClock("18:00"), End: MustClock("19:00")},
	}
	for range 20 {
		var ws WeeklySchedule
		require.NoError(t, json.Unmarshal(data, &ws))
		assert.Equal(t, want, ws.SlotsFor(Monday))
	}
}
