package insumo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotice(t *testing.T) {
	cases := []struct {
		name   string
		result UpsertResult
		want   string
	}{
		{
			name:   "no changes",
			result: UpsertResult{},
			want:   "no changes to record",
		},
		{
			name:   "only created",
			result: UpsertResult{Inserted: []int{1, 2, 3}},
			want:   "3 offer(s) created",
		},
		{
			name:   "only updated",
			result: UpsertResult{Updated: map[int][]string{5: {"max"}}},
			want:   "1 offer(s) updated",
		},
		{
			name: "created and updated counted separately",
			result: UpsertResult{
				Inserted: []int{1, 2},
				Updated:  map[int][]string{3: {"min"}, 4: {"note", "agc"}},
			},
			want: "2 offer(s) created, 2 offer(s) updated",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Notice(tc.result))
		})
	}
}

func TestNoChanges(t *testing.T) {
	assert.True(t, UpsertResult{}.NoChanges())
	assert.False(t, UpsertResult{Inserted: []int{1}}.NoChanges())
	assert.False(t, UpsertResult{Updated: map[int][]string{1: {"min"}}}.NoChanges())
}

func TestTouchedHours(t *testing.T) {
	hours := TouchedHours(UpsertResult{
		Inserted: []int{7, 2},
		Updated:  map[int][]string{5: {"max"}, 2: {"min"}},
	})

	assert.Equal(t, []int{2, 5, 7}, hours)
}

func TestErrorHourKeys(t *testing.T) {
	hours := ErrorHourKeys(BatchErrors{
		"14":    {"min"},
		"2":     {"price_ft1"},
		"bogus": {""},
	})

	assert.Equal(t, []int{2, 14}, hours)
}

func TestFlashStateClearsAfterDuration(t *testing.T) {
	fake := frozenClock(t, time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC))
	flash := NewFlashState()

	flash.TriggerSuccess([]int{3, 1, 2})
	assert.Equal(t, []int{1, 2, 3}, flash.SuccessHours())

	fake.Advance(FlashDuration - time.Millisecond)
	assert.Equal(t, []int{1, 2, 3}, flash.SuccessHours())

	fake.Advance(time.Millisecond)
	assert.Eventually(t, func() bool {
		return len(flash.SuccessHours()) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestFlashStateRetriggerRestartsTimer(t *testing.T) {
	fake := frozenClock(t, time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC))
	flash := NewFlashState()

	flash.TriggerSuccess([]int{1})
	fake.Advance(2 * time.Second)

	flash.TriggerSuccess([]int{2})
	fake.Advance(2 * time.Second)

	// The first timer was replaced, so the second set is still active.
	assert.Equal(t, []int{2}, flash.SuccessHours())

	fake.Advance(time.Second)
	assert.Eventually(t, func() bool {
		return len(flash.SuccessHours()) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestFlashStateIndependentSets(t *testing.T) {
	fake := frozenClock(t, time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC))
	flash := NewFlashState()

	flash.TriggerSuccess([]int{1})
	fake.Advance(2 * time.Second)
	flash.TriggerErrors([]int{9})

	fake.Advance(time.Second + time.Millisecond)
	assert.Eventually(t, func() bool {
		return len(flash.SuccessHours()) == 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{9}, flash.ErrorHours())

	fake.Advance(2 * time.Second)
	assert.Eventually(t, func() bool {
		return len(flash.ErrorHours()) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestFlashStateIdle(t *testing.T) {
	flash := NewFlashState()
	require.Empty(t, flash.SuccessHours())
	require.Empty(t, flash.ErrorHours())
}
