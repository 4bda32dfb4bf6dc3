package insumo

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// UpsertResult is the outcome of one batch upsert: which hours were newly
// created and which stored fields changed per updated hour.
type UpsertResult struct {
	Inserted []int            `json:"inserted"`
	Updated  map[int][]string `json:"updated"`
}

// NoChanges reports whether the batch completed without touching anything.
func (r UpsertResult) NoChanges() bool {
	return len(r.Inserted) == 0 && len(r.Updated) == 0
}

// Notice renders the user-facing outcome message. The updated count comes
// from the updated map itself, never from the inserted list.
func Notice(r UpsertResult) string {
	if r.NoChanges() {
		return "no changes to record"
	}
	created := len(r.Inserted)
	updated := len(r.Updated)
	switch {
	case created > 0 && updated > 0:
		return fmt.Sprintf("%d offer(s) created, %d offer(s) updated", created, updated)
	case created > 0:
		return fmt.Sprintf("%d offer(s) created", created)
	default:
		return fmt.Sprintf("%d offer(s) updated", updated)
	}
}

// FlashDuration is how long a flash state stays active after being triggered.
const FlashDuration = 3 * time.Second

// FlashState tracks the two independent transient highlight sets: hours that
// just succeeded and hours that just failed validation. Each set clears on
// its own timer; triggering again replaces the set and restarts the timer.
// Purely presentational: it never blocks further submissions.
type FlashState struct {
	mu           sync.Mutex
	success      map[int]struct{}
	errored      map[int]struct{}
	successTimer clockwork.Timer
	errorTimer   clockwork.Timer
}

// NewFlashState returns an idle FlashState.
func NewFlashState() *FlashState {
	return &FlashState{
		success: make(map[int]struct{}),
		errored: make(map[int]struct{}),
	}
}

// TriggerSuccess flashes the given hours as succeeded for FlashDuration.
func (f *FlashState) TriggerSuccess(hours []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.success = hourSet(hours)
	if f.successTimer != nil {
		f.successTimer.Stop()
	}
	f.successTimer = clock.AfterFunc(FlashDuration, f.clearSuccess)
}

// TriggerErrors flashes the given hours as failed for FlashDuration.
func (f *FlashState) TriggerErrors(hours []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errored = hourSet(hours)
	if f.errorTimer != nil {
		f.errorTimer.Stop()
	}
	f.errorTimer = clock.AfterFunc(FlashDuration, f.clearErrors)
}

// SuccessHours returns the hours currently flashing success, sorted.
func (f *FlashState) SuccessHours() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sortedHours(f.success)
}

// ErrorHours returns the hours currently flashing errors, sorted.
func (f *FlashState) ErrorHours() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sortedHours(f.errored)
}

func (f *FlashState) clearSuccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.success = make(map[int]struct{})
}

func (f *FlashState) clearErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errored = make(map[int]struct{})
}

// TouchedHours flattens an upsert result into the hour list to flash.
func TouchedHours(r UpsertResult) []int {
	set := hourSet(r.Inserted)
	for h := range r.Updated {
		set[h] = struct{}{}
	}
	return sortedHours(set)
}

// ErrorHourKeys converts a BatchErrors map into sorted hour numbers,
// skipping keys that are not parseable hours.
func ErrorHourKeys(errs BatchErrors) []int {
	set := make(map[int]struct{}, len(errs))
	for key := range errs {
		var h int
		if _, err := fmt.Sscanf(key, "%d", &h); err == nil {
			set[h] = struct{}{}
		}
	}
	return sortedHours(set)
}

func hourSet(hours []int) map[int]struct{} {
	set := make(map[int]struct{}, len(hours))
	for _, h := range hours {
		set[h] = struct{}{}
	}
	return set
}

func sortedHours(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}
