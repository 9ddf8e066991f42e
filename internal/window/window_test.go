package window_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/fedintake/internal/window"
)

func newEngine() *window.Engine {
	return window.NewEngine(102*time.Hour, 2818)
}

func TestIssueID_MatchesRawFormula(t *testing.T) {
	e := newEngine()
	now := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)

	const (
		p = int64(367200000)
		w = int64(604800000)
	)
	want := (now.UnixMilli()+p)/w - 2818
	assert.Equal(t, want, e.IssueID(now))
}

func TestDeadline_FallsOnSaturdayEvening(t *testing.T) {
	e := newEngine()
	now := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)

	d := e.Deadline(e.IssueID(now))
	assert.Equal(t, time.Saturday, d.Weekday())
	assert.Equal(t, 18, d.Hour())
	assert.Equal(t, 0, d.Minute())
	assert.True(t, d.Before(now))
}

func TestClosesAfterNow(t *testing.T) {
	e := newEngine()
	now := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)

	id := e.IssueID(now)
	closes := e.Closes(id)
	assert.True(t, closes.After(now))
	assert.Equal(t, id+1, e.IssueID(closes))
	assert.Equal(t, id, e.IssueID(closes.Add(-time.Millisecond)))
}

func TestEvaluate_WeeklyMonotonic(t *testing.T) {
	e := newEngine()
	created := time.Date(2024, time.January, 10, 9, 30, 0, 0, time.UTC)
	now := time.Date(2024, time.January, 11, 0, 0, 0, 0, time.UTC)

	prev := e.Evaluate(created, now)
	for week := 1; week <= 10; week++ {
		next := e.Evaluate(created, now.Add(time.Duration(week)*window.Period))
		assert.Equal(t, prev.ID+1, next.ID)
		assert.Equal(t, prev.Deadline.Add(window.Period), next.Deadline)
		assert.Equal(t, next.Deadline.After(created), next.Late)
		prev = next
	}
}

func TestEvaluate_DeadlineBoundary(t *testing.T) {
	e := newEngine()
	now := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	deadline := e.Current(now).Deadline

	tests := []struct {
		name     string
		created  time.Time
		wantLate bool
	}{
		{"one millisecond before", deadline.Add(-time.Millisecond), true},
		{"one minute before", deadline.Add(-time.Minute), true},
		{"exactly at deadline", deadline, false},
		{"one minute after", deadline.Add(time.Minute), false},
		{"two weeks before now", now.Add(-2 * window.Period), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(tt.created, now)
			assert.Equal(t, tt.wantLate, got.Late)
			assert.Equal(t, deadline, got.Deadline)
		})
	}
}

func TestEvaluate_ConfigurableConstants(t *testing.T) {
	now := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

	base := window.NewEngine(102*time.Hour, 2818).IssueID(now)
	shifted := window.NewEngine(102*time.Hour, 2800).IssueID(now)
	assert.Equal(t, base+18, shifted)

	zero := window.NewEngine(0, 0)
	d := zero.Deadline(zero.IssueID(now))
	// Without a phase the boundary is the epoch weekday, Thursday 00:00 UTC.
	assert.Equal(t, time.Thursday, d.Weekday())
	assert.Equal(t, 0, d.Hour())
}

func TestIssue_Formatting(t *testing.T) {
	issue := window.Issue{Deadline: time.Date(2024, time.March, 2, 18, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2/3/2024", issue.DeadlineDate())
	assert.Equal(t, "18:00", issue.DeadlineClock())
}

func TestIssueID_BeforeEpoch(t *testing.T) {
	e := window.NewEngine(0, 0)
	before := time.UnixMilli(-1)
	require.Equal(t, int64(-1), e.IssueID(before))
}
