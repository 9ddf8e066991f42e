// Package window computes the weekly issue a submission belongs to and
// whether it arrived after the cutoff of the currently open issue.
package window

import (
	"fmt"
	"time"
)

// Period is the length of one issue cycle.
const Period = 7 * 24 * time.Hour

// Issue is the evaluation of one submission against the open issue.
type Issue struct {
	ID       int64
	Deadline time.Time
	Late     bool
}

// DeadlineDate renders the deadline as D/M/YYYY in UTC.
func (i Issue) DeadlineDate() string {
	d := i.Deadline.UTC()
	return fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year())
}

// DeadlineClock renders the deadline time of day as HH:MM in UTC.
func (i Issue) DeadlineClock() string {
	return i.Deadline.UTC().Format("15:04")
}

// Engine maps instants onto issue numbers. Phase shifts the weekly boundary
// away from the Unix epoch alignment and Origin sets which week is issue 0.
type Engine struct {
	phase  int64
	origin int64
}

// NewEngine returns an Engine for the given phase offset and numbering origin.
func NewEngine(phase time.Duration, origin int64) *Engine {
	return &Engine{phase: phase.Milliseconds(), origin: origin}
}

// IssueID returns the id of the issue open at now.
func (e *Engine) IssueID(now time.Time) int64 {
	return floorDiv(now.UnixMilli()+e.phase, Period.Milliseconds()) - e.origin
}

// Deadline returns the cutoff of issue id: submissions created before it
// belong to an earlier issue.
func (e *Engine) Deadline(id int64) time.Time {
	ms := (id+e.origin-1)*Period.Milliseconds() - e.phase
	return time.UnixMilli(ms).UTC()
}

// Closes returns the instant issue id stops being the open issue.
func (e *Engine) Closes(id int64) time.Time {
	ms := (id+e.origin+1)*Period.Milliseconds() - e.phase
	return time.UnixMilli(ms).UTC()
}

// Current returns the open issue at now, without a submission to judge.
func (e *Engine) Current(now time.Time) Issue {
	id := e.IssueID(now)
	return Issue{ID: id, Deadline: e.Deadline(id)}
}

// Evaluate judges a submission created at createdAt against the issue open
// at now. A submission created exactly at the deadline is on time.
func (e *Engine) Evaluate(createdAt, now time.Time) Issue {
	issue := e.Current(now)
	issue.Late = issue.Deadline.UnixMilli() > createdAt.UnixMilli()
	return issue
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
