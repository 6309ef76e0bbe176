package sender

import (
	"errors"
	"fmt"
	"time"

	"gurusender/internal/contacts"
	"gurusender/internal/message"
)

// Reason classifies why a row was not sent.
type Reason string

const (
	ReasonMissingField Reason = "missing_field" // empty name or phone cell
	ReasonCompliance   Reason = "compliance"    // rendered message contains a banned word
	ReasonPhone        Reason = "phone"         // phone failed region validation
	ReasonDispatch     Reason = "dispatch"      // link could not be built or opened
)

// Abort stages.
const (
	StageInput    = "input"
	StageTemplate = "template"
	StageLoad     = "load"
)

var (
	// ErrNoFile is returned by Prepare when no spreadsheet was chosen.
	ErrNoFile = errors.New("no contacts file selected")
	// ErrAlreadyRunning is returned by Run while another run is active.
	ErrAlreadyRunning = errors.New("a run is already in progress")
	// ErrNoOpener is returned by Run when Deps.Opener is nil.
	ErrNoOpener = errors.New("no link opener configured")
	// ErrInvalidPlan is returned by Run for a plan without contacts or template.
	ErrInvalidPlan = errors.New("plan is missing contacts or template")
)

// AbortError stops a run before any row is processed.
type AbortError struct {
	Stage string
	Err   error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }

// MissingFieldError reports an empty required cell.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("empty %s", e.Field)
}

// Plan is a parsed template plus the contacts it will be sent to.
type Plan struct {
	Book     *contacts.Book
	Template *message.Template
}

// Total returns the number of contacts in the plan.
func (p *Plan) Total() int {
	if p == nil || p.Book == nil {
		return 0
	}
	return len(p.Book.Contacts)
}

// EventKind identifies an Event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventSent
	EventFailed
	EventWaiting
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventSent:
		return "sent"
	case EventFailed:
		return "failed"
	case EventWaiting:
		return "waiting"
	case EventFinished:
		return "finished"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Progress holds the running counters.
type Progress struct {
	Total   int
	Sent    int
	Failed  int
	Skipped int
}

// Done returns how many rows have been processed.
func (p Progress) Done() int { return p.Sent + p.Failed }

// Fraction returns Done/Total in [0,1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done()) / float64(p.Total)
}

// Event is emitted by Run as rows are processed.
type Event struct {
	Kind     EventKind
	RunID    string
	Time     time.Time
	Row      int    // source row, 0 for run-level events
	Name     string // contact name
	Phone    string // normalized phone when validation passed, raw otherwise
	Link     string
	Reason   Reason
	Err      error
	Delay    time.Duration // EventWaiting only
	Progress Progress
}

// Summary is the outcome of a run. Sent + Failed + Skipped == Total.
type Summary struct {
	RunID    string
	Total    int
	Sent     int
	Failed   int
	Skipped  int
	Failures map[Reason]int
	Started  time.Time
	Finished time.Time
}

// Completed reports whether every row was processed.
func (s Summary) Completed() bool { return s.Skipped == 0 }

// Duration returns the wall time of the run.
func (s Summary) Duration() time.Duration { return s.Finished.Sub(s.Started) }

func (s Summary) progress() Progress {
	return Progress{Total: s.Total, Sent: s.Sent, Failed: s.Failed, Skipped: s.Skipped}
}

// RowResult is the dry evaluation of one row.
type RowResult struct {
	Row     int
	Name    string
	Phone   string
	Message string
	Link    string
	Reason  Reason // empty when the row would be sent
	Err     error
}

// OK reports whether the row would be dispatched.
func (r RowResult) OK() bool { return r.Err == nil }
