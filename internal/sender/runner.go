// Package sender runs a send campaign: for every contact, in source order, it
// renders the message, screens it, validates the phone and opens the chat
// link, sleeping a random interval between dispatches.
package sender

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gurusender/internal/compliance"
	"gurusender/internal/contacts"
	"gurusender/internal/dispatch"
	"gurusender/internal/message"
	"gurusender/internal/pacing"
	"gurusender/internal/phone"
)

// Deps are the collaborators of a Runner.
type Deps struct {
	Opener    dispatch.Opener
	Validator phone.Validator
	Words     *compliance.List // read once per row; edits apply from the next row
	Pacer     *pacing.Pacer
	BaseURL   string
	Logger    *zap.Logger
}

// Runner executes plans one at a time.
type Runner struct {
	deps Deps
	log  *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates a runner. Nil Words, Pacer and Logger get defaults.
func New(deps Deps) *Runner {
	if deps.Words == nil {
		deps.Words = compliance.NewList(compliance.DefaultWords())
	}
	if deps.Pacer == nil {
		deps.Pacer = pacing.New(pacing.DefaultMin, pacing.DefaultMax)
	}
	if deps.Validator.Region == "" {
		deps.Validator = phone.New("")
	}
	if deps.BaseURL == "" {
		deps.BaseURL = dispatch.DefaultBaseURL
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{deps: deps, log: log}
}

// Words returns the banned-word list shared with the runner.
func (r *Runner) Words() *compliance.List { return r.deps.Words }

// Running reports whether a run is in progress.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Cancel stops the active run, if any. Rows not yet processed are skipped.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// Run processes every contact of plan in order. Events are sent on events,
// which may be nil; sends block, so the caller must keep draining until Run
// closes the channel on return.
//
// Per-row failures are counted and the loop continues. If ctx is cancelled
// the remaining rows are skipped and ctx.Err() is returned with the summary.
func (r *Runner) Run(ctx context.Context, plan *Plan, events chan<- Event) (Summary, error) {
	if events != nil {
		defer close(events)
	}
	if r.deps.Opener == nil {
		return Summary{}, ErrNoOpener
	}
	if plan == nil || plan.Book == nil || plan.Template == nil {
		return Summary{}, ErrInvalidPlan
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return Summary{}, ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	r.running = true
	r.cancel = cancel
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		r.running = false
		r.cancel = nil
		r.mu.Unlock()
	}()

	rows := plan.Book.Contacts
	sum := Summary{
		RunID:    uuid.NewString(),
		Total:    len(rows),
		Failures: make(map[Reason]int),
		Started:  time.Now(),
	}
	log := r.log.With(zap.String("run_id", sum.RunID))
	emit := func(ev Event) {
		ev.RunID = sum.RunID
		ev.Time = time.Now()
		ev.Progress = sum.progress()
		logEvent(log, ev)
		if events != nil {
			events <- ev
		}
	}

	emit(Event{Kind: EventStarted})

	for i, c := range rows {
		if ctx.Err() != nil {
			break
		}

		res := r.evaluate(plan.Template, c)
		attempted := false
		if res.Err == nil {
			attempted = true
			if err := r.deps.Opener.Open(ctx, res.Link); err != nil {
				if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
					// Interrupted before the link was handed over.
					break
				}
				res.Reason, res.Err = ReasonDispatch, err
			}
		}

		ev := Event{Row: c.Row, Name: c.Name, Phone: res.Phone, Link: res.Link}
		if res.Err != nil {
			sum.Failed++
			sum.Failures[res.Reason]++
			ev.Kind, ev.Reason, ev.Err = EventFailed, res.Reason, res.Err
		} else {
			sum.Sent++
			ev.Kind = EventSent
		}
		emit(ev)

		if attempted && i < len(rows)-1 {
			d := r.deps.Pacer.Next()
			emit(Event{Kind: EventWaiting, Delay: d})
			if err := r.deps.Pacer.Sleep(ctx, d); err != nil {
				break
			}
		}
	}

	sum.Skipped = sum.Total - sum.Sent - sum.Failed
	sum.Finished = time.Now()
	emit(Event{Kind: EventFinished})

	return sum, ctx.Err()
}

// Check evaluates every row of plan without opening anything.
func (r *Runner) Check(plan *Plan) []RowResult {
	if plan == nil || plan.Book == nil || plan.Template == nil {
		return nil
	}
	out := make([]RowResult, 0, len(plan.Book.Contacts))
	for _, c := range plan.Book.Contacts {
		out = append(out, r.evaluate(plan.Template, c))
	}
	return out
}

// evaluate runs every step short of opening the link.
func (r *Runner) evaluate(tmpl *message.Template, c contacts.Contact) RowResult {
	res := RowResult{Row: c.Row, Name: c.Name, Phone: c.Phone}

	switch {
	case c.Name == "":
		res.Reason, res.Err = ReasonMissingField, &MissingFieldError{Field: "name"}
		return res
	case c.Phone == "":
		res.Reason, res.Err = ReasonMissingField, &MissingFieldError{Field: "phone"}
		return res
	}

	res.Message = tmpl.Render(c.Fields)

	if err := r.deps.Words.Snapshot().Check(res.Message); err != nil {
		res.Reason, res.Err = ReasonCompliance, err
		return res
	}

	num, err := r.deps.Validator.Normalize(c.Phone)
	if err != nil {
		res.Reason, res.Err = ReasonPhone, err
		return res
	}
	res.Phone = num

	link, err := dispatch.BuildLink(r.deps.BaseURL, num, res.Message)
	if err != nil {
		res.Reason, res.Err = ReasonDispatch, err
		return res
	}
	res.Link = link
	return res
}

func logEvent(log *zap.Logger, ev Event) {
	p := ev.Progress
	switch ev.Kind {
	case EventStarted:
		log.Info("run started", zap.Int("total", p.Total))
	case EventSent:
		log.Info("message sent", zap.Int("row", ev.Row), zap.String("name", ev.Name), zap.String("phone", ev.Phone))
	case EventFailed:
		log.Warn("row failed", zap.Int("row", ev.Row), zap.String("name", ev.Name), zap.String("phone", ev.Phone),
			zap.String("reason", string(ev.Reason)), zap.Error(ev.Err))
	case EventWaiting:
		log.Info("waiting before next send", zap.Duration("delay", ev.Delay))
	case EventFinished:
		log.Info("run finished", zap.Int("total", p.Total), zap.Int("sent", p.Sent),
			zap.Int("failed", p.Failed), zap.Int("skipped", p.Skipped))
	}
}
