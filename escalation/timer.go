// Package escalation implements the deadline countdown that pressures timely
// issue handling. The timer is advisory: it signals expiry so the UI can
// surface an escalate affordance, and never mutates issue state itself.
package escalation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"civix-be/models"
)

// Policy deadlines per status phase.
const (
	AcceptDeadline  = 2 * time.Hour // pending -> accepted
	ResolveDeadline = 8 * time.Hour // accepted -> resolved
)

// TickInterval is the display recomputation cadence.
const TickInterval = time.Second

// phase returns the countdown start and deadline for the issue's current
// status. ok is false for statuses with no running countdown.
func phase(issue models.Issue) (start time.Time, deadline time.Duration, ok bool) {
	switch issue.Status {
	case models.Pending:
		return issue.CreatedAt, AcceptDeadline, true
	case models.Accepted:
		if issue.AcceptedAt == nil {
			return time.Time{}, 0, false
		}
		return *issue.AcceptedAt, ResolveDeadline, true
	}
	return time.Time{}, 0, false
}

// Remaining computes the time left before the issue's current deadline,
// clamped at zero after expiry. ok is false when no countdown applies.
func Remaining(issue models.Issue, now time.Time) (time.Duration, bool) {
	start, deadline, ok := phase(issue)
	if !ok {
		return 0, false
	}
	remaining := deadline - now.Sub(start)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Expired reports whether the issue's current deadline has elapsed.
func Expired(issue models.Issue, now time.Time) bool {
	remaining, ok := Remaining(issue, now)
	return ok && remaining == 0
}

// FormatRemaining renders a countdown as HH:MM:SS.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Expiry is the signal emitted once per deadline crossing.
type Expiry struct {
	IssueID string
	Status  models.IssueStatus
}

// Tracker watches a set of issues and reports each expiry crossing exactly
// once per (issue, status phase). A re-accepted issue starts a fresh resolve
// countdown and may expire again under the new phase.
type Tracker struct {
	mu    sync.Mutex
	fired map[string]bool
	ch    chan Expiry
}

func NewTracker() *Tracker {
	return &Tracker{
		fired: make(map[string]bool),
		ch:    make(chan Expiry, 64),
	}
}

// Scan inspects issues at the given instant and returns the expiries that
// newly crossed their deadline. Edge-triggered: a crossing already reported
// is not reported again on later scans.
func (t *Tracker) Scan(issues []models.Issue, now time.Time) []Expiry {
	t.mu.Lock()
	defer t.mu.Unlock()

	var crossed []Expiry
	for _, issue := range issues {
		if !Expired(issue, now) {
			continue
		}
		key := issue.ID.Hex() + "/" + string(issue.Status)
		if t.fired[key] {
			continue
		}
		t.fired[key] = true
		crossed = append(crossed, Expiry{IssueID: issue.ID.Hex(), Status: issue.Status})
	}
	return crossed
}

// Expiries delivers signals produced by Run.
func (t *Tracker) Expiries() <-chan Expiry {
	return t.ch
}

// Run scans the snapshot function at the display cadence until ctx is done,
// pushing newly crossed expiries onto the Expiries channel. Signals are
// dropped rather than blocking a full channel; expiry is advisory.
func (t *Tracker) Run(ctx context.Context, snapshot func() []models.Issue) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, exp := range t.Scan(snapshot(), now) {
				select {
				case t.ch <- exp:
				default:
				}
			}
		}
	}
}
