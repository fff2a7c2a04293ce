package escalation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civix-be/models"
)

func pendingIssue(createdAt time.Time) models.Issue {
	return models.Issue{
		ID:        primitive.NewObjectID(),
		Status:    models.Pending,
		CreatedAt: createdAt,
	}
}

func TestRemainingPendingPhase(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	issue := pendingIssue(created)

	remaining, ok := Remaining(issue, created.Add(30*time.Minute))
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, remaining)
}

func TestRemainingAcceptedPhase(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	accepted := created.Add(time.Hour)
	issue := pendingIssue(created)
	issue.Status = models.Accepted
	issue.AcceptedAt = &accepted

	remaining, ok := Remaining(issue, accepted.Add(3*time.Hour))
	require.True(t, ok)
	assert.Equal(t, 5*time.Hour, remaining)
}

func TestRemainingMonotonicUntilExpiryThenZero(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	issue := pendingIssue(created)

	prev := AcceptDeadline + time.Second
	for _, offset := range []time.Duration{0, time.Minute, time.Hour, 119 * time.Minute} {
		remaining, ok := Remaining(issue, created.Add(offset))
		require.True(t, ok)
		assert.Less(t, remaining, prev)
		prev = remaining
	}

	for _, offset := range []time.Duration{AcceptDeadline, AcceptDeadline + time.Second, AcceptDeadline + 24*time.Hour} {
		remaining, ok := Remaining(issue, created.Add(offset))
		require.True(t, ok)
		assert.Equal(t, time.Duration(0), remaining)
	}
}

func TestRemainingNoCountdownForTerminalStatuses(t *testing.T) {
	issue := pendingIssue(time.Now())
	for _, status := range []models.IssueStatus{models.Resolved, models.Escalated} {
		issue.Status = status
		_, ok := Remaining(issue, time.Now())
		assert.False(t, ok)
	}
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "01:30:05", FormatRemaining(90*time.Minute+5*time.Second))
	assert.Equal(t, "00:00:00", FormatRemaining(0))
	assert.Equal(t, "00:00:00", FormatRemaining(-time.Minute))
}

func TestTrackerFiresOncePerCrossing(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	issue := pendingIssue(created)
	tracker := NewTracker()

	// Before the deadline nothing fires.
	assert.Empty(t, tracker.Scan([]models.Issue{issue}, created.Add(time.Hour)))

	// Scenario C: two hours elapse with no accept.
	expired := tracker.Scan([]models.Issue{issue}, created.Add(2*time.Hour))
	require.Len(t, expired, 1)
	assert.Equal(t, issue.ID.Hex(), expired[0].IssueID)
	assert.Equal(t, models.Pending, expired[0].Status)
	// The issue itself is untouched: expiry is advisory.
	assert.Equal(t, models.Pending, issue.Status)

	// Subsequent ticks do not re-fire.
	assert.Empty(t, tracker.Scan([]models.Issue{issue}, created.Add(3*time.Hour)))
	assert.Empty(t, tracker.Scan([]models.Issue{issue}, created.Add(40*time.Hour)))
}

func TestTrackerFiresAgainForNewPhase(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	issue := pendingIssue(created)
	tracker := NewTracker()

	require.Len(t, tracker.Scan([]models.Issue{issue}, created.Add(2*time.Hour)), 1)

	// Late accept starts the resolve countdown; its own crossing fires once.
	acceptedAt := created.Add(3 * time.Hour)
	issue.Status = models.Accepted
	issue.AcceptedAt = &acceptedAt

	assert.Empty(t, tracker.Scan([]models.Issue{issue}, acceptedAt.Add(time.Hour)))

	expired := tracker.Scan([]models.Issue{issue}, acceptedAt.Add(ResolveDeadline))
	require.Len(t, expired, 1)
	assert.Equal(t, models.Accepted, expired[0].Status)

	assert.Empty(t, tracker.Scan([]models.Issue{issue}, acceptedAt.Add(ResolveDeadline+time.Hour)))
}

func TestTrackerIgnoresResolvedIssues(t *testing.T) {
	created := time.Now().Add(-72 * time.Hour)
	issue := pendingIssue(created)
	issue.Status = models.Resolved
	tracker := NewTracker()

	assert.Empty(t, tracker.Scan([]models.Issue{issue}, time.Now()))
}
