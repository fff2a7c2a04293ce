package roleview

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civix-be/lifecycle"
	"civix-be/models"
)

func randomPopulation(rng *rand.Rand, n int, userIDs []string) []models.Issue {
	statuses := []models.IssueStatus{models.Pending, models.Accepted, models.Resolved, models.Escalated}
	issues := make([]models.Issue, 0, n)
	for i := 0; i < n; i++ {
		issues = append(issues, models.Issue{
			ID:         primitive.NewObjectID(),
			Type:       models.Drainage,
			Status:     statuses[rng.Intn(len(statuses))],
			WardNumber: fmt.Sprintf("Ward %d", 1+rng.Intn(10)),
			UserID:     userIDs[rng.Intn(len(userIDs))],
			CreatedAt:  time.Now().Add(-time.Duration(rng.Intn(100)) * time.Hour),
		})
	}
	return issues
}

func TestVisibleScopingOverRandomPopulations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	citizen := models.User{ID: primitive.NewObjectID(), Role: models.Citizen, WardNumber: "Ward 4"}
	corp := models.User{ID: primitive.NewObjectID(), Role: models.Corporator, WardNumber: "Ward 4"}
	president := models.User{ID: primitive.NewObjectID(), Role: models.President}

	userIDs := []string{citizen.ID.Hex(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()}

	for trial := 0; trial < 20; trial++ {
		issues := randomPopulation(rng, 50, userIDs)

		for _, issue := range Visible(issues, citizen) {
			assert.Equal(t, citizen.ID.Hex(), issue.UserID)
		}
		for _, issue := range Visible(issues, corp) {
			assert.Equal(t, corp.WardNumber, issue.WardNumber)
		}
		assert.Len(t, Visible(issues, president), len(issues))

		// Visible sets are exactly the defining predicates, not merely subsets.
		own := 0
		for _, issue := range issues {
			if issue.UserID == citizen.ID.Hex() {
				own++
			}
		}
		assert.Len(t, Visible(issues, citizen), own)

		inWard := 0
		for _, issue := range issues {
			if issue.WardNumber == corp.WardNumber {
				inWard++
			}
		}
		assert.Len(t, Visible(issues, corp), inWard)
	}
}

func TestEscalatedSubset(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	issues := randomPopulation(rng, 40, []string{primitive.NewObjectID().Hex()})

	escalated := Escalated(issues)
	for _, issue := range escalated {
		assert.Equal(t, models.Escalated, issue.Status)
	}

	count := 0
	for _, issue := range issues {
		if issue.Status == models.Escalated {
			count++
		}
	}
	assert.Len(t, escalated, count)
}

func TestVisibleDoesNotAliasInput(t *testing.T) {
	president := models.User{ID: primitive.NewObjectID(), Role: models.President}
	issues := []models.Issue{{ID: primitive.NewObjectID(), Status: models.Pending}}

	visible := Visible(issues, president)
	require.Len(t, visible, 1)
	visible[0].Status = models.Resolved
	assert.Equal(t, models.Pending, issues[0].Status)
}

func TestActionsForCitizen(t *testing.T) {
	citizen := models.User{ID: primitive.NewObjectID(), Role: models.Citizen, WardNumber: "Ward 2"}
	issue := models.Issue{Status: models.Pending, WardNumber: "Ward 2", UserID: citizen.ID.Hex()}
	assert.Empty(t, ActionsFor(issue, citizen))
}

func TestActionsForCorporator(t *testing.T) {
	corp := models.User{ID: primitive.NewObjectID(), Role: models.Corporator, WardNumber: "Ward 2"}

	pending := models.Issue{Status: models.Pending, WardNumber: "Ward 2"}
	assert.Equal(t, []lifecycle.TransitionKind{lifecycle.Accept, lifecycle.Escalate}, ActionsFor(pending, corp))

	held := models.Issue{Status: models.Accepted, WardNumber: "Ward 2", AssignedCorporator: corp.ID.Hex()}
	assert.Equal(t, []lifecycle.TransitionKind{lifecycle.Resolve, lifecycle.Escalate}, ActionsFor(held, corp))

	othersAccepted := models.Issue{Status: models.Accepted, WardNumber: "Ward 2", AssignedCorporator: primitive.NewObjectID().Hex()}
	assert.Equal(t, []lifecycle.TransitionKind{lifecycle.Escalate}, ActionsFor(othersAccepted, corp))

	otherWard := models.Issue{Status: models.Pending, WardNumber: "Ward 9"}
	assert.Empty(t, ActionsFor(otherWard, corp))

	resolved := models.Issue{Status: models.Resolved, WardNumber: "Ward 2"}
	assert.Empty(t, ActionsFor(resolved, corp))
}

func TestActionsForPresident(t *testing.T) {
	president := models.User{ID: primitive.NewObjectID(), Role: models.President}

	escalated := models.Issue{Status: models.Escalated, WardNumber: "Ward 5"}
	assert.Equal(t, []lifecycle.TransitionKind{lifecycle.Reassign, lifecycle.DirectResolve}, ActionsFor(escalated, president))

	pending := models.Issue{Status: models.Pending, WardNumber: "Ward 5"}
	assert.Equal(t, []lifecycle.TransitionKind{lifecycle.Accept, lifecycle.Escalate}, ActionsFor(pending, president))

	accepted := models.Issue{Status: models.Accepted, WardNumber: "Ward 5"}
	assert.Equal(t, []lifecycle.TransitionKind{lifecycle.Resolve, lifecycle.Escalate}, ActionsFor(accepted, president))

	resolved := models.Issue{Status: models.Resolved, WardNumber: "Ward 5"}
	assert.Empty(t, ActionsFor(resolved, president))
}

func TestByStatus(t *testing.T) {
	issues := []models.Issue{
		{Status: models.Pending},
		{Status: models.Resolved},
		{Status: models.Pending},
	}
	assert.Len(t, ByStatus(issues, models.Pending), 2)
	assert.Len(t, ByStatus(issues, models.Escalated), 0)
}
