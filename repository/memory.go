package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civix-be/lifecycle"
	"civix-be/models"
)

// MemoryIssueRepository is an in-process IssueRepository with the same
// conditional-update semantics as the Mongo implementation. It backs tests
// and any caller that needs a store seam without a live database.
type MemoryIssueRepository struct {
	mu     sync.RWMutex
	issues map[string]models.Issue
}

func NewMemoryIssueRepository() *MemoryIssueRepository {
	return &MemoryIssueRepository{issues: make(map[string]models.Issue)}
}

func (r *MemoryIssueRepository) Create(_ context.Context, issue *models.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	r.issues[issue.ID.Hex()] = *issue
	return nil
}

func (r *MemoryIssueRepository) Get(_ context.Context, id string) (*models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, lifecycle.NewNotFoundError("issue")
	}
	return &issue, nil
}

func (r *MemoryIssueRepository) List(_ context.Context, filter Filter) ([]models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issues := []models.Issue{}
	for _, issue := range r.issues {
		if filter.UserID != "" && issue.UserID != filter.UserID {
			continue
		}
		if filter.WardNumber != "" && issue.WardNumber != filter.WardNumber {
			continue
		}
		if filter.Status != "" && issue.Status != filter.Status {
			continue
		}
		issues = append(issues, issue)
	}
	sort.Slice(issues, func(i, j int) bool {
		return issues[i].CreatedAt.After(issues[j].CreatedAt)
	})
	return issues, nil
}

func (r *MemoryIssueRepository) ApplyPatch(_ context.Context, id string, patch lifecycle.Patch) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, lifecycle.NewNotFoundError("issue")
	}
	if issue.Status != patch.ExpectedStatus {
		return nil, lifecycle.NewConflictError("issue status changed concurrently, refresh and retry")
	}

	for field, value := range patch.Set {
		applyField(&issue, field, value)
	}
	r.issues[id] = issue
	return &issue, nil
}

func applyField(issue *models.Issue, field string, value any) {
	switch field {
	case "status":
		issue.Status = value.(models.IssueStatus)
	case "assignedCorporator":
		issue.AssignedCorporator = value.(string)
	case "acceptedAt":
		t := value.(time.Time)
		issue.AcceptedAt = &t
	case "resolvedAt":
		t := value.(time.Time)
		issue.ResolvedAt = &t
	case "workReport":
		issue.WorkReport = value.(string)
	case "resolvedPhoto":
		issue.ResolvedPhoto = value.(string)
	case "resolvedLocation":
		loc := value.(models.GeoPoint)
		issue.ResolvedLocation = &loc
	}
}
