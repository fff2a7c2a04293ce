package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"civix-be/config"
	"civix-be/escalation"
	"civix-be/lifecycle"
	"civix-be/middlewares"
	"civix-be/models"
	"civix-be/repository"
)

var (
	issueRepo     repository.IssueRepository
	issueRepoOnce sync.Once
)

// repo lazily wires the Mongo-backed repository so the connection is only
// established after main has loaded the environment.
func repo() repository.IssueRepository {
	issueRepoOnce.Do(func() {
		issueRepo = repository.NewMongoIssueRepository(config.GetCollection("issues"))
	})
	return issueRepo
}

// CreateIssue handles a citizen reporting a new issue. The reporter's
// identity, address and ward are snapshotted onto the issue at creation and
// never re-synced afterwards.
func CreateIssue(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Type        models.IssueType `json:"type" binding:"required"`
		Description string           `json:"description" binding:"required,max=1000"`
		Photo       string           `json:"photo" binding:"required"`
		Location    *models.GeoPoint `json:"location" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue := models.Issue{
		Type:        input.Type,
		Description: input.Description,
		Photo:       input.Photo,
		Location:    *input.Location,
		Address:     user.Address(),
		WardNumber:  user.WardNumber,
		UserID:      user.ID.Hex(),
		UserName:    user.Name,
		UserContact: user.Contact,
		Status:      models.Pending,
		CreatedAt:   time.Now(),
	}

	if err := lifecycle.ValidateReport(issue); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repo().Create(ctx, &issue); err != nil {
		config.Log.Errorw("failed to create issue", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// ListIssues returns issues newest-first, scoped to the caller's role:
// citizens see their own reports, corporators their ward, the president
// everything. Status can narrow any of those.
func ListIssues(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	filter := repository.Filter{
		UserID:     c.Query("userId"),
		WardNumber: c.Query("wardNumber"),
		Status:     models.IssueStatus(c.Query("status")),
	}
	if filter.Status != "" && !models.ValidIssueStatus(filter.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	switch user.Role {
	case models.Citizen:
		filter.UserID = user.ID.Hex()
	case models.Corporator:
		filter.WardNumber = user.WardNumber
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := repo().List(ctx, filter)
	if err != nil {
		config.Log.Errorw("failed to list issues", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

// EscalatedIssues returns the president's cross-ward escalation queue.
func EscalatedIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := repo().List(ctx, repository.Filter{Status: models.Escalated})
	if err != nil {
		config.Log.Errorw("failed to list escalated issues", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

// OverdueIssues lists issues in the caller's scope whose escalation deadline
// has elapsed. Purely advisory: these issues keep their current status until
// someone explicitly escalates them.
func OverdueIssues(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	filter := repository.Filter{}
	if user.Role == models.Corporator {
		filter.WardNumber = user.WardNumber
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := repo().List(ctx, filter)
	if err != nil {
		config.Log.Errorw("failed to list issues", "error", err)
		respondError(c, err)
		return
	}

	now := time.Now()
	overdue := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if escalation.Expired(issue, now) {
			overdue = append(overdue, issue)
		}
	}

	c.JSON(http.StatusOK, overdue)
}

// GetIssue retrieves a single issue, subject to role scoping.
func GetIssue(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := repo().Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	switch user.Role {
	case models.Citizen:
		if issue.UserID != user.ID.Hex() {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to view this issue"})
			return
		}
	case models.Corporator:
		if issue.WardNumber != user.WardNumber {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to view this issue"})
			return
		}
	}

	c.JSON(http.StatusOK, issue)
}

// TransitionIssue builds the handler for one transition kind. The engine
// plans the patch; the repository applies it conditionally on the status the
// plan was made against, so a raced transition surfaces as a conflict.
func TransitionIssue(kind lifecycle.TransitionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middlewares.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var input struct {
			CorporatorID     string           `json:"corporatorId"`
			WorkReport       string           `json:"workReport"`
			ResolvedPhoto    string           `json:"resolvedPhoto"`
			ResolvedLocation *models.GeoPoint `json:"resolvedLocation"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&input); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		id := c.Param("id")
		issue, err := repo().Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}

		transition := lifecycle.Transition{
			Kind:             kind,
			CorporatorID:     input.CorporatorID,
			WorkReport:       input.WorkReport,
			ResolvedPhoto:    input.ResolvedPhoto,
			ResolvedLocation: input.ResolvedLocation,
		}

		patch, err := lifecycle.Plan(*issue, transition, actor, time.Now())
		if err != nil {
			respondError(c, err)
			return
		}

		updated, err := repo().ApplyPatch(ctx, id, patch)
		if err != nil {
			respondError(c, err)
			return
		}

		config.Log.Infow("issue transition",
			"issue", id,
			"kind", kind,
			"from", patch.ExpectedStatus,
			"to", patch.NewStatus,
			"actor", actor.ID.Hex(),
		)
		c.JSON(http.StatusOK, updated)
	}
}

// respondError maps the lifecycle error taxonomy onto HTTP responses.
func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if kind := lifecycle.KindOf(err); kind != "" {
		body["code"] = kind
	}
	c.JSON(lifecycle.HTTPStatusOf(err), body)
}
