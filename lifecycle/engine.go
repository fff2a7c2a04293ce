package lifecycle

import (
	"encoding/base64"
	"strings"
	"time"

	"civix-be/models"
)

// TransitionKind enum
type TransitionKind string

const (
	Accept        TransitionKind = "accept"
	Resolve       TransitionKind = "resolve"
	Escalate      TransitionKind = "escalate"
	Reassign      TransitionKind = "reassign"
	DirectResolve TransitionKind = "direct-resolve"
)

// Transition is a requested status change with its payload.
type Transition struct {
	Kind             TransitionKind
	CorporatorID     string // reassign target
	WorkReport       string
	ResolvedPhoto    string
	ResolvedLocation *models.GeoPoint
}

// Patch is the planned outcome of a valid transition. ExpectedStatus is the
// status the stored document must still hold when the patch is applied; the
// repository uses it as the conditional-update guard that closes the
// concurrent-accept race.
type Patch struct {
	ExpectedStatus models.IssueStatus
	NewStatus      models.IssueStatus
	Set            map[string]any
}

// MaxPhotoBytes is the application-level ceiling on a decoded photo payload.
const MaxPhotoBytes = 7 << 20

const jpegDataURIPrefix = "data:image/jpeg;base64,"

// Plan validates req against the current issue state and the actor's
// authority, and returns the patch to apply. It never mutates issue; on any
// failure the returned patch is zero and the error carries the taxonomy kind.
func Plan(issue models.Issue, req Transition, actor models.User, now time.Time) (Patch, error) {
	switch req.Kind {
	case Accept:
		return planAccept(issue, actor, now)
	case Resolve:
		return planResolve(issue, req, actor, now)
	case Escalate:
		return planEscalate(issue, actor)
	case Reassign:
		return planReassign(issue, req, actor, now)
	case DirectResolve:
		return planDirectResolve(issue, req, actor, now)
	}
	return Patch{}, NewValidationError("unknown transition kind %q", req.Kind)
}

func planAccept(issue models.Issue, actor models.User, now time.Time) (Patch, error) {
	if issue.Status != models.Pending {
		return Patch{}, NewIllegalTransitionError("cannot accept issue in status %q", issue.Status)
	}
	if err := requireWardAuthority(issue, actor); err != nil {
		return Patch{}, err
	}
	return Patch{
		ExpectedStatus: models.Pending,
		NewStatus:      models.Accepted,
		Set: map[string]any{
			"status":             models.Accepted,
			"assignedCorporator": actor.ID.Hex(),
			"acceptedAt":         now,
		},
	}, nil
}

func planResolve(issue models.Issue, req Transition, actor models.User, now time.Time) (Patch, error) {
	if issue.Status != models.Accepted {
		return Patch{}, NewIllegalTransitionError("cannot resolve issue in status %q", issue.Status)
	}
	if actor.Role != models.President {
		if actor.Role != models.Corporator || issue.AssignedCorporator != actor.ID.Hex() {
			return Patch{}, NewAuthorizationError("only the assigned corporator may resolve this issue")
		}
	}
	if strings.TrimSpace(req.WorkReport) == "" {
		return Patch{}, NewValidationError("workReport is required")
	}
	if req.ResolvedPhoto == "" {
		return Patch{}, NewValidationError("resolvedPhoto is required")
	}
	if err := ValidatePhoto(req.ResolvedPhoto); err != nil {
		return Patch{}, err
	}
	if req.ResolvedLocation == nil {
		return Patch{}, NewValidationError("resolvedLocation is required")
	}
	return Patch{
		ExpectedStatus: models.Accepted,
		NewStatus:      models.Resolved,
		Set: map[string]any{
			"status":           models.Resolved,
			"workReport":       req.WorkReport,
			"resolvedPhoto":    req.ResolvedPhoto,
			"resolvedLocation": *req.ResolvedLocation,
			"resolvedAt":       now,
		},
	}, nil
}

func planEscalate(issue models.Issue, actor models.User) (Patch, error) {
	if issue.Status != models.Pending && issue.Status != models.Accepted {
		return Patch{}, NewIllegalTransitionError("cannot escalate issue in status %q", issue.Status)
	}
	if err := requireWardAuthority(issue, actor); err != nil {
		return Patch{}, err
	}
	// Status flips; nothing else is touched.
	return Patch{
		ExpectedStatus: issue.Status,
		NewStatus:      models.Escalated,
		Set: map[string]any{
			"status": models.Escalated,
		},
	}, nil
}

func planReassign(issue models.Issue, req Transition, actor models.User, now time.Time) (Patch, error) {
	if issue.Status != models.Escalated {
		return Patch{}, NewIllegalTransitionError("cannot reassign issue in status %q", issue.Status)
	}
	if actor.Role != models.President {
		return Patch{}, NewAuthorizationError("only the president may reassign an escalated issue")
	}
	if req.CorporatorID == "" {
		return Patch{}, NewValidationError("corporatorId is required")
	}
	return Patch{
		ExpectedStatus: models.Escalated,
		NewStatus:      models.Accepted,
		Set: map[string]any{
			"status":             models.Accepted,
			"assignedCorporator": req.CorporatorID,
			"acceptedAt":         now,
		},
	}, nil
}

func planDirectResolve(issue models.Issue, req Transition, actor models.User, now time.Time) (Patch, error) {
	if issue.Status != models.Escalated {
		return Patch{}, NewIllegalTransitionError("cannot resolve issue in status %q", issue.Status)
	}
	if actor.Role != models.President {
		return Patch{}, NewAuthorizationError("only the president may directly resolve an escalated issue")
	}
	if strings.TrimSpace(req.WorkReport) == "" {
		return Patch{}, NewValidationError("workReport is required")
	}
	// President override: photo and location are optional here.
	set := map[string]any{
		"status":     models.Resolved,
		"workReport": req.WorkReport,
		"resolvedAt": now,
	}
	if req.ResolvedPhoto != "" {
		if err := ValidatePhoto(req.ResolvedPhoto); err != nil {
			return Patch{}, err
		}
		set["resolvedPhoto"] = req.ResolvedPhoto
	}
	if req.ResolvedLocation != nil {
		set["resolvedLocation"] = *req.ResolvedLocation
	}
	return Patch{
		ExpectedStatus: models.Escalated,
		NewStatus:      models.Resolved,
		Set:            set,
	}, nil
}

// requireWardAuthority admits a corporator of the issue's ward or the
// president.
func requireWardAuthority(issue models.Issue, actor models.User) error {
	switch actor.Role {
	case models.President:
		return nil
	case models.Corporator:
		if actor.WardNumber == issue.WardNumber {
			return nil
		}
		return NewAuthorizationError("issue belongs to %s, not your ward", issue.WardNumber)
	}
	return NewAuthorizationError("role %q may not act on issues", actor.Role)
}

// ValidateReport checks a new issue before it reaches the store.
func ValidateReport(issue models.Issue) error {
	if !models.ValidIssueType(issue.Type) {
		return NewValidationError("invalid issue type %q", issue.Type)
	}
	if strings.TrimSpace(issue.Description) == "" {
		return NewValidationError("description is required")
	}
	if issue.Photo == "" {
		return NewValidationError("photo is required")
	}
	if err := ValidatePhoto(issue.Photo); err != nil {
		return err
	}
	if issue.Location == (models.GeoPoint{}) {
		return NewValidationError("location is required")
	}
	if issue.WardNumber == "" {
		return NewValidationError("wardNumber is required")
	}
	return nil
}

// ValidatePhoto enforces the JPEG-only, 7MB decoded-size policy on a base64
// data URI payload.
func ValidatePhoto(photo string) error {
	if !strings.HasPrefix(photo, jpegDataURIPrefix) {
		return NewValidationError("photo must be a JPEG data URI")
	}
	encoded := photo[len(jpegDataURIPrefix):]
	decoded := base64.StdEncoding.DecodedLen(len(encoded))
	if decoded > MaxPhotoBytes {
		return NewValidationError("photo exceeds the %dMB limit", MaxPhotoBytes>>20)
	}
	return nil
}
