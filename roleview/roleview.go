// Package roleview derives the subset of issues a given identity may see,
// and the transitions it may request on each. Everything here is a pure
// projection over its inputs; callers recompute it whenever the underlying
// issue set or identity changes instead of caching results.
package roleview

import (
	"civix-be/lifecycle"
	"civix-be/models"
)

// Visible filters issues down to what viewer is allowed to see.
// Citizens see their own reports, corporators their ward, the president all.
func Visible(issues []models.Issue, viewer models.User) []models.Issue {
	switch viewer.Role {
	case models.President:
		out := make([]models.Issue, len(issues))
		copy(out, issues)
		return out
	case models.Corporator:
		return filter(issues, func(i models.Issue) bool {
			return i.WardNumber == viewer.WardNumber
		})
	case models.Citizen:
		return filter(issues, func(i models.Issue) bool {
			return i.UserID == viewer.ID.Hex()
		})
	}
	return nil
}

// Escalated is the president's cross-ward escalation queue.
func Escalated(issues []models.Issue) []models.Issue {
	return filter(issues, func(i models.Issue) bool {
		return i.Status == models.Escalated
	})
}

// ByStatus narrows a visible set to one status (dashboard tabs).
func ByStatus(issues []models.Issue, status models.IssueStatus) []models.Issue {
	return filter(issues, func(i models.Issue) bool {
		return i.Status == status
	})
}

// ActionsFor lists the transitions viewer may request on issue. Citizens get
// none; the returned order is stable for rendering.
func ActionsFor(issue models.Issue, viewer models.User) []lifecycle.TransitionKind {
	switch viewer.Role {
	case models.Corporator:
		if issue.WardNumber != viewer.WardNumber {
			return nil
		}
		switch issue.Status {
		case models.Pending:
			return []lifecycle.TransitionKind{lifecycle.Accept, lifecycle.Escalate}
		case models.Accepted:
			if issue.AssignedCorporator == viewer.ID.Hex() {
				return []lifecycle.TransitionKind{lifecycle.Resolve, lifecycle.Escalate}
			}
			return []lifecycle.TransitionKind{lifecycle.Escalate}
		}
	case models.President:
		switch issue.Status {
		case models.Pending:
			return []lifecycle.TransitionKind{lifecycle.Accept, lifecycle.Escalate}
		case models.Accepted:
			return []lifecycle.TransitionKind{lifecycle.Resolve, lifecycle.Escalate}
		case models.Escalated:
			return []lifecycle.TransitionKind{lifecycle.Reassign, lifecycle.DirectResolve}
		}
	}
	return nil
}

func filter(issues []models.Issue, keep func(models.Issue) bool) []models.Issue {
	out := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if keep(issue) {
			out = append(out, issue)
		}
	}
	return out
}
