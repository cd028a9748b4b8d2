package authz

import (
	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskboard/backend/internal/models"
)

// Principal is the authenticated identity for a single request, built
// from a verified access token. It is passed explicitly into every
// service call; nothing reads an ambient current user.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

type Action string

const (
	ActionList     Action = "list"
	ActionCreate   Action = "create"
	ActionRetrieve Action = "retrieve"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

type Decision int

const (
	// Allow permits the action.
	Allow Decision = iota
	// DenyPermission is a visible denial: the collection-level action
	// carries no object whose existence needs hiding.
	DenyPermission
	// DenyNotFound hides the target: reporting "forbidden" on another
	// user's task would confirm it exists.
	DenyNotFound
)

// Authorize is the single choke point for per-action access decisions.
// target is nil for collection-level actions (list, create).
func Authorize(p Principal, action Action, target *models.Task) Decision {
	if p.IsAdmin() {
		return Allow
	}

	switch action {
	case ActionList:
		return Allow
	case ActionCreate:
		return DenyPermission
	case ActionRetrieve, ActionUpdate:
		if target != nil && target.AssignedTo == p.UserID {
			return Allow
		}
		return DenyNotFound
	case ActionDelete:
		// Delete is admin-only, but an owned task is visible to its
		// assignee, so the denial is explicit rather than a 404.
		if target != nil && target.AssignedTo == p.UserID {
			return DenyPermission
		}
		return DenyNotFound
	}

	return DenyNotFound
}

// Scope returns the visibility predicate for a principal as a gorm
// scope. It must be applied at the query layer, before filtering and
// pagination, so that out-of-scope tasks never influence counts or
// leak through 403-vs-404 differences.
func Scope(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsAdmin() {
			return db
		}
		return db.Where("assigned_to = ?", p.UserID)
	}
}
