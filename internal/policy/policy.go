// Package policy decides whether an actor may perform an action on a record.
// Every rule is a pure function of the actor, the action and the target.
package policy

import (
	"errors"
	"fmt"

	"sunday-market/internal/domain"
)

type Action string

const (
	ActionNew         Action = "new"
	ActionCreate      Action = "create"
	ActionEdit        Action = "edit"
	ActionUpdate      Action = "update"
	ActionDestroy     Action = "destroy"
	ActionBanSeller   Action = "ban_seller"
	ActionUnbanSeller Action = "unban_seller"
)

var ErrNotAuthorized = errors.New("not authorized")

// DeniedError names the refused action; it matches ErrNotAuthorized.
type DeniedError struct {
	Action Action
}

func (e *DeniedError) Error() string { return fmt.Sprintf("not authorized to %s", e.Action) }

func (e *DeniedError) Is(target error) bool { return target == ErrNotAuthorized }

// Policy is a per-record-type rule table. A nil actor is anonymous.
type Policy[T any] interface {
	Allows(actor *domain.User, action Action, record T) bool
}

func Authorize[T any](p Policy[T], actor *domain.User, action Action, record T) error {
	if p.Allows(actor, action, record) {
		return nil
	}
	return &DeniedError{Action: action}
}

// RoleSet is the configured set of administrator roles.
type RoleSet map[domain.Role]struct{}

func NewRoleSet(roles ...domain.Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Has reports whether actor holds one of the roles; anonymous never does.
func (s RoleSet) Has(actor *domain.User) bool {
	if actor == nil {
		return false
	}
	_, ok := s[actor.Role]
	return ok
}
