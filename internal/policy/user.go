package policy

import "sunday-market/internal/domain"

// UserPolicy guards account edits and moderation.
type UserPolicy struct {
	Admins RoleSet
}

func (p UserPolicy) Allows(actor *domain.User, action Action, target *domain.User) bool {
	if actor == nil {
		return false
	}
	switch action {
	case ActionEdit, ActionUpdate:
		return p.Admins.Has(actor) || (target != nil && actor.ID == target.ID)
	case ActionDestroy, ActionBanSeller, ActionUnbanSeller:
		return p.Admins.Has(actor)
	}
	return false
}
