package policy

import "sunday-market/internal/domain"

// CategoryPolicy lets administrators shape the taxonomy. Reads are public
// and never consult the policy.
type CategoryPolicy struct {
	Admins RoleSet
}

func (p CategoryPolicy) Allows(actor *domain.User, action Action, _ *domain.Category) bool {
	switch action {
	case ActionNew, ActionCreate, ActionEdit, ActionUpdate, ActionDestroy:
		return p.Admins.Has(actor)
	}
	return false
}
