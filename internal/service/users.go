package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sunday-market/internal/domain"
	"sunday-market/internal/flash"
	"sunday-market/internal/policy"
	"sunday-market/pkg/paginate"
)

// UserAttrs are the fields an update may change; nil fields are left alone.
type UserAttrs struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Email           *string `json:"email"`
	Image           *string `json:"image"`
	ShopName        *string `json:"shop_name"`
	Website         *string `json:"website"`
	ShopDescription *string `json:"shop_description"`
	Ban             *bool   `json:"ban"`
}

func (a UserAttrs) applyTo(u *domain.User, canModerate bool) {
	set := func(dst *string, src *string) {
		if src = trimmed(src); src != nil {
			*dst = *src
		}
	}
	set(&u.FirstName, a.FirstName)
	set(&u.LastName, a.LastName)
	if e := trimmed(a.Email); e != nil {
		u.Email = strings.ToLower(*e)
	}
	set(&u.Image, a.Image)
	set(&u.ShopName, a.ShopName)
	set(&u.Website, a.Website)
	set(&u.ShopDescription, a.ShopDescription)
	if a.Ban != nil && canModerate {
		u.Ban = *a.Ban
	}
}

type Users struct {
	store   UserStore
	policy  policy.UserPolicy
	perPage int
	log     *zap.Logger
}

func NewUsers(store UserStore, admins policy.RoleSet, perPage int, log *zap.Logger) *Users {
	if log == nil {
		log = zap.NewNop()
	}
	_, perPage = paginate.Normalize(1, perPage)
	return &Users{store: store, policy: policy.UserPolicy{Admins: admins}, perPage: perPage, log: log}
}

// CanModerate reports whether viewer sees banned accounts and moderation controls.
func (s *Users) CanModerate(viewer *domain.User) bool { return s.policy.Admins.Has(viewer) }

// CanEdit reports whether viewer may open target's edit form.
func (s *Users) CanEdit(viewer, target *domain.User) bool {
	return s.policy.Allows(viewer, policy.ActionEdit, target)
}

// List shows every account to administrators and only unbanned ones to
// everybody else.
func (s *Users) List(ctx context.Context, viewer *domain.User, page int) (paginate.Page[domain.User], error) {
	return s.store.List(ctx, !s.CanModerate(viewer), page, s.perPage)
}

func (s *Users) Show(ctx context.Context, slug string) (*domain.User, error) {
	return s.store.FindBySlug(ctx, slug)
}

func (s *Users) Edit(ctx context.Context, actor *domain.User, slug string) (*domain.User, error) {
	u, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize[*domain.User](s.policy, actor, policy.ActionEdit, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update applies in to the account. On a validation failure the returned
// user carries the submitted values so the form can be shown again.
func (s *Users) Update(ctx context.Context, actor *domain.User, slug string, in UserAttrs) (*domain.User, Outcome, error) {
	u, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, Outcome{}, err
	}
	if err := policy.Authorize[*domain.User](s.policy, actor, policy.ActionUpdate, u); err != nil {
		return nil, Outcome{}, err
	}

	edited := *u
	in.applyTo(&edited, s.CanModerate(actor))
	if err := check(&edited); err != nil {
		return &edited, Outcome{}, err
	}
	if err := s.store.Update(ctx, &edited); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return &edited, Outcome{}, &ValidationError{Fields: map[string]string{"email": "has already been taken"}}
		}
		return &edited, Outcome{}, err
	}
	s.log.Info("user updated", zap.String("slug", edited.Slug), zap.String("actor", actor.ID))
	return &edited, Outcome{
		Redirect: SellerPath(&edited),
		Flash:    flash.NewNotice(fmt.Sprintf("The user %s was updated successfully.", edited.DisplayName())),
	}, nil
}

// Destroy hard-deletes the account.
func (s *Users) Destroy(ctx context.Context, actor *domain.User, slug string) (Outcome, error) {
	u, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return Outcome{}, err
	}
	if err := policy.Authorize[*domain.User](s.policy, actor, policy.ActionDestroy, u); err != nil {
		return Outcome{}, err
	}
	if err := s.store.Delete(ctx, u.ID); err != nil {
		s.log.Error("delete user failed", zap.String("slug", u.Slug), zap.Error(err))
		return Outcome{Redirect: SellerPath(u), Flash: flash.NewAlert("The user could not be deleted")}, nil
	}
	s.log.Info("user deleted", zap.String("slug", u.Slug), zap.String("actor", actor.ID))
	return Outcome{Redirect: SellersPath, Flash: flash.NewDanger("The user was deleted successfully")}, nil
}

func (s *Users) Products(ctx context.Context, slug string, page int) (*domain.User, paginate.Page[domain.Product], error) {
	u, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, paginate.Page[domain.Product]{}, err
	}
	p, err := s.store.Products(ctx, u.ID, page, s.perPage)
	return u, p, err
}

func (s *Users) Categories(ctx context.Context, slug string, page int) (*domain.User, paginate.Page[domain.Category], error) {
	u, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, paginate.Page[domain.Category]{}, err
	}
	p, err := s.store.Categories(ctx, u.ID, page, s.perPage)
	return u, p, err
}

func (s *Users) BanSeller(ctx context.Context, actor *domain.User, slug string) (Outcome, error) {
	return s.setBan(ctx, actor, slug, true)
}

func (s *Users) UnbanSeller(ctx context.Context, actor *domain.User, slug string) (Outcome, error) {
	return s.setBan(ctx, actor, slug, false)
}

func (s *Users) setBan(ctx context.Context, actor *domain.User, slug string, ban bool) (Outcome, error) {
	action, verb := policy.ActionBanSeller, "banned"
	if !ban {
		action, verb = policy.ActionUnbanSeller, "unbanned"
	}

	u, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return Outcome{}, err
	}
	if err := policy.Authorize[*domain.User](s.policy, actor, action, u); err != nil {
		return Outcome{}, err
	}
	if err := s.store.SetBan(ctx, u.ID, ban); err != nil {
		s.log.Error("set ban failed", zap.String("slug", u.Slug), zap.Bool("ban", ban), zap.Error(err))
		return Outcome{Redirect: SellerPath(u), Flash: flash.NewAlert("The user could not be " + verb)}, nil
	}
	s.log.Info("user "+verb, zap.String("slug", u.Slug), zap.String("actor", actor.ID))
	return Outcome{Redirect: SellersPath, Flash: flash.NewNotice("The user was successfully " + verb)}, nil
}
