// Package service holds the request-independent operations behind each page.
// The acting user is always an explicit argument; nil means anonymous.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"sunday-market/internal/domain"
	"sunday-market/internal/flash"
	"sunday-market/pkg/paginate"
)

// Outcome is what a mutating operation asks the caller to do next:
// redirect to Redirect and show Flash there exactly once.
type Outcome struct {
	Redirect string        `json:"redirect"`
	Flash    flash.Message `json:"flash"`
}

// ValidationError maps form field names to human messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindBySlug(ctx context.Context, slug string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, visibleOnly bool, page, perPage int) (paginate.Page[domain.User], error)
	Update(ctx context.Context, u *domain.User) error
	SetBan(ctx context.Context, id string, ban bool) error
	SetRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
	Products(ctx context.Context, userID string, page, perPage int) (paginate.Page[domain.Product], error)
	Categories(ctx context.Context, userID string, page, perPage int) (paginate.Page[domain.Category], error)
}

type CategoryStore interface {
	Create(ctx context.Context, c *domain.Category) error
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, page, perPage int) (paginate.Page[domain.Category], error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
}

type ProductStore interface {
	List(ctx context.Context, page, perPage int) (paginate.Page[domain.Product], error)
	ByCategory(ctx context.Context, categoryID string, page, perPage int) (paginate.Page[domain.Product], error)
}

const (
	SellersPath    = "/sellers"
	CategoriesPath = "/categories"
)

func SellerPath(u *domain.User) string       { return SellersPath + "/" + u.Slug }
func CategoryPath(c *domain.Category) string { return CategoriesPath + "/" + c.ID }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check runs struct validation and flattens the result into a ValidationError.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		if _, seen := out.Fields[fe.Field()]; !seen {
			out.Fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", fe.Param())
	case "min":
		return fmt.Sprintf("is too short (minimum is %s characters)", fe.Param())
	case "email", "url", "hexcolor":
		return "is invalid"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}
