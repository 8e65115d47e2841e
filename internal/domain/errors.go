package domain

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Models lists every table owned by the application, in migration order.
func Models() []any {
	return []any{&User{}, &Category{}, &Product{}}
}
