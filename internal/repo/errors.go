package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"sunday-market/internal/domain"
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case isDupKey(err):
		return errors.Join(domain.ErrDuplicate, err)
	}
	return err
}

// isDupKey matches driver messages instead of gorm.ErrDuplicatedKey, which
// needs TranslateError and differs between dialects.
func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
