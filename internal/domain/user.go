package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"sunday-market/pkg/utils"
)

type User struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Slug            string    `gorm:"uniqueIndex;size:191;not null" json:"slug"`
	FirstName       string    `gorm:"size:64" json:"first_name" validate:"max=64"`
	LastName        string    `gorm:"size:64" json:"last_name" validate:"max=64"`
	Email           string    `gorm:"uniqueIndex;size:191;not null" json:"email" validate:"required,email,max=191"`
	PasswordHash    string    `gorm:"size:100;not null" json:"-"`
	ShopName        string    `gorm:"size:128" json:"shop_name" validate:"max=128"`
	Website         string    `gorm:"size:255" json:"website" validate:"omitempty,url,max=255"`
	ShopDescription string    `gorm:"type:text" json:"shop_description" validate:"max=4000"`
	Image           string    `gorm:"size:512" json:"image" validate:"omitempty,url,max=512"`
	Role            Role      `gorm:"size:16;not null;default:Buyer" json:"role"`
	Ban             bool      `gorm:"not null;default:false;index" json:"ban"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Products []Product `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// DisplayName falls back to the shop name and then the email.
func (u *User) DisplayName() string {
	if n := u.FullName(); n != "" {
		return n
	}
	if u.ShopName != "" {
		return u.ShopName
	}
	return u.Email
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if u.Role == "" {
		u.Role = RoleBuyer
	}
	if u.Slug == "" {
		s, err := uniqueSlug(tx, u.slugBase())
		if err != nil {
			return err
		}
		u.Slug = s
	}
	return nil
}

func (u *User) slugBase() string {
	for _, cand := range []string{u.FullName(), u.ShopName, emailLocal(u.Email)} {
		if s := slug.Make(cand); s != "" {
			return s
		}
	}
	return "user"
}

func emailLocal(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// uniqueSlug appends -2, -3, ... until the slug is free.
func uniqueSlug(tx *gorm.DB, base string) (string, error) {
	cand := base
	for i := 2; ; i++ {
		var n int64
		if err := tx.Session(&gorm.Session{NewDB: true}).Model(&User{}).Where("slug = ?", cand).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return cand, nil
		}
		cand = base + "-" + strconv.Itoa(i)
	}
}
