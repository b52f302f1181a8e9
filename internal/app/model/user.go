package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCustomer  UserRole = "customer"   // buyer
	RoleUmkmOwner UserRole = "umkm_owner" // verified food business (seller)
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Username     *string        `gorm:"uniqueIndex" json:"username,omitempty"` // optional, absent for OAuth-created accounts
	PasswordHash *string        `json:"-"`                                     // nil for pure OAuth accounts
	Name         string         `gorm:"not null" json:"name"`
	ProfileImage string         `json:"profile_image"`
	Phone        string         `json:"phone_number"`
	Address      string         `json:"address"`
	Role         UserRole       `gorm:"type:varchar(20);default:'customer'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	UmkmProfile *UmkmProfile `gorm:"foreignKey:UserID" json:"umkm_profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account can log in with credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
