package model

import (
	"time"

	"gorm.io/gorm"
)

// UmkmProfile is the seller-side profile of a user, one-to-one. It exists in
// two states: pending (submitted, not yet reviewed) and verified. A rejected
// application is deleted outright, so there is no rejected state on the row.
type UmkmProfile struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	BusinessName    string `gorm:"not null" json:"business_name"`
	BusinessAddress string `gorm:"type:text" json:"business_address"`
	ContactPhone    string `gorm:"type:varchar(30)" json:"contact_phone"`
	Description     string `gorm:"type:text" json:"description"`

	IsVerified bool       `gorm:"default:false;not null;index" json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

func (UmkmProfile) TableName() string {
	return "umkm_profiles"
}

// Derived partner status as surfaced to sessions and the UI.
const (
	UmkmStatusPending  = "pending"
	UmkmStatusVerified = "verified"
)

// DeriveUmkmStatus computes the partner status from the profile alone:
// nil (no profile), "pending", or "verified". This is the only place the
// status is derived; it is never stored.
func DeriveUmkmStatus(profile *UmkmProfile) *string {
	if profile == nil {
		return nil
	}
	status := UmkmStatusPending
	if profile.IsVerified {
		status = UmkmStatusVerified
	}
	return &status
}
