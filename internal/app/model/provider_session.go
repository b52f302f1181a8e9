package model

import "time"

// ProviderSession is the persisted backing record of a provider-managed
// session (Google OAuth or credential login). The session token handed to the
// client references this row by ID; deleting the row logs the session out
// server-side regardless of the token's own expiry.
type ProviderSession struct {
	ID        string    `gorm:"primarykey;type:varchar(64)" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Provider  string    `gorm:"type:varchar(20);not null" json:"provider"` // google, credentials
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProviderSession) TableName() string {
	return "provider_sessions"
}

// Expired reports whether the backing session has passed its lifetime.
func (s *ProviderSession) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
