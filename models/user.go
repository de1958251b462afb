package models

import (
	"time"

	"gorm.io/gorm"
)

// User status values.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a program participant. Created at registration and
// immutable afterwards except for Status and IDVerified, which are set by
// admin tooling.
type User struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Name                 string    `gorm:"size:128;not null" json:"name"`
	Email                string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	InsuranceNumber      string    `gorm:"size:64" json:"insurance_number"`
	NotificationsEnabled bool      `gorm:"default:false" json:"notifications_enabled"`
	ChallengeStartDate   time.Time `gorm:"type:date" json:"challenge_start_date"`
	IDVerified           bool      `gorm:"default:false" json:"id_verified"`
	Status               string    `gorm:"size:16;default:active" json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// BeforeCreate hook ensures defaults are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	if u.ChallengeStartDate.IsZero() {
		u.ChallengeStartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
