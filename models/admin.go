package models

import "time"

// Admin is an allow-list entry. Membership alone grants review access;
// emails are stored lowercased and matched lowercased.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
