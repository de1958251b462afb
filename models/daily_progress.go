package models

import "time"

// Slot status values shared by DailyProgress slots and VideoSubmission.
// The empty string means no submission exists for the slot yet.
const (
	SlotStatusPending  = "pending"
	SlotStatusVerified = "verified"
	SlotStatusRejected = "rejected"
)

// DailyProgress stores one row per (user, day_number) pair. A day counts
// as completed when both slot statuses are verified. Writes go through an
// upsert keyed on the composite index.
type DailyProgress struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex:idx_user_day;not null" json:"user_id"`
	DayNumber     int       `gorm:"uniqueIndex:idx_user_day;not null" json:"day_number"`
	Date          time.Time `gorm:"type:date" json:"date"`
	MorningStatus string    `gorm:"size:16" json:"morning_status"`
	EveningStatus string    `gorm:"size:16" json:"evening_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Completed reports whether both slots are verified.
func (d DailyProgress) Completed() bool {
	return d.MorningStatus == SlotStatusVerified && d.EveningStatus == SlotStatusVerified
}
