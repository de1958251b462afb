package models

import "time"

// Video slot types.
const (
	VideoTypeMorning = "morning"
	VideoTypeEvening = "evening"
)

// VideoSubmission records one recorded attempt. Created when a participant
// finishes recording; mutated exactly once by a review decision, which sets
// Status, VerifiedAt, VerifiedBy and RejectionReason together.
type VideoSubmission struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	User            User       `json:"user"`
	VideoType       string     `gorm:"size:16;not null" json:"video_type"`
	DayNumber       int        `gorm:"not null" json:"day_number"`
	Status          string     `gorm:"size:16;index;default:pending" json:"status"`
	RecordedAt      time.Time  `gorm:"index" json:"recorded_at"`
	VerifiedAt      *time.Time `json:"verified_at"`
	VerifiedBy      string     `gorm:"size:255" json:"verified_by"`
	RejectionReason string     `gorm:"size:512" json:"rejection_reason"`
	VideoURL        string     `gorm:"size:1024" json:"video_url"`
	FileSize        int64      `json:"file_size"`
	DurationSeconds int        `json:"duration_seconds"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
