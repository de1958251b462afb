package progress

import (
	"time"

	"github.com/modusklar/modusklar/models"
)

// Submission windows in local hours, half-open.
const (
	MorningWindowStart = 8
	MorningWindowEnd   = 12
	EveningWindowStart = 18
	EveningWindowEnd   = 22
)

// WindowState reports which submission windows are currently open.
type WindowState struct {
	MorningOpen bool `json:"morning_open"`
	EveningOpen bool `json:"evening_open"`
}

// Windows evaluates both submission windows against the local hour of now.
func Windows(now time.Time) WindowState {
	hour := now.Hour()
	return WindowState{
		MorningOpen: hour >= MorningWindowStart && hour < MorningWindowEnd,
		EveningOpen: hour >= EveningWindowStart && hour < EveningWindowEnd,
	}
}

// SlotWindowOpen reports whether the window of the given video type is
// currently open.
func SlotWindowOpen(videoType string, now time.Time) bool {
	w := Windows(now)
	switch videoType {
	case models.VideoTypeMorning:
		return w.MorningOpen
	case models.VideoTypeEvening:
		return w.EveningOpen
	}
	return false
}

// slotStatus picks the matching slot out of a pair.
func slotStatus(videoType string, today SlotPair) string {
	if videoType == models.VideoTypeMorning {
		return today.Morning
	}
	return today.Evening
}

// CanSubmit gates a recording attempt: the slot's window must be open and
// the slot must not already be pending or verified. A rejected slot may be
// retried within the same day.
func CanSubmit(videoType string, today SlotPair, now time.Time) bool {
	if !SlotWindowOpen(videoType, now) {
		return false
	}
	switch slotStatus(videoType, today) {
	case models.SlotStatusPending, models.SlotStatusVerified:
		return false
	}
	return true
}
