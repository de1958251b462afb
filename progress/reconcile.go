package progress

import (
	"time"

	"gorm.io/gorm"

	"github.com/modusklar/modusklar/models"
	"github.com/modusklar/modusklar/utils"
)

const reconcileBatchSize = 100

// Reconcile repairs daily_progress rows that drifted from their decided
// video submissions, e.g. when a historical writer updated the submission
// but failed before updating the progress row. For each recently decided
// submission the latest attempt per (user, day, slot) wins; older decided
// attempts superseded by a retry are left alone.
func Reconcile(db *gorm.DB, lookback time.Duration) (int, error) {
	since := time.Now().Add(-lookback)

	var decided []models.VideoSubmission
	err := db.
		Where("status IN ? AND updated_at >= ?", []string{models.SlotStatusVerified, models.SlotStatusRejected}, since).
		Order("updated_at ASC").
		Limit(reconcileBatchSize).
		Find(&decided).Error
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, sub := range decided {
		var latest models.VideoSubmission
		err := db.
			Where("user_id = ? AND day_number = ? AND video_type = ?", sub.UserID, sub.DayNumber, sub.VideoType).
			Order("recorded_at DESC").
			First(&latest).Error
		if err != nil {
			continue
		}
		if latest.ID != sub.ID || latest.Status == models.SlotStatusPending {
			continue
		}

		var row models.DailyProgress
		err = db.Where("user_id = ? AND day_number = ?", sub.UserID, sub.DayNumber).First(&row).Error
		current := ""
		date := sub.RecordedAt
		if err == nil {
			if sub.VideoType == models.VideoTypeMorning {
				current = row.MorningStatus
			} else {
				current = row.EveningStatus
			}
			date = row.Date
		} else if err != gorm.ErrRecordNotFound {
			continue
		}
		if current == sub.Status {
			continue
		}

		if err := UpsertSlot(db, sub.UserID, sub.DayNumber, sub.VideoType, sub.Status, date); err != nil {
			if utils.Sugar != nil {
				utils.Sugar.Warnf("progress reconcile upsert failed user=%d day=%d: %v", sub.UserID, sub.DayNumber, err)
			}
			continue
		}
		repaired++
	}
	return repaired, nil
}

// StartReconciler launches a background goroutine that periodically runs
// Reconcile. Best-effort; failures are logged and retried next round.
func StartReconciler(db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			repaired, err := Reconcile(db, 24*time.Hour)
			if err != nil {
				if utils.Sugar != nil {
					utils.Sugar.Warnf("progress reconcile pass failed: %v", err)
				}
				continue
			}
			if repaired > 0 && utils.Sugar != nil {
				utils.Sugar.Infof("progress reconcile repaired %d slot(s)", repaired)
			}
		}
	}()
}
