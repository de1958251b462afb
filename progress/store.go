package progress

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/modusklar/modusklar/models"
)

// SlotColumn maps a video type to its daily_progress column.
func SlotColumn(videoType string) (string, error) {
	switch videoType {
	case models.VideoTypeMorning:
		return "morning_status", nil
	case models.VideoTypeEvening:
		return "evening_status", nil
	}
	return "", fmt.Errorf("unknown video type %q", videoType)
}

// LoadRows fetches a user's progress rows ordered by day number ascending.
func LoadRows(db *gorm.DB, userID uint) ([]models.DailyProgress, error) {
	var rows []models.DailyProgress
	err := db.Where("user_id = ?", userID).Order("day_number ASC").Find(&rows).Error
	return rows, err
}

// UpsertSlot writes one slot status keyed on (user_id, day_number). Calling
// it twice with the same key updates the single existing row; it never
// creates a second one.
func UpsertSlot(db *gorm.DB, userID uint, dayNumber int, videoType, status string, date time.Time) error {
	column, err := SlotColumn(videoType)
	if err != nil {
		return err
	}

	row := models.DailyProgress{
		UserID:    userID,
		DayNumber: dayNumber,
		Date:      date,
	}
	if videoType == models.VideoTypeMorning {
		row.MorningStatus = status
	} else {
		row.EveningStatus = status
	}

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "day_number"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:       status,
			"date":       date,
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
}
