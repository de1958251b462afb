package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/modusklar/modusklar/models"
	"github.com/modusklar/modusklar/progress"
	"github.com/modusklar/modusklar/recording"
	"github.com/modusklar/modusklar/utils"
)

// VideoController accepts finished recordings from participants.
type VideoController struct {
	db *gorm.DB
	// now is swapped out in tests; window checks depend on the clock.
	now func() time.Time
}

// NewVideoController creates a VideoController.
func NewVideoController(db *gorm.DB) *VideoController {
	return &VideoController{db: db, now: time.Now}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Submit stores a recording for the current day's slot. The time window
// and slot eligibility are re-checked server-side; the submission row and
// the daily progress slot are written in one transaction.
func (v *VideoController) Submit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	videoType := strings.TrimSpace(ctx.PostForm("video_type"))
	if videoType != models.VideoTypeMorning && videoType != models.VideoTypeEvening {
		utils.Error(ctx, http.StatusBadRequest, 40020, "video_type must be morning or evening")
		return
	}

	duration := 0
	if raw := strings.TrimSpace(ctx.PostForm("duration_seconds")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.Error(ctx, http.StatusBadRequest, 40021, "invalid duration_seconds")
			return
		}
		if n > recording.MaxDurationSeconds {
			utils.Error(ctx, http.StatusBadRequest, 40022, "recording exceeds the 30 second limit")
			return
		}
		duration = n
	}

	rows, err := progress.LoadRows(v.db, userID)
	if err != nil {
		utils.Sugar.Errorf("failed to load progress for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load progress")
		return
	}

	now := v.now()
	summary := progress.Summarize(rows)
	if summary.CurrentDay > progress.ProgramDays {
		utils.Error(ctx, http.StatusConflict, 40910, "program already completed")
		return
	}
	if !progress.SlotWindowOpen(videoType, now) {
		utils.Error(ctx, http.StatusConflict, 40911, "submission window closed")
		return
	}
	if !progress.CanSubmit(videoType, summary.Today, now) {
		utils.Error(ctx, http.StatusConflict, 40912, "slot already submitted")
		return
	}

	submission := models.VideoSubmission{
		UserID:          userID,
		VideoType:       videoType,
		DayNumber:       summary.CurrentDay,
		Status:          models.SlotStatusPending,
		RecordedAt:      now,
		DurationSeconds: duration,
	}

	// The recording itself is optional: clients on flaky connections may
	// retry the binary upload separately from the metadata.
	if file, header, err := ctx.Request.FormFile("file"); err == nil {
		defer file.Close()
		obj, err := utils.SaveVideoObject(file, header.Filename)
		if err != nil {
			utils.Sugar.Errorf("video upload failed for user %d: %v", userID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to store recording")
			return
		}
		submission.VideoURL = obj.URL
		submission.FileSize = obj.Size
	}

	err = v.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		return progress.UpsertSlot(tx, userID, submission.DayNumber, videoType, models.SlotStatusPending, dateOnly(now))
	})
	if err != nil {
		utils.Sugar.Errorf("failed to record submission for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to record submission")
		return
	}

	utils.Success(ctx, gin.H{"video": submission})
}
