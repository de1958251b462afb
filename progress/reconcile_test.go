package progress

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/modusklar/modusklar/models"
)

var submissionCols = []string{"id", "user_id", "video_type", "day_number", "status", "recorded_at", "updated_at"}
var progressCols = []string{"id", "user_id", "day_number", "date", "morning_status", "evening_status"}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func TestReconcileRepairsDriftedSlot(t *testing.T) {
	db, mock := newMockDB(t)
	recordedAt := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	// One verified submission whose progress slot is still pending.
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions` WHERE status IN").
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(7, 3, models.VideoTypeMorning, 2, models.SlotStatusVerified, recordedAt, recordedAt))
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions` WHERE user_id =").
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(7, 3, models.VideoTypeMorning, 2, models.SlotStatusVerified, recordedAt, recordedAt))
	mock.ExpectQuery("SELECT (.+) FROM `daily_progress`").
		WillReturnRows(sqlmock.NewRows(progressCols).
			AddRow(11, 3, 2, recordedAt, models.SlotStatusPending, ""))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `daily_progress`(.+)ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	repaired, err := Reconcile(db, 24*time.Hour)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if repaired != 1 {
		t.Fatalf("repaired = %d, want 1", repaired)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReconcileSkipsSlotAlreadyInSync(t *testing.T) {
	db, mock := newMockDB(t)
	recordedAt := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM `video_submissions` WHERE status IN").
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(7, 3, models.VideoTypeMorning, 2, models.SlotStatusVerified, recordedAt, recordedAt))
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions` WHERE user_id =").
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(7, 3, models.VideoTypeMorning, 2, models.SlotStatusVerified, recordedAt, recordedAt))
	mock.ExpectQuery("SELECT (.+) FROM `daily_progress`").
		WillReturnRows(sqlmock.NewRows(progressCols).
			AddRow(11, 3, 2, recordedAt, models.SlotStatusVerified, ""))

	repaired, err := Reconcile(db, 24*time.Hour)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if repaired != 0 {
		t.Fatalf("repaired = %d, want 0", repaired)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected write: %v", err)
	}
}

func TestReconcileSkipsSupersededDecision(t *testing.T) {
	db, mock := newMockDB(t)
	recordedAt := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	retryAt := recordedAt.Add(30 * time.Minute)

	// The rejected attempt was retried; the newer submission owns the slot.
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions` WHERE status IN").
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(7, 3, models.VideoTypeMorning, 2, models.SlotStatusRejected, recordedAt, recordedAt))
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions` WHERE user_id =").
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(9, 3, models.VideoTypeMorning, 2, models.SlotStatusVerified, retryAt, retryAt))

	repaired, err := Reconcile(db, 24*time.Hour)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if repaired != 0 {
		t.Fatalf("repaired = %d, want 0", repaired)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected access: %v", err)
	}
}

func TestReconcileSkipsSlotWithPendingRetry(t *testing.T) {
	db, mock := newMockDB(t)
	recordedAt := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	retryAt := recordedAt.Add(30 * time.Minute)

	// A fresh pending attempt exists; its own review will settle the slot.
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions` WHERE status IN").
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(7, 3, models.VideoTypeMorning, 2, models.SlotStatusRejected, recordedAt, recordedAt))
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions` WHERE user_id =").
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(9, 3, models.VideoTypeMorning, 2, models.SlotStatusPending, retryAt, retryAt))

	repaired, err := Reconcile(db, 24*time.Hour)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if repaired != 0 {
		t.Fatalf("repaired = %d, want 0", repaired)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected access: %v", err)
	}
}

func TestReconcileCreatesMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	recordedAt := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	// The submission write committed but the progress row never did.
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions` WHERE status IN").
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(7, 3, models.VideoTypeEvening, 4, models.SlotStatusVerified, recordedAt, recordedAt))
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions` WHERE user_id =").
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(7, 3, models.VideoTypeEvening, 4, models.SlotStatusVerified, recordedAt, recordedAt))
	mock.ExpectQuery("SELECT (.+) FROM `daily_progress`").
		WillReturnRows(sqlmock.NewRows(progressCols))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `daily_progress`(.+)ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	repaired, err := Reconcile(db, 24*time.Hour)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if repaired != 1 {
		t.Fatalf("repaired = %d, want 1", repaired)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
