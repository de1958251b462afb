package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/modusklar/modusklar/middleware"
	"github.com/modusklar/modusklar/models"
)

func TestValidateDecision(t *testing.T) {
	cases := []struct {
		name    string
		req     decisionRequest
		wantErr bool
		outcome string
		reason  string
	}{
		{"approve", decisionRequest{Outcome: "verified"}, false, "verified", ""},
		{"approve ignores reason", decisionRequest{Outcome: "verified", Reason: "looks fine"}, false, "verified", ""},
		{"reject with reason", decisionRequest{Outcome: "rejected", Reason: "device not visible"}, false, "rejected", "device not visible"},
		{"reject without reason", decisionRequest{Outcome: "rejected"}, true, "", ""},
		{"reject with blank reason", decisionRequest{Outcome: "rejected", Reason: "   "}, true, "", ""},
		{"unknown outcome", decisionRequest{Outcome: "approved"}, true, "", ""},
		{"empty outcome", decisionRequest{}, true, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, reason, err := validateDecision(tc.req)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome != tc.outcome || reason != tc.reason {
				t.Fatalf("got (%q,%q), want (%q,%q)", outcome, reason, tc.outcome, tc.reason)
			}
		})
	}
}

func TestValidateDecisionSanitizesReason(t *testing.T) {
	_, reason, err := validateDecision(decisionRequest{
		Outcome: "rejected",
		Reason:  `device hidden <script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(reason, "<script>") {
		t.Fatalf("reason not sanitized: %q", reason)
	}
}

func newDecideRequest(t *testing.T, id, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/videos/"+id+"/decision", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func performDecide(t *testing.T, ctrl *AdminController, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.POST("/api/v1/admin/videos/:id/decision", func(ctx *gin.Context) {
		ctx.Set(middleware.ContextAdminEmailKey, "reviewer@example.com")
	}, ctrl.Decide)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, newDecideRequest(t, id, body))
	return w
}

func TestDecideRejectionWithoutReasonTouchesNothing(t *testing.T) {
	db, mock := newMockDB(t)
	ctrl := NewAdminController(db)

	w := performDecide(t, ctrl, "7", `{"outcome":"rejected"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	// No transaction may have started; the store stays untouched.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected store access: %v", err)
	}
}

func TestDecideAlreadyDecidedConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	ctrl := NewAdminController(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions`(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "video_type", "day_number", "status"}).
			AddRow(7, 3, models.VideoTypeMorning, 2, models.SlotStatusVerified))
	mock.ExpectRollback()

	w := performDecide(t, ctrl, "7", `{"outcome":"rejected","reason":"no device shown"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDecideUpdatesSubmissionAndProgressAtomically(t *testing.T) {
	db, mock := newMockDB(t)
	ctrl := NewAdminController(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `video_submissions`(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "video_type", "day_number", "status"}).
			AddRow(7, 3, models.VideoTypeEvening, 2, models.SlotStatusPending))
	mock.ExpectExec("UPDATE `video_submissions` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `daily_progress`(.+)ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	w := performDecide(t, ctrl, "7", `{"outcome":"verified"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAdminLoginLowercasesEmail(t *testing.T) {
	db, mock := newMockDB(t)
	ctrl := NewAdminController(db)

	mock.ExpectQuery("SELECT (.+) FROM `admins`").
		WithArgs("reviewer@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(1, "reviewer@example.com"))

	r := gin.New()
	r.POST("/api/v1/admin/login", ctrl.Login)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"email":"  Reviewer@Example.COM "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAdminLoginUnknownEmailDenied(t *testing.T) {
	db, mock := newMockDB(t)
	ctrl := NewAdminController(db)

	mock.ExpectQuery("SELECT (.+) FROM `admins`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	r := gin.New()
	r.POST("/api/v1/admin/login", ctrl.Login)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"email":"nobody@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}
