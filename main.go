package main

import (
	"strings"
	"time"

	"github.com/modusklar/modusklar/config"
	"github.com/modusklar/modusklar/models"
	"github.com/modusklar/modusklar/progress"
	"github.com/modusklar/modusklar/routes"
	"github.com/modusklar/modusklar/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.DailyProgress{}, &models.VideoSubmission{}, &models.Admin{})

	seedAdmins(cfg.AdminEmails)

	r := routes.SetupRouter(db)

	// Background repair of progress rows left behind by partial writes
	progress.StartReconciler(db, time.Duration(cfg.ReconcileIntervalMinutes)*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

// seedAdmins makes sure the configured allow-list entries exist. Entries
// removed from the config stay in the table; delete them with admin
// tooling.
func seedAdmins(emails []string) {
	db := config.DB()
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		admin := models.Admin{Email: email}
		if err := db.Where("email = ?", email).FirstOrCreate(&admin).Error; err != nil {
			utils.Sugar.Warnf("failed to seed admin %s: %v", email, err)
		}
	}
}
