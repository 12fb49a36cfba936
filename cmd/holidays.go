package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/attendance-management/internal/calendar"
	calendarPostgres "github.com/frahmantamala/attendance-management/internal/calendar/postgres"
	"github.com/frahmantamala/attendance-management/pkg/logger"
)

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Sync the holiday calendar from the external source",
	Long:  `Fetch the current and next year from the holiday source and append any missing dates.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		logger.Init(cfg.Logging.Env)
		lg := logger.LoggerWrapper()

		_, gormDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		repo := calendarPostgres.NewHolidayRepository(gormDB)
		source := calendar.NewHTTPSource(cfg.Holidays.SourceURL, cfg.Holidays.RequestTimeout, lg)
		service := calendar.NewService(repo, source, cfg.Holidays.RefreshInterval, lg)

		if err := service.RefreshHolidays(context.Background()); err != nil {
			log.Fatalf("holiday sync failed: %v", err)
		}
	},
}
