package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	staffDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/staff"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with an initial staff roster",
	Long:  `Seed the database with sample staff records for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, gormDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
		roster := []staffDatamodel.Record{
			{
				UserID:              "U-dev-admin",
				DisplayName:         "Alex Chen",
				EmployeeType:        staffDatamodel.TypeSalaried,
				BaseSalary:          42000,
				OvertimeMultiplier:  1.33,
				InsuranceNote:       "labor + health",
				EmploymentStartDate: &start,
				IsAdmin:             true,
			},
			{
				UserID:             "U-dev-bonus",
				DisplayName:        "Mei Lin",
				EmployeeType:       staffDatamodel.TypeSalariedBonus,
				BaseSalary:         36000,
				OvertimeMultiplier: 1.33,
				InsuranceNote:      "labor + health",
			},
			{
				UserID:       "U-dev-hourly",
				DisplayName:  "Sam Wu",
				EmployeeType: staffDatamodel.TypeHourly,
				BaseSalary:   190,
			},
		}

		for _, record := range roster {
			var exists int64
			gormDB.Model(&staffDatamodel.Record{}).Where("user_id = ?", record.UserID).Count(&exists)
			if exists > 0 {
				fmt.Printf("staff %s already exists, skipping\n", record.DisplayName)
				continue
			}

			record.CreatedAt = time.Now()
			record.UpdatedAt = time.Now()
			if err := gormDB.Create(&record).Error; err != nil {
				log.Fatalf("failed to seed staff %s: %v", record.DisplayName, err)
			}
			fmt.Printf("seeded staff %s (%s)\n", record.DisplayName, record.EmployeeType)
		}
	},
}
