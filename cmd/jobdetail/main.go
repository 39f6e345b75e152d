package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	jobID := "youtube_check"
	if len(os.Args) > 1 {
		jobID = os.Args[1]
	}

	db, err := connectDatabase()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var config model.JobConfig
	if err := db.First(&config, "job_id = ?", jobID).Error; err != nil {
		log.Fatalf("Failed to find job %q: %v", jobID, err)
	}

	fmt.Println("══════════════════════════════════════════════════════════════")
	fmt.Printf("  JOB %s - DETAIL REPORT\n", config.JobID)
	fmt.Println("══════════════════════════════════════════════════════════════")

	fmt.Printf("\n📋 CONFIGURATION:\n")
	fmt.Printf("   Name:        %s\n", config.Name)
	fmt.Printf("   Description: %s\n", config.Description)
	fmt.Printf("   Cron:        %s (%s)\n", config.CronExpression, config.ScheduleText)
	fmt.Printf("   Target:      %s\n", config.TargetEntity)
	fmt.Printf("   Priority:    %s\n", config.Priority)
	fmt.Printf("   Enabled:     %t\n", config.Enabled)
	fmt.Printf("   Implemented: %t\n", config.Implemented)

	fmt.Printf("\n⏱️  LAST RUN:\n")
	if config.LastExecutedAt == nil {
		fmt.Println("   Never executed")
	} else {
		fmt.Printf("   Executed At: %s\n", config.LastExecutedAt.Format("2006-01-02 15:04:05.000"))
		fmt.Printf("   Result:      %s\n", config.LastResult)
		fmt.Printf("   Message:     %s\n", config.LastResultMessage)
		fmt.Printf("   Affected:    %d\n", config.LastAffectedCount)
		fmt.Printf("   Duration:    %dms\n", config.LastExecutionTimeMs)
	}

	var executions []model.JobExecution
	err = db.Where("job_id = ?", jobID).
		Order("executed_at DESC").
		Limit(10).
		Find(&executions).Error
	if err != nil {
		log.Fatalf("Failed to load executions: %v", err)
	}

	fmt.Printf("\n📦 RECENT EXECUTIONS (%d shown):\n", len(executions))
	for _, exec := range executions {
		statusIcon := "⏳"
		switch exec.Result {
		case model.ResultSuccess:
			statusIcon = "✅"
		case model.ResultFail:
			statusIcon = "❌"
		}

		fmt.Printf("   %s %s  %-9s %-9s affected=%-4d %dms  %s\n",
			statusIcon,
			exec.ExecutedAt.Format("2006-01-02 15:04:05"),
			exec.Result,
			exec.Trigger,
			exec.AffectedCount,
			exec.ExecutionTimeMs,
			truncate(exec.Message, 40),
		)

		var affected []model.AffectedSong
		if err := db.Where("execution_id = ?", exec.ID).Find(&affected).Error; err != nil {
			continue
		}
		for _, entry := range affected {
			restoredMark := " "
			if entry.Restored {
				restoredMark = "↩"
			}
			fmt.Printf("      %s song=%-6d %-18s %s\n",
				restoredMark, entry.SongID, entry.Reason, truncate(entry.ReasonDetail, 40))
		}
	}

	fmt.Println("\n══════════════════════════════════════════════════════════════")
}

func connectDatabase() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER_NAME", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "tunequiz"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
