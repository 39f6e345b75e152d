package database

import (
	"fmt"
	"log"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedJobConfigs(); err != nil {
		return fmt.Errorf("failed to seed job configs: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// jobCatalog is the authoritative set of known jobs. Seeding inserts rows
// that do not exist yet and leaves existing rows alone, so admin edits to
// schedules and enabled flags survive redeploys.
var jobCatalog = []model.JobConfig{
	{
		JobID:          "youtube_check",
		Name:           "YouTube availability check",
		Description:    "Deactivates songs whose video is removed, private or not embeddable",
		CronExpression: "0 0 3 * * *",
		ScheduleText:   "daily 03:00",
		TargetEntity:   "songs",
		Priority:       model.JobPriorityHigh,
		Enabled:        true,
		Implemented:    true,
	},
	{
		JobID:          "duplicate_check",
		Name:           "Duplicate video cleanup",
		Description:    "Deactivates songs sharing a video id, keeping the oldest",
		CronExpression: "0 30 3 * * *",
		ScheduleText:   "daily 03:30",
		TargetEntity:   "songs",
		Priority:       model.JobPriorityHigh,
		Enabled:        true,
		Implemented:    true,
	},
	{
		JobID:          "file_check",
		Name:           "Media file integrity check",
		Description:    "Deactivates songs whose media file is missing from storage",
		CronExpression: "0 0 4 * * *",
		ScheduleText:   "daily 04:00",
		TargetEntity:   "songs",
		Priority:       model.JobPriorityMedium,
		Enabled:        true,
		Implemented:    true,
	},
	{
		JobID:          "perfect_check",
		Name:           "Perfect clear check",
		Description:    "Re-validates perfect-clear flags against the live catalog",
		CronExpression: "0 0 5 * * *",
		ScheduleText:   "daily 05:00",
		TargetEntity:   "challenge_records",
		Priority:       model.JobPriorityMedium,
		Enabled:        true,
		Implemented:    true,
	},
	{
		JobID:          "perfect_refresh",
		Name:           "Perfect clear full refresh",
		Description:    "Full weekly pass over all challenge records",
		CronExpression: "0 30 5 * * 1",
		ScheduleText:   "Monday 05:30",
		TargetEntity:   "challenge_records",
		Priority:       model.JobPriorityMedium,
		Enabled:        true,
		Implemented:    true,
	},
	{
		JobID:          "lp_decay",
		Name:           "Tier point decay",
		Description:    "Docks tier points from members idle for over 30 days",
		CronExpression: "0 0 6 * * 1",
		ScheduleText:   "Monday 06:00",
		TargetEntity:   "members",
		Priority:       model.JobPriorityMedium,
		Enabled:        true,
		Implemented:    true,
	},
	{
		JobID:          "ranking_snapshot",
		Name:           "Weekly ranking snapshot",
		Description:    "Archives the top 100 of each leaderboard before the weekly reset",
		CronExpression: "0 50 23 * * 0",
		ScheduleText:   "Sunday 23:50",
		TargetEntity:   "ranking_histories",
		Priority:       model.JobPriorityHigh,
		Enabled:        true,
		Implemented:    true,
	},
	{
		JobID:          "execution_history_cleanup",
		Name:           "Execution history cleanup",
		Description:    "Prunes old job executions and song history events",
		CronExpression: "0 0 2 * * *",
		ScheduleText:   "daily 02:00",
		TargetEntity:   "job_executions",
		Priority:       model.JobPriorityLow,
		Enabled:        true,
		Implemented:    true,
	},
}

// SeedJobConfigs inserts missing job catalog rows
func (s *Seeder) SeedJobConfigs() error {
	seeded := 0
	for _, job := range jobCatalog {
		var count int64
		if err := s.db.Model(&model.JobConfig{}).
			Where("job_id = ?", job.JobID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		if err := s.db.Create(&job).Error; err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		log.Printf("Seeded %d job configs", seeded)
	}
	return nil
}
