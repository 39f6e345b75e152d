package model

import (
	"gorm.io/gorm"
	"time"
)

// Song is one catalog entry playable in the guessing game. Jobs deactivate
// songs instead of deleting them so an admin can restore the row later.
type Song struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Artist         string         `gorm:"type:varchar(100);not null;index:idx_songs_artist" json:"artist"`
	Title          string         `gorm:"type:varchar(100);not null" json:"title"`
	YoutubeVideoID string         `gorm:"type:varchar(20);index:idx_songs_video" json:"youtube_video_id"`
	FilePath       string         `gorm:"type:varchar(255)" json:"file_path"`
	Active         bool           `gorm:"not null;default:true;index:idx_songs_active" json:"active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for Song
func (Song) TableName() string {
	return "songs"
}
