package model

import (
	"time"
)

// HistoryAction is one catalog event for a song
type HistoryAction string

const (
	HistoryAdded    HistoryAction = "ADDED"
	HistoryDeleted  HistoryAction = "DELETED"
	HistoryRestored HistoryAction = "RESTORED"
)

// SongHistory is the append-only add/delete/restore ledger for the song
// catalog. For one song id, ADDED precedes everything else and DELETED /
// RESTORED alternate; the point-in-time active count is derived by replaying
// entries up to a timestamp rather than from a running counter.
type SongHistory struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	SongID   uint          `gorm:"not null;index:idx_song_histories_song" json:"song_id"`
	Artist   string        `gorm:"type:varchar(100);not null;index:idx_song_histories_artist,priority:1" json:"artist"`
	Title    string        `gorm:"type:varchar(100);not null" json:"title"`
	Action   HistoryAction `gorm:"type:varchar(20);not null" json:"action"`
	ActionAt time.Time     `gorm:"not null;index:idx_song_histories_artist,priority:2" json:"action_at"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for SongHistory
func (SongHistory) TableName() string {
	return "song_histories"
}
