// Package repositorytest provides in-memory store fakes for service and job
// tests. Fakes keep rows in slices and maps guarded by a mutex and support
// per-call error injection where tests exercise failure paths.
package repositorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/services/history"
)

var (
	_ repository.JobConfigStore      = (*JobConfigs)(nil)
	_ repository.ExecutionStore      = (*Executions)(nil)
	_ repository.AffectedSongStore   = (*AffectedSongs)(nil)
	_ repository.SongStore           = (*Songs)(nil)
	_ repository.SongHistoryStore    = (*SongHistories)(nil)
	_ repository.ChallengeStore      = (*Challenges)(nil)
	_ repository.MemberStore         = (*Members)(nil)
	_ repository.RankingHistoryStore = (*Rankings)(nil)
)

// JobConfigs is an in-memory JobConfigStore
type JobConfigs struct {
	mu   sync.Mutex
	Rows map[string]*model.JobConfig
}

func NewJobConfigs(configs ...model.JobConfig) *JobConfigs {
	f := &JobConfigs{Rows: make(map[string]*model.JobConfig)}
	for i := range configs {
		c := configs[i]
		f.Rows[c.JobID] = &c
	}
	return f
}

func (f *JobConfigs) FindAll(ctx context.Context) ([]model.JobConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.JobConfig, 0, len(f.Rows))
	for _, c := range f.Rows {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobID < out[j].JobID })
	return out, nil
}

func (f *JobConfigs) FindByID(ctx context.Context, jobID string) (*model.JobConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.Rows[jobID]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *JobConfigs) FindEnabledImplemented(ctx context.Context) ([]model.JobConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.JobConfig
	for _, c := range f.Rows {
		if c.Enabled && c.Implemented {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobID < out[j].JobID })
	return out, nil
}

func (f *JobConfigs) Save(ctx context.Context, config *model.JobConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *config
	f.Rows[config.JobID] = &copied
	return nil
}

func (f *JobConfigs) RecordLastRun(ctx context.Context, jobID string, result model.ExecutionResult, message string, affected int, durationMs int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.Rows[jobID]; ok {
		c.RecordExecution(result, message, affected, durationMs)
	}
	return nil
}

// Executions is an in-memory ExecutionStore
type Executions struct {
	mu     sync.Mutex
	nextID uint
	Rows   []*model.JobExecution

	CreateErr error
}

func NewExecutions() *Executions {
	return &Executions{nextID: 1}
}

func (f *Executions) Create(ctx context.Context, exec *model.JobExecution) error {
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	exec.ID = f.nextID
	f.nextID++
	copied := *exec
	f.Rows = append(f.Rows, &copied)
	return nil
}

func (f *Executions) Complete(ctx context.Context, exec *model.JobExecution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.Rows {
		if row.ID == exec.ID {
			row.Result = exec.Result
			row.Message = exec.Message
			row.AffectedCount = exec.AffectedCount
			row.ExecutionTimeMs = exec.ExecutionTimeMs
		}
	}
	return nil
}

func (f *Executions) RecentByJob(ctx context.Context, jobID string, limit int) ([]model.JobExecution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.JobExecution
	for i := len(f.Rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.Rows[i].JobID == jobID {
			out = append(out, *f.Rows[i])
		}
	}
	return out, nil
}

func (f *Executions) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*model.JobExecution
	var deleted int64
	for _, row := range f.Rows {
		if row.ExecutedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	f.Rows = kept
	return deleted, nil
}

func (f *Executions) MarkStaleRunning(ctx context.Context, olderThan time.Time, message string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var swept int64
	for _, row := range f.Rows {
		if row.Result == model.ResultRunning && row.ExecutedAt.Before(olderThan) {
			row.Result = model.ResultFail
			row.Message = message
			swept++
		}
	}
	return swept, nil
}

// ByID returns the stored execution row, or nil.
func (f *Executions) ByID(id uint) *model.JobExecution {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.Rows {
		if row.ID == id {
			copied := *row
			return &copied
		}
	}
	return nil
}

// AffectedSongs is an in-memory AffectedSongStore
type AffectedSongs struct {
	mu     sync.Mutex
	nextID uint
	Rows   []*model.AffectedSong
}

func NewAffectedSongs() *AffectedSongs {
	return &AffectedSongs{nextID: 1}
}

func (f *AffectedSongs) Create(ctx context.Context, affected *model.AffectedSong) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	affected.ID = f.nextID
	f.nextID++
	copied := *affected
	f.Rows = append(f.Rows, &copied)
	return nil
}

func (f *AffectedSongs) FindByID(ctx context.Context, id uint) (*model.AffectedSong, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.Rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *AffectedSongs) FindByExecution(ctx context.Context, executionID uint) ([]model.AffectedSong, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AffectedSong
	for _, row := range f.Rows {
		if row.ExecutionID == executionID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *AffectedSongs) FindUnrestoredByJob(ctx context.Context, jobID string) ([]model.AffectedSong, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AffectedSong
	for _, row := range f.Rows {
		if row.JobID == jobID && !row.Restored {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *AffectedSongs) Save(ctx context.Context, affected *model.AffectedSong) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, row := range f.Rows {
		if row.ID == affected.ID {
			copied := *affected
			f.Rows[i] = &copied
			return nil
		}
	}
	copied := *affected
	f.Rows = append(f.Rows, &copied)
	return nil
}

func (f *AffectedSongs) Search(ctx context.Context, filter repository.AffectedSongFilter) ([]model.AffectedSong, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AffectedSong
	for _, row := range f.Rows {
		if filter.JobID != "" && row.JobID != filter.JobID {
			continue
		}
		if filter.Restored != nil && row.Restored != *filter.Restored {
			continue
		}
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

// Songs is an in-memory SongStore
type Songs struct {
	mu   sync.Mutex
	Rows map[uint]*model.Song
}

func NewSongs(songs ...model.Song) *Songs {
	f := &Songs{Rows: make(map[uint]*model.Song)}
	for i := range songs {
		s := songs[i]
		f.Rows[s.ID] = &s
	}
	return f
}

func (f *Songs) FindByID(ctx context.Context, id uint) (*model.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Rows[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *Songs) all(match func(*model.Song) bool) []model.Song {
	var out []model.Song
	for _, s := range f.Rows {
		if match(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *Songs) FindActiveWithVideo(ctx context.Context) ([]model.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all(func(s *model.Song) bool { return s.Active && s.YoutubeVideoID != "" }), nil
}

func (f *Songs) FindActiveWithFile(ctx context.Context) ([]model.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all(func(s *model.Song) bool { return s.Active && s.FilePath != "" }), nil
}

func (f *Songs) FindDuplicateVideoIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, s := range f.Rows {
		if s.Active && s.YoutubeVideoID != "" {
			counts[s.YoutubeVideoID]++
		}
	}
	var out []string
	for id, n := range counts {
		if n > 1 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *Songs) FindActiveByVideoID(ctx context.Context, videoID string) ([]model.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all(func(s *model.Song) bool { return s.Active && s.YoutubeVideoID == videoID }), nil
}

func (f *Songs) CountActiveByArtist(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, s := range f.Rows {
		if s.Active {
			counts[s.Artist]++
		}
	}
	return counts, nil
}

func (f *Songs) SetActive(ctx context.Context, songID uint, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.Rows[songID]; ok {
		s.Active = active
	}
	return nil
}

// SongHistories is an in-memory SongHistoryStore whose ActiveCountAt uses
// the replay reference implementation.
type SongHistories struct {
	mu     sync.Mutex
	nextID uint
	Rows   []model.SongHistory
}

func NewSongHistories() *SongHistories {
	return &SongHistories{nextID: 1}
}

func (f *SongHistories) Append(ctx context.Context, entry *model.SongHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = f.nextID
	f.nextID++
	if entry.ActionAt.IsZero() {
		entry.ActionAt = time.Now()
	}
	f.Rows = append(f.Rows, *entry)
	return nil
}

func (f *SongHistories) FindBySong(ctx context.Context, songID uint) ([]model.SongHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SongHistory
	for _, row := range f.Rows {
		if row.SongID == songID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *SongHistories) FindByArtist(ctx context.Context, artist string) ([]model.SongHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SongHistory
	for _, row := range f.Rows {
		if row.Artist == artist {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *SongHistories) ActiveCountAt(ctx context.Context, artist string, at time.Time) (int, error) {
	entries, _ := f.FindByArtist(ctx, artist)
	return history.CountActive(entries, at), nil
}

func (f *SongHistories) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []model.SongHistory
	var deleted int64
	for _, row := range f.Rows {
		if row.ActionAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	f.Rows = kept
	return deleted, nil
}

// Challenges is an in-memory ChallengeStore with save-error injection keyed
// by record id.
type Challenges struct {
	mu     sync.Mutex
	nextID uint
	Rows   []*model.ChallengeRecord

	SaveErrs map[uint]error
}

func NewChallenges(records ...model.ChallengeRecord) *Challenges {
	f := &Challenges{nextID: 1, SaveErrs: make(map[uint]error)}
	for i := range records {
		r := records[i]
		if r.ID == 0 {
			r.ID = f.nextID
		}
		if r.ID >= f.nextID {
			f.nextID = r.ID + 1
		}
		f.Rows = append(f.Rows, &r)
	}
	return f
}

func (f *Challenges) FindAll(ctx context.Context) ([]model.ChallengeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ChallengeRecord, 0, len(f.Rows))
	for _, r := range f.Rows {
		out = append(out, *r)
	}
	return out, nil
}

func (f *Challenges) FindPerfects(ctx context.Context) ([]model.ChallengeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ChallengeRecord
	for _, r := range f.Rows {
		if r.PerfectClear || r.CurrentPerfect {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *Challenges) FindByKey(ctx context.Context, memberID uint, artist string, difficulty model.ChallengeDifficulty) (*model.ChallengeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Rows {
		if r.MemberID == memberID && strings.EqualFold(r.Artist, artist) && r.Difficulty == difficulty {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *Challenges) Save(ctx context.Context, record *model.ChallengeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.SaveErrs[record.ID]; err != nil {
		return err
	}
	if record.ID == 0 {
		record.ID = f.nextID
		f.nextID++
	}
	for i, r := range f.Rows {
		if r.ID == record.ID {
			copied := *record
			f.Rows[i] = &copied
			return nil
		}
	}
	copied := *record
	f.Rows = append(f.Rows, &copied)
	return nil
}

// ByID returns the stored challenge record, or nil.
func (f *Challenges) ByID(id uint) *model.ChallengeRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Rows {
		if r.ID == id {
			copied := *r
			return &copied
		}
	}
	return nil
}

// Members is an in-memory MemberStore
type Members struct {
	mu   sync.Mutex
	Rows map[uint]*model.Member

	SaveErrs map[uint]error
}

func NewMembers(members ...model.Member) *Members {
	f := &Members{Rows: make(map[uint]*model.Member), SaveErrs: make(map[uint]error)}
	for i := range members {
		m := members[i]
		f.Rows[m.ID] = &m
	}
	return f
}

func (f *Members) FindIdleSince(ctx context.Context, threshold time.Time) ([]model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Member
	for _, m := range f.Rows {
		if m.LastMultiPlayedAt != nil && m.LastMultiPlayedAt.Before(threshold) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Members) Save(ctx context.Context, member *model.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.SaveErrs[member.ID]; err != nil {
		return err
	}
	copied := *member
	f.Rows[member.ID] = &copied
	return nil
}

func (f *Members) top(limit int, less func(a, b *model.Member) bool, include func(*model.Member) bool) []model.Member {
	var out []model.Member
	for _, m := range f.Rows {
		if include(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *Members) TopByWeeklyScore(ctx context.Context, limit int) ([]model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.top(limit,
		func(a, b *model.Member) bool { return a.WeeklyScore > b.WeeklyScore },
		func(m *model.Member) bool { return m.WeeklyScore > 0 }), nil
}

func (f *Members) TopByTier(ctx context.Context, limit int) ([]model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.top(limit,
		func(a, b *model.Member) bool {
			if a.Tier.Order() != b.Tier.Order() {
				return a.Tier.Order() > b.Tier.Order()
			}
			return a.TierPoints > b.TierPoints
		},
		func(m *model.Member) bool { return m.MultiGames > 0 }), nil
}

func (f *Members) TopByWins(ctx context.Context, limit int) ([]model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.top(limit,
		func(a, b *model.Member) bool { return a.MultiWins > b.MultiWins },
		func(m *model.Member) bool { return m.MultiWins > 0 }), nil
}

// Rankings is an in-memory RankingHistoryStore
type Rankings struct {
	mu   sync.Mutex
	Rows []model.RankingHistory
}

func NewRankings() *Rankings {
	return &Rankings{}
}

func (f *Rankings) SnapshotExists(ctx context.Context, period model.RankingPeriod, rankingType model.RankingType, start, end time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.Rows {
		if row.PeriodType == period && row.RankingType == rankingType &&
			row.PeriodStart.Equal(start) && row.PeriodEnd.Equal(end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *Rankings) CreateBatch(ctx context.Context, entries []model.RankingHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Rows = append(f.Rows, entries...)
	return nil
}
