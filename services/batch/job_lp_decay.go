package batch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/services/rating"
)

const (
	// lpDecayIdleDays is how long a member must be idle before decay applies.
	lpDecayIdleDays = 30
	// lpDecayAmount is the weekly point loss for idle members.
	lpDecayAmount = 7
)

// LpDecayJob docks tier points from members who have not played a
// multiplayer game in over 30 days. Members sitting at Bronze 0 are skipped
// entirely; decay never drags anyone below the floor.
type LpDecayJob struct {
	members repository.MemberStore
}

// NewLpDecayJob creates the weekly point-decay job
func NewLpDecayJob(members repository.MemberStore) *LpDecayJob {
	return &LpDecayJob{members: members}
}

func (j *LpDecayJob) ID() string { return "lp_decay" }

func (j *LpDecayJob) Run(ctx context.Context, exec *model.JobExecution) (Result, error) {
	threshold := time.Now().AddDate(0, 0, -lpDecayIdleDays)
	idle, err := j.members.FindIdleSince(ctx, threshold)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load idle members: %w", err)
	}

	decayed := 0
	demoted := 0
	for i := range idle {
		member := &idle[i]
		if member.Tier == model.TierBronze && member.TierPoints == 0 {
			continue
		}

		newTier, newPoints, transition := rating.ApplyDecay(member.Tier, member.TierPoints, lpDecayAmount)
		if newTier == member.Tier && newPoints == member.TierPoints {
			continue
		}

		member.Tier = newTier
		member.TierPoints = newPoints
		if transition == rating.TransitionDemoted {
			now := time.Now()
			member.TierUpdatedAt = &now
			demoted++
			log.Printf("[BATCH] Decay demoted member %d to %s %d", member.ID, newTier, newPoints)
		}

		if err := j.members.Save(ctx, member); err != nil {
			log.Printf("[BATCH] Failed to save decayed member %d: %v", member.ID, err)
			continue
		}
		decayed++
	}

	return Result{
		Affected: decayed,
		Message:  fmt.Sprintf("decayed %d idle members (%d demoted)", decayed, demoted),
	}, nil
}
