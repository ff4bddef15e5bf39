package farm

import (
	"context"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/models"
)

// DateMove names a change to the farm clock.
type DateMove string

const (
	MoveAdvance DateMove = "advance"
	MoveRetreat DateMove = "retreat"
	MoveJump    DateMove = "jump"
)

// MoveDate applies the move through the calendar and logs it. to is only
// read for MoveJump.
func (s *Service) MoveDate(ctx context.Context, userID, farmID uint, move DateMove, to calendar.GameDate) (*models.Farm, error) {
	var (
		farm *models.Farm
		err  error
	)
	switch move {
	case MoveAdvance:
		farm, err = s.calendar.Advance(ctx, farmID)
	case MoveRetreat:
		farm, err = s.calendar.Retreat(ctx, farmID)
	default:
		farm, err = s.calendar.JumpTo(ctx, farmID, to)
	}
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		FarmID:      farmID,
		UserID:      userID,
		EntityType:  "farm",
		EntityID:    &farm.ID,
		Action:      models.ActivityUpdate,
		Description: "Date set to " + calendar.Of(farm).String(),
	})
	return farm, nil
}
