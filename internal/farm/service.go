// Package farm manages farms, their members and join codes.
package farm

import (
	"context"
	"errors"
	"slices"
	"strings"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/finance"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	calendar *calendar.Service
	activity *activity.Log
	log      logrus.FieldLogger
}

func NewService(db *gorm.DB, cal *calendar.Service, act *activity.Log, log logrus.FieldLogger) *Service {
	return &Service{db: db, calendar: cal, activity: act, log: log.WithField("module", "farm")}
}

// WithRole is a farm as seen by one of its members.
type WithRole struct {
	models.Farm
	UserRole models.FarmRole `json:"user_role"`
}

type CreateRequest struct {
	Name          string           `json:"name"`
	MapName       string           `json:"map_name"`
	Currency      string           `json:"currency"`
	DaysPerMonth  *int             `json:"days_per_month" validate:"omitempty,gte=1"`
	StartingFunds *decimal.Decimal `json:"starting_funds"`
}

// Create makes the farm at Year 1, Month 1, Day 1 with the creator as its
// owner. Positive starting funds are booked as opening income on that date.
func (s *Service) Create(ctx context.Context, userID uint, req CreateRequest) (*WithRole, error) {
	name, mapName := strings.TrimSpace(req.Name), strings.TrimSpace(req.MapName)
	if name == "" || mapName == "" {
		return nil, apperr.Validation("Farm name and map name are required")
	}

	farm := models.Farm{
		Name:            name,
		MapName:         mapName,
		Currency:        models.DefaultCurrency,
		CreatedByUserID: userID,
		CurrentYear:     calendar.Epoch.Year,
		CurrentMonth:    calendar.Epoch.Month,
		CurrentDay:      calendar.Epoch.Day,
		DaysPerMonth:    models.DefaultDaysPerMonth,
	}
	if c := strings.ToUpper(strings.TrimSpace(req.Currency)); c != "" {
		farm.Currency = c
	}
	if req.DaysPerMonth != nil {
		farm.DaysPerMonth = *req.DaysPerMonth
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Authenticated user not found, please log in")
			}
			return apperr.Internal(err, "Failed to create farm")
		}

		if err := tx.Create(&farm).Error; err != nil {
			return apperr.Internal(err, "Failed to create farm")
		}
		if err := tx.Create(&models.FarmMember{FarmID: farm.ID, UserID: userID, Role: models.FarmRoleOwner}).Error; err != nil {
			return apperr.Internal(err, "Failed to create farm")
		}

		if req.StartingFunds != nil && req.StartingFunds.IsPositive() {
			_, err := finance.PostAt(tx, finance.Entry{
				FarmID:      farm.ID,
				Type:        models.FinanceIncome,
				Category:    finance.CategoryStartingBalance,
				Description: "Opening balance for new farm",
				Amount:      *req.StartingFunds,
				CreatedBy:   &userID,
			}, calendar.Epoch)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"farm_id": farm.ID, "user_id": userID}).Info("farm created")
	s.activity.Record(ctx, activity.Entry{
		FarmID:      farm.ID,
		UserID:      userID,
		EntityType:  "farm",
		EntityID:    &farm.ID,
		Action:      models.ActivityCreate,
		Description: "Created farm " + farm.Name,
	})
	return &WithRole{Farm: farm, UserRole: models.FarmRoleOwner}, nil
}

// List returns the user's farms by name with the user's role on each.
func (s *Service) List(ctx context.Context, userID uint) ([]WithRole, error) {
	var members []models.FarmMember
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&members).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch farms")
	}
	out := make([]WithRole, 0, len(members))
	if len(members) == 0 {
		return out, nil
	}

	roles := make(map[uint]models.FarmRole, len(members))
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		roles[m.FarmID] = m.Role
		ids = append(ids, m.FarmID)
	}

	var farms []models.Farm
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("name, id").Find(&farms).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch farms")
	}
	for _, f := range farms {
		out = append(out, WithRole{Farm: f, UserRole: roles[f.ID]})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, farmID uint) (*models.Farm, error) {
	var farm models.Farm
	err := s.db.WithContext(ctx).First(&farm, farmID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Farm not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to fetch farm")
	}
	return &farm, nil
}

type UpdateRequest struct {
	Name         httpx.Optional[string] `json:"name"`
	MapName      httpx.Optional[string] `json:"map_name"`
	Currency     httpx.Optional[string] `json:"currency"`
	DaysPerMonth httpx.Optional[int]    `json:"days_per_month"`
}

// Update changes the farm's details. Shortening the month pulls the
// current day back onto the last day of the new month.
func (s *Service) Update(ctx context.Context, farmID uint, req UpdateRequest) (*models.Farm, error) {
	cols := map[string]any{}
	for col, opt := range map[string]httpx.Optional[string]{
		"name":     req.Name,
		"map_name": req.MapName,
		"currency": req.Currency,
	} {
		if !opt.Set {
			continue
		}
		v := httpx.TrimmedString(opt)
		if v == nil {
			return nil, apperr.Validation("%s cannot be empty", col)
		}
		if col == "currency" {
			*v = strings.ToUpper(*v)
		}
		cols[col] = *v
	}
	if req.DaysPerMonth.Set {
		if req.DaysPerMonth.Value == nil || *req.DaysPerMonth.Value < 1 {
			return nil, apperr.Validation("days_per_month must be at least 1")
		}
		cols["days_per_month"] = *req.DaysPerMonth.Value
	}
	if len(cols) == 0 {
		return nil, apperr.Validation("No updates provided")
	}

	var farm models.Farm
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&farm, farmID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Farm not found")
			}
			return apperr.Internal(err, "Failed to update farm")
		}
		if dpm, ok := cols["days_per_month"].(int); ok && farm.CurrentDay > dpm {
			cols["current_day"] = dpm
		}
		if err := tx.Model(&models.Farm{ID: farm.ID}).Updates(cols).Error; err != nil {
			return apperr.Internal(err, "Failed to update farm")
		}
		return tx.First(&farm, farmID).Error
	})
	if err != nil {
		return nil, err
	}
	return &farm, nil
}

// Delete removes the farm; everything it owns cascades with it.
func (s *Service) Delete(ctx context.Context, farmID uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Farm{}, farmID)
	if res.Error != nil {
		return apperr.Internal(res.Error, "Failed to delete farm")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Farm not found")
	}
	return nil
}

type Member struct {
	ID       uint            `json:"id"`
	UserID   uint            `json:"user_id"`
	Role     models.FarmRole `json:"role"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	JoinedAt string          `json:"joined_at"`
}

var roleRank = map[models.FarmRole]int{
	models.FarmRoleOwner:  1,
	models.FarmRoleEditor: 2,
	models.FarmRoleViewer: 3,
}

// Members lists owners first, then editors, then viewers, each by name.
func (s *Service) Members(ctx context.Context, farmID uint) ([]Member, error) {
	var rows []models.FarmMember
	if err := s.db.WithContext(ctx).Preload("User").Where("farm_id = ?", farmID).Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch members")
	}

	out := make([]Member, 0, len(rows))
	for _, r := range rows {
		m := Member{ID: r.ID, UserID: r.UserID, Role: r.Role, JoinedAt: r.JoinedAt.UTC().Format("2006-01-02T15:04:05Z")}
		if r.User != nil {
			m.Name, m.Email = r.User.Name, r.User.Email
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b Member) int {
		if d := roleRank[a.Role] - roleRank[b.Role]; d != 0 {
			return d
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// ChangeRole sets a member's role. The last owner cannot demote themself.
func (s *Service) ChangeRole(ctx context.Context, actorID, farmID, memberID uint, role models.FarmRole) error {
	if !role.Valid() {
		return apperr.Validation("Invalid role")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := findMember(tx, farmID, memberID)
		if err != nil {
			return err
		}
		if member.UserID == actorID && member.Role == models.FarmRoleOwner && role != models.FarmRoleOwner {
			if err := requireAnotherOwner(tx, farmID); err != nil {
				return err
			}
		}
		if err := tx.Model(member).Update("role", role).Error; err != nil {
			return apperr.Internal(err, "Failed to update member role")
		}
		return nil
	})
}

// RemoveMember deletes a membership. The last owner cannot remove themself.
func (s *Service) RemoveMember(ctx context.Context, actorID, farmID, memberID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := findMember(tx, farmID, memberID)
		if err != nil {
			return err
		}
		if member.UserID == actorID && member.Role == models.FarmRoleOwner {
			if err := requireAnotherOwner(tx, farmID); err != nil {
				return err
			}
		}
		if err := tx.Delete(member).Error; err != nil {
			return apperr.Internal(err, "Failed to remove member")
		}
		return nil
	})
}

func findMember(tx *gorm.DB, farmID, memberID uint) (*models.FarmMember, error) {
	var member models.FarmMember
	err := tx.Where("farm_id = ?", farmID).First(&member, memberID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Member not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to fetch member")
	}
	return &member, nil
}

func requireAnotherOwner(tx *gorm.DB, farmID uint) error {
	var owners int64
	if err := tx.Model(&models.FarmMember{}).
		Where("farm_id = ? AND role = ?", farmID, models.FarmRoleOwner).
		Count(&owners).Error; err != nil {
		return apperr.Internal(err, "Failed to count owners")
	}
	if owners <= 1 {
		return apperr.Validation("Cannot remove the last owner")
	}
	return nil
}
