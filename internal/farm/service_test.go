package farm

import (
	"context"
	"testing"
	"time"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/logging"
	"farmsim-backend/internal/models"
	"farmsim-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(db *gorm.DB) *Service {
	return NewService(db, calendar.NewService(db), activity.NewLog(db, logging.Discard()), logging.Discard())
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ann")
	svc := newService(db)

	_, err := svc.Create(ctx, user.ID, CreateRequest{Name: "  ", MapName: "Elmcreek"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	funds := decimal.NewFromInt(250000)
	created, err := svc.Create(ctx, user.ID, CreateRequest{Name: "Oak Farm", MapName: "Elmcreek", Currency: "eur", StartingFunds: &funds})
	require.NoError(t, err)
	assert.Equal(t, models.FarmRoleOwner, created.UserRole)
	assert.Equal(t, "EUR", created.Currency)
	assert.Equal(t, models.DefaultDaysPerMonth, created.DaysPerMonth)
	assert.Equal(t, calendar.Epoch, calendar.Of(&created.Farm))

	var entry models.Finance
	require.NoError(t, db.Where("farm_id = ?", created.ID).First(&entry).Error)
	assert.Equal(t, "Starting Balance", entry.Category)
	assert.True(t, funds.Equal(entry.Amount))
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{entry.GameYear, entry.GameMonth, entry.GameDay})

	_, err = svc.Create(ctx, user.ID, CreateRequest{Name: "Ash Farm", MapName: "Haut-Beyleron"})
	require.NoError(t, err)
	var entries int64
	db.Model(&models.Finance{}).Count(&entries)
	assert.Equal(t, int64(1), entries)

	other := testutil.CreateUser(t, db, "bob")
	theirs := testutil.CreateFarm(t, db, other)
	testutil.AddMember(t, db, theirs, user, models.FarmRoleViewer)

	farms, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, farms, 3)
	assert.Equal(t, "Ash Farm", farms[0].Name)
	assert.Equal(t, "Elm Farm", farms[1].Name)
	assert.Equal(t, models.FarmRoleViewer, farms[1].UserRole)
	assert.Equal(t, "Oak Farm", farms[2].Name)

	farms, err = svc.List(ctx, testutil.CreateUser(t, db, "cat").ID)
	require.NoError(t, err)
	assert.Empty(t, farms)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)
	require.NoError(t, db.Model(&farm).Update("current_day", 25).Error)
	svc := newService(db)

	_, err := svc.Update(ctx, farm.ID, UpdateRequest{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Update(ctx, farm.ID, UpdateRequest{Name: httpx.Some(" ")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Update(ctx, farm.ID, UpdateRequest{DaysPerMonth: httpx.Some(0)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	updated, err := svc.Update(ctx, farm.ID, UpdateRequest{Name: httpx.Some("Elm Farm II"), DaysPerMonth: httpx.Some(10)})
	require.NoError(t, err)
	assert.Equal(t, "Elm Farm II", updated.Name)
	assert.Equal(t, "Suffolk", updated.MapName)
	assert.Equal(t, 10, updated.DaysPerMonth)
	assert.Equal(t, 10, updated.CurrentDay)

	_, err = svc.Update(ctx, farm.ID+1, UpdateRequest{Currency: httpx.Some("usd")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)
	testutil.CreateField(t, db, farm, 1, "wheat")
	svc := newService(db)

	require.NoError(t, svc.Delete(ctx, farm.ID))
	assert.True(t, apperr.Is(svc.Delete(ctx, farm.ID), apperr.KindNotFound))

	var fields, members int64
	db.Model(&models.Field{}).Count(&fields)
	db.Model(&models.FarmMember{}).Count(&members)
	assert.Zero(t, fields)
	assert.Zero(t, members)
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "zed")
	farm := testutil.CreateFarm(t, db, owner)
	viewer := testutil.CreateUser(t, db, "amy")
	editor := testutil.CreateUser(t, db, "bea")
	testutil.AddMember(t, db, farm, viewer, models.FarmRoleViewer)
	testutil.AddMember(t, db, farm, editor, models.FarmRoleEditor)
	svc := newService(db)

	members, err := svc.Members(ctx, farm.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, []string{"zed", "bea", "amy"}, []string{members[0].Name, members[1].Name, members[2].Name})
	assert.Equal(t, "bea@farm.local", members[1].Email)
	ownerMember, viewerMember := members[0].ID, members[2].ID

	t.Run("last owner cannot step down", func(t *testing.T) {
		err := svc.ChangeRole(ctx, owner.ID, farm.ID, ownerMember, models.FarmRoleEditor)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		err = svc.RemoveMember(ctx, owner.ID, farm.ID, ownerMember)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("invalid role", func(t *testing.T) {
		err := svc.ChangeRole(ctx, owner.ID, farm.ID, viewerMember, "admin")
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("member of another farm", func(t *testing.T) {
		err := svc.RemoveMember(ctx, owner.ID, farm.ID+1, viewerMember)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("promote then step down", func(t *testing.T) {
		require.NoError(t, svc.ChangeRole(ctx, owner.ID, farm.ID, viewerMember, models.FarmRoleOwner))
		require.NoError(t, svc.RemoveMember(ctx, owner.ID, farm.ID, ownerMember))

		members, err := svc.Members(ctx, farm.ID)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, "amy", members[0].Name)
		assert.Equal(t, models.FarmRoleOwner, members[0].Role)
	})
}

func TestJoinCodes(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)
	joiner := testutil.CreateUser(t, db, "joiner")
	svc := newService(db)

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return clock }
	t.Cleanup(func() { now = time.Now })

	old, err := svc.CreateJoinCode(ctx, farm.ID)
	require.NoError(t, err)
	assert.Len(t, old.Code, joinCodeLength)
	assert.Equal(t, clock.Add(7*24*time.Hour), old.ExpiresAt)

	clock = clock.Add(8 * 24 * time.Hour)
	fresh, err := svc.CreateJoinCode(ctx, farm.ID)
	require.NoError(t, err)
	assert.NotEqual(t, old.Code, fresh.Code)

	codes, err := svc.JoinCodes(ctx, farm.ID)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, fresh.Code, codes[0].Code)

	_, err = svc.Join(ctx, joiner.ID, nil, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Join(ctx, joiner.ID, nil, old.Code)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	otherFarm := farm.ID + 100
	_, err = svc.Join(ctx, joiner.ID, &otherFarm, fresh.Code)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	joined, err := svc.Join(ctx, joiner.ID, &farm.ID, fresh.Code)
	require.NoError(t, err)
	assert.Equal(t, farm.ID, joined.ID)

	var member models.FarmMember
	require.NoError(t, db.Where("farm_id = ? AND user_id = ?", farm.ID, joiner.ID).First(&member).Error)
	assert.Equal(t, models.FarmRoleViewer, member.Role)

	_, err = svc.Join(ctx, joiner.ID, nil, fresh.Code)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestMoveDate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)
	svc := newService(db)

	_, err := svc.MoveDate(ctx, owner.ID, farm.ID, MoveRetreat, calendar.GameDate{})
	assert.True(t, apperr.Is(err, apperr.KindOutOfRange))

	moved, err := svc.MoveDate(ctx, owner.ID, farm.ID, MoveAdvance, calendar.GameDate{})
	require.NoError(t, err)
	assert.Equal(t, 2, moved.CurrentDay)

	moved, err = svc.MoveDate(ctx, owner.ID, farm.ID, MoveJump, calendar.GameDate{Year: 3, Month: 12, Day: 28})
	require.NoError(t, err)
	assert.Equal(t, calendar.GameDate{Year: 3, Month: 12, Day: 28}, calendar.Of(moved))

	_, err = svc.MoveDate(ctx, owner.ID, farm.ID, MoveJump, calendar.GameDate{Year: 3, Month: 13, Day: 1})
	assert.Error(t, err)

	var logged []models.ActivityLog
	require.NoError(t, db.Where("farm_id = ?", farm.ID).Order("id").Find(&logged).Error)
	require.Len(t, logged, 2)
	assert.Equal(t, "Date set to Year 3, Month 12, Day 28", logged[1].Description)
}
