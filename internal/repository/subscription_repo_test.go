package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
	"github.com/qs3c/estate_go_server/internal/testutil"
)

func TestSubscriptionRepository_UniqueUserRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)

	require.NoError(t, repo.Create(&model.Subscription{UserID: user.ID, Provider: "google_play", Status: "inactive"}))

	// user_id 唯一，重复插入必须报冲突
	err := repo.Create(&model.Subscription{UserID: user.ID, Provider: "google_play", Status: "inactive"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	sub, err := repo.GetByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", sub.Status)
}

func TestSubscriptionRepository_UpsertPlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)

	require.NoError(t, repo.UpsertPlan(&model.SubscriptionPlan{
		ID: "smart_monthly_199", Name: "Smart Monthly", PriceINR: 199, DurationDays: 30, ContactLimit: 100,
	}))
	// 重复播种覆盖参数而不是报错
	require.NoError(t, repo.UpsertPlan(&model.SubscriptionPlan{
		ID: "smart_monthly_199", Name: "Smart Monthly", PriceINR: 199, DurationDays: 30, ContactLimit: 200,
	}))

	plan, err := repo.GetPlan("smart_monthly_199")
	require.NoError(t, err)
	assert.Equal(t, 200, plan.ContactLimit)

	plans, err := repo.ListPlans()
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestSubscriptionRepository_PeriodTokenUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	testutil.TestPlan(t, db, "instant_79", 50)

	now := time.Now()
	require.NoError(t, repo.CreatePeriod(&model.SubscriptionPeriod{
		UserID: user.ID, PlanID: "instant_79", PurchaseToken: "tok-1",
		StartTime: now, EndTime: now.Add(30 * 24 * time.Hour), Active: true,
	}))

	// 同一令牌不能再绑到别的账号
	err := repo.CreatePeriod(&model.SubscriptionPeriod{
		UserID: other.ID, PlanID: "instant_79", PurchaseToken: "tok-1",
		StartTime: now, EndTime: now.Add(30 * 24 * time.Hour), Active: true,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	found, err := repo.GetPeriodByToken("tok-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)
}

func TestSubscriptionRepository_PeriodRotation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	testutil.TestPlan(t, db, "instant_79", 50)

	first := testutil.TestPeriod(t, db, user.ID, "instant_79")

	require.NoError(t, repo.DeactivatePeriods(user.ID))
	second := testutil.TestPeriod(t, db, user.ID, "instant_79")

	active, err := repo.GetActivePeriod(user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	var old model.SubscriptionPeriod
	require.NoError(t, db.First(&old, first.ID).Error)
	assert.False(t, old.Active)
}

func TestSubscriptionRepository_ExpirePeriodsBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	testutil.TestPlan(t, db, "instant_79", 50)

	now := time.Now()
	expired := testutil.TestPeriod(t, db, user.ID, "instant_79",
		testutil.WithPeriodWindow(now.Add(-60*24*time.Hour), now.Add(-30*24*time.Hour)))
	current := testutil.TestPeriod(t, db, user.ID, "instant_79",
		testutil.WithPeriodWindow(now.Add(-time.Hour), now.Add(29*24*time.Hour)))

	n, err := repo.ExpirePeriodsBefore(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var expiredRow model.SubscriptionPeriod
	require.NoError(t, db.First(&expiredRow, expired.ID).Error)
	assert.False(t, expiredRow.Active)

	var currentRow model.SubscriptionPeriod
	require.NoError(t, db.First(&currentRow, current.ID).Error)
	assert.True(t, currentRow.Active)
}
