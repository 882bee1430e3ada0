package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/config"
	"github.com/qs3c/estate_go_server/internal/model"
	"github.com/qs3c/estate_go_server/internal/pkg/playstore"
	"github.com/qs3c/estate_go_server/internal/repository"
	"github.com/qs3c/estate_go_server/internal/testutil"
)

func newSubscriptionService(db *gorm.DB, verifier playstore.Verifier) *SubscriptionService {
	return NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUsageRepository(db),
		verifier,
		&config.Config{},
	)
}

func TestSubscriptionService_GetOrCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db, &stubVerifier{err: playstore.ErrNotConfigured})
	user := testutil.TestUser(t, db)

	sub, err := svc.GetOrCreate(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", sub.Status)
	assert.Equal(t, "google_play", sub.Provider)

	// 再次调用返回同一行
	again, err := svc.GetOrCreate(user.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&model.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubscriptionService_IsActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db, &stubVerifier{err: playstore.ErrNotConfigured})

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	assert.False(t, svc.IsActive(nil))
	assert.False(t, svc.IsActive(&model.Subscription{Status: "inactive"}))
	assert.False(t, svc.IsActive(&model.Subscription{Status: "active", ExpiresAt: &past}))
	assert.True(t, svc.IsActive(&model.Subscription{Status: "active", ExpiresAt: &future}))
	assert.True(t, svc.IsActive(&model.Subscription{Status: "active"}))
}

func TestSubscriptionService_Activate_DevFallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	// 未配置 Play 凭证：按套餐时长激活
	svc := newSubscriptionService(db, &stubVerifier{err: playstore.ErrNotConfigured})
	user := testutil.TestUser(t, db)
	testutil.TestPlan(t, db, "smart_monthly_199", 200)

	sub, period, err := svc.Activate(context.Background(), user.ID, "smart_monthly_199", "tok-dev-1")
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)
	require.NotNil(t, sub.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *sub.ExpiresAt, time.Minute)
	assert.Equal(t, "smart_monthly_199", period.PlanID)
	assert.True(t, period.Active)
}

func TestSubscriptionService_Activate_VerifiedWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	expiry := time.Now().Add(45 * 24 * time.Hour)
	svc := newSubscriptionService(db, &stubVerifier{
		result: &playstore.Result{ExpiryTimeMillis: expiry.UnixMilli(), OrderID: "GPA.1234"},
	})
	user := testutil.TestUser(t, db)
	testutil.TestPlan(t, db, "business_quarterly_499", 1000)

	sub, period, err := svc.Activate(context.Background(), user.ID, "business_quarterly_499", "tok-real-1")
	require.NoError(t, err)
	assert.WithinDuration(t, expiry, *sub.ExpiresAt, time.Second)
	assert.WithinDuration(t, expiry, period.EndTime, time.Second)
}

func TestSubscriptionService_Activate_UnknownPlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db, &stubVerifier{err: playstore.ErrNotConfigured})
	user := testutil.TestUser(t, db)

	_, _, err := svc.Activate(context.Background(), user.ID, "no_such_plan", "tok-x")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	// 失败路径不触碰任何台账
	var count int64
	require.NoError(t, db.Model(&model.SubscriptionPeriod{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubscriptionService_Activate_VerificationFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db, &stubVerifier{err: errors.New("googleapi: 400")})
	user := testutil.TestUser(t, db)
	testutil.TestPlan(t, db, "instant_79", 50)

	_, _, err := svc.Activate(context.Background(), user.ID, "instant_79", "tok-bad")
	assert.ErrorIs(t, err, ErrVerificationFailed)

	var count int64
	require.NoError(t, db.Model(&model.SubscriptionPeriod{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubscriptionService_Activate_ExpiredPurchaseRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db, &stubVerifier{
		result: &playstore.Result{ExpiryTimeMillis: time.Now().Add(-time.Hour).UnixMilli()},
	})
	user := testutil.TestUser(t, db)
	testutil.TestPlan(t, db, "instant_79", 50)

	_, _, err := svc.Activate(context.Background(), user.ID, "instant_79", "tok-expired")
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestSubscriptionService_Activate_TokenReuse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db, &stubVerifier{err: playstore.ErrNotConfigured})
	alice := testutil.TestUser(t, db)
	bob := testutil.TestUser(t, db)
	testutil.TestPlan(t, db, "instant_79", 50)

	_, period, err := svc.Activate(context.Background(), alice.ID, "instant_79", "tok-shared")
	require.NoError(t, err)

	// 别的账号复用同一令牌被拒
	_, _, err = svc.Activate(context.Background(), bob.ID, "instant_79", "tok-shared")
	assert.ErrorIs(t, err, ErrDuplicateToken)

	// 同一账号重放同一令牌是幂等的
	_, replay, err := svc.Activate(context.Background(), alice.ID, "instant_79", "tok-shared")
	require.NoError(t, err)
	assert.Equal(t, period.ID, replay.ID)
}

func TestSubscriptionService_Activate_RenewalRotatesPeriod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db, &stubVerifier{err: playstore.ErrNotConfigured})
	usageRepo := repository.NewUsageRepository(db)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)
	testutil.TestPlan(t, db, "instant_79", 50)

	_, first, err := svc.Activate(context.Background(), user.ID, "instant_79", "tok-1")
	require.NoError(t, err)
	require.NoError(t, usageRepo.RecordPaidUse(user.ID, listing.ID, first.ID))

	_, second, err := svc.Activate(context.Background(), user.ID, "instant_79", "tok-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// 旧周期失效，新周期额度从零开始
	var old model.SubscriptionPeriod
	require.NoError(t, db.First(&old, first.ID).Error)
	assert.False(t, old.Active)

	used, err := usageRepo.CountUsedInPeriod(user.ID, second.ID)
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestSubscriptionService_Status(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db, &stubVerifier{err: playstore.ErrNotConfigured})
	usageRepo := repository.NewUsageRepository(db)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)

	// 无订阅行时懒创建并报 inactive
	status, err := svc.Status(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", status.Status)

	testutil.TestPlan(t, db, "smart_monthly_199", 200)
	_, period, err := svc.Activate(context.Background(), user.ID, "smart_monthly_199", "tok-st")
	require.NoError(t, err)
	require.NoError(t, usageRepo.RecordPaidUse(user.ID, listing.ID, period.ID))

	status, err = svc.Status(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", status.Status)
	assert.Equal(t, "smart_monthly_199", status.PlanID)
	assert.Equal(t, 200, status.Allowance)
	assert.Equal(t, 1, status.Used)
}

func TestSubscriptionService_SeedPlans(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db, &stubVerifier{err: playstore.ErrNotConfigured})

	require.NoError(t, svc.SeedPlans(config.DefaultPlans()))
	// 重复播种幂等
	require.NoError(t, svc.SeedPlans(config.DefaultPlans()))

	plans, err := svc.ListPlans()
	require.NoError(t, err)
	assert.Len(t, plans, 4)
}
