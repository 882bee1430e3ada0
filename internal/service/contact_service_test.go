package service

import (
	"context"
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

type stubVerifier struct {
	result *playstore.Result
	err    error
}

func (v *stubVerifier) VerifySubscription(ctx context.Context, productID, purchaseToken string) (*playstore.Result, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.result, nil
}

func newContactService(t *testing.T, db *gorm.DB, freeTier bool) (*ContactService, *SubscriptionService) {
	t.Helper()
	cfg := &config.Config{}
	subSvc := NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUsageRepository(db),
		&stubVerifier{err: playstore.ErrNotConfigured},
		cfg,
	)
	svc := NewContactService(
		repository.NewListingRepository(db),
		repository.NewUsageRepository(db),
		subSvc,
		freeTier,
	)
	return svc, subSvc
}

func TestContactService_FreeReveal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newContactService(t, db, true)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	owner.Name = "Ravi Kumar"
	owner.CompanyName = "Sunrise Estates"
	require.NoError(t, db.Save(owner).Error)
	listing := testutil.TestListing(t, db, owner.ID,
		testutil.WithContact("+91 98765 43210", "owner@example.com"))

	reveal, err := svc.Reveal(user.ID, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", reveal.Source)
	assert.Equal(t, listing.AdNumber, reveal.AdNumber)
	assert.Equal(t, "+91 98765 43210", reveal.Phone)
	assert.Equal(t, "owner@example.com", reveal.Email)
	assert.Equal(t, "Ravi Kumar", reveal.OwnerName)
	assert.Equal(t, "Sunrise Estates", reveal.CompanyName)
}

func TestContactService_FreeReveal_RepeatIsAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newContactService(t, db, true)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)

	first, err := svc.Reveal(user.ID, listing.ID)
	require.NoError(t, err)

	// 同一房源重复解锁返回同样的结果，不再扣减
	second, err := svc.Reveal(user.ID, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Phone, second.Phone)
	assert.Equal(t, "free", second.Source)

	var count int64
	require.NoError(t, db.Model(&model.FreeContactUsage{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestContactService_FreeReveal_SecondListingAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newContactService(t, db, true)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	first := testutil.TestListing(t, db, owner.ID)
	second := testutil.TestListing(t, db, owner.ID)

	_, err := svc.Reveal(user.ID, first.ID)
	require.NoError(t, err)

	// 免费档按 (user, listing) 各一次，换一个房源仍可免费解锁
	reveal, err := svc.Reveal(user.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", reveal.Source)
}

func TestContactService_FreeTierDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newContactService(t, db, false)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)

	_, err := svc.Reveal(user.ID, listing.ID)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestContactService_HiddenListings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newContactService(t, db, true)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	suspended := testutil.TestUser(t, db, testutil.WithRole("owner"), testutil.WithApproval("suspended"))

	pending := testutil.TestListing(t, db, owner.ID, testutil.WithListingStatus("pending"))
	rejected := testutil.TestListing(t, db, owner.ID, testutil.WithListingStatus("rejected"))
	hiddenOwner := testutil.TestListing(t, db, suspended.ID)

	// 未过审房源与被停用业主的房源一律按不存在处理
	for _, id := range []int64{pending.ID, rejected.ID, hiddenOwner.ID, 99999} {
		_, err := svc.Reveal(user.ID, id)
		assert.ErrorIs(t, err, ErrListingNotFound)
	}
}

func TestContactService_PaidReveal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newContactService(t, db, true)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)

	testutil.TestPlan(t, db, "instant_79", 50)
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithActiveUntil(time.Now().Add(30*24*time.Hour)))
	period := testutil.TestPeriod(t, db, user.ID, "instant_79")

	reveal, err := svc.Reveal(user.ID, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", reveal.Source)

	// 扣减落在付费台账
	var count int64
	require.NoError(t, db.Model(&model.ContactUsage{}).
		Where("period_id = ?", period.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// 重复解锁不再扣减
	_, err = svc.Reveal(user.ID, listing.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.ContactUsage{}).
		Where("period_id = ?", period.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestContactService_PaidExhaustedFallsToFree(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newContactService(t, db, true)
	usageRepo := repository.NewUsageRepository(db)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))

	testutil.TestPlan(t, db, "aggressive_10", 2)
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithActiveUntil(time.Now().Add(30*24*time.Hour)))
	period := testutil.TestPeriod(t, db, user.ID, "aggressive_10")

	// 耗尽 2 次付费额度
	for i := 0; i < 2; i++ {
		l := testutil.TestListing(t, db, owner.ID)
		reveal, err := svc.Reveal(user.ID, l.ID)
		require.NoError(t, err)
		assert.Equal(t, "paid", reveal.Source)
	}

	// 第三个房源落到免费档
	third := testutil.TestListing(t, db, owner.ID)
	reveal, err := svc.Reveal(user.ID, third.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", reveal.Source)

	used, err := usageRepo.CountUsedInPeriod(user.ID, period.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), used)

	// 免费档按 (user, listing) 计，第四个房源同样有自己的免费额度
	fourth := testutil.TestListing(t, db, owner.ID)
	reveal, err = svc.Reveal(user.ID, fourth.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", reveal.Source)

	// 只有免费档关闭时，额度用尽的新房源才会被拒
	disabled, _ := newContactService(t, db, false)
	fifth := testutil.TestListing(t, db, owner.ID)
	_, err = disabled.Reveal(user.ID, fifth.ID)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestContactService_ExpiredPeriodFallsToFree(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newContactService(t, db, true)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)

	testutil.TestPlan(t, db, "instant_79", 50)
	// 订阅行还标着 active，但周期已经过了 end_time
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithActiveUntil(time.Now().Add(24*time.Hour)))
	period := testutil.TestPeriod(t, db, user.ID, "instant_79",
		testutil.WithPeriodWindow(time.Now().Add(-60*24*time.Hour), time.Now().Add(-time.Hour)))

	reveal, err := svc.Reveal(user.ID, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", reveal.Source)

	// 过期周期被就地降级
	var p model.SubscriptionPeriod
	require.NoError(t, db.First(&p, period.ID).Error)
	assert.False(t, p.Active)
}

func TestContactService_PlanlessActiveFallsToFree(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newContactService(t, db, true)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)

	// 激活但没有任何周期绑定：额度为 0，走免费档
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithActiveUntil(time.Now().Add(24*time.Hour)))

	reveal, err := svc.Reveal(user.ID, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", reveal.Source)
}
