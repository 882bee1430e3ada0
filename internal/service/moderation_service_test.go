package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/estate_go_server/internal/model"
	"github.com/qs3c/estate_go_server/internal/model/dto"
	"github.com/qs3c/estate_go_server/internal/repository"
	"github.com/qs3c/estate_go_server/internal/testutil"
)

func newModerationService(db *gorm.DB) *ModerationService {
	return NewModerationService(
		repository.NewListingRepository(db),
		repository.NewUserRepository(db),
		repository.NewModerationRepository(db),
	)
}

func TestModerationService_ModerateListing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newModerationService(db)
	admin := testutil.TestUser(t, db, testutil.WithRole("admin"))
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID, testutil.WithListingStatus("pending"))

	require.NoError(t, svc.ModerateListing(admin.ID, listing.ID, "approve", ""))

	updated, err := repository.NewListingRepository(db).GetByID(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", updated.Status)

	// 每个动作落一条日志
	logs, total, err := svc.Logs("listing", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "approve", logs[0].Action)
	assert.Equal(t, admin.ID, logs[0].ActorUserID)

	require.NoError(t, svc.ModerateListing(admin.ID, listing.ID, "reject", "fake photos"))
	updated, _ = repository.NewListingRepository(db).GetByID(listing.ID)
	assert.Equal(t, "rejected", updated.Status)
	assert.Equal(t, "fake photos", updated.ModerationReason)

	assert.ErrorIs(t, svc.ModerateListing(admin.ID, listing.ID, "promote", ""), ErrInvalidAction)
	assert.ErrorIs(t, svc.ModerateListing(admin.ID, 99999, "approve", ""), ErrEntityGone)
}

func TestModerationService_ModerateOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newModerationService(db)
	admin := testutil.TestUser(t, db, testutil.WithRole("admin"))
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"), testutil.WithApproval("pending"))

	require.NoError(t, svc.ModerateOwner(admin.ID, owner.ID, "approve", ""))

	updated, err := repository.NewUserRepository(db).GetByID(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", updated.ApprovalStatus)

	require.NoError(t, svc.ModerateOwner(admin.ID, owner.ID, "suspend", "spam listings"))
	updated, _ = repository.NewUserRepository(db).GetByID(owner.ID)
	assert.Equal(t, "suspended", updated.ApprovalStatus)
	assert.Equal(t, "spam listings", updated.ApprovalReason)
}

func TestModerationService_ModerateImage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newModerationService(db)
	listingRepo := repository.NewListingRepository(db)
	admin := testutil.TestUser(t, db, testutil.WithRole("admin"))
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)

	img := &model.ListingImage{ListingID: listing.ID, SortOrder: 0, FilePath: "x.jpg", Status: "pending"}
	require.NoError(t, listingRepo.CreateImage(img))

	require.NoError(t, svc.ModerateImage(admin.ID, img.ID, "reject", "watermarked"))

	updated, err := listingRepo.GetImageByID(img.ID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", updated.Status)
}

func TestModerationService_PendingQueues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newModerationService(db)
	listingRepo := repository.NewListingRepository(db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"), testutil.WithApproval("pending"))

	listing := testutil.TestListing(t, db, owner.ID, testutil.WithListingStatus("pending"))
	testutil.TestListing(t, db, owner.ID, testutil.WithListingStatus("approved"))
	require.NoError(t, listingRepo.CreateImage(&model.ListingImage{
		ListingID: listing.ID, SortOrder: 0, FilePath: "x.jpg", Status: "pending",
	}))

	listings, total, err := svc.PendingListings(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, listing.ID, listings[0].ID)

	owners, total, err := svc.PendingOwners(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, owner.ID, owners[0].ID)

	images, total, err := svc.PendingImages(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, images, 1)
}

func TestModerationService_SetDuplicateOverrides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newModerationService(db)
	admin := testutil.TestUser(t, db, testutil.WithRole("admin"))
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)

	allow := true
	require.NoError(t, svc.SetDuplicateOverrides(admin.ID, listing.ID, &dto.AllowDuplicatesRequest{
		AllowDuplicateAddress: &allow,
		Reason:                "same building, different floor",
	}))

	updated, err := repository.NewListingRepository(db).GetByID(listing.ID)
	require.NoError(t, err)
	assert.True(t, updated.AllowDuplicateAddress)
	assert.False(t, updated.AllowDuplicatePhone)

	logs, _, err := svc.Logs("listing", 1, 20)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "allow_duplicates", logs[0].Action)
}
