package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/estate_go_server/internal/testutil"
)

func TestSavedRepository_SaveIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSavedRepository(db)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)

	require.NoError(t, repo.Save(user.ID, listing.ID))
	// 重复收藏不是错误
	require.NoError(t, repo.Save(user.ID, listing.ID))

	ids, err := repo.SavedListingIDs(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{listing.ID}, ids)
}

func TestSavedRepository_Unsave(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSavedRepository(db)
	user := testutil.TestUser(t, db)
	owner := testutil.TestUser(t, db, testutil.WithRole("owner"))
	listing := testutil.TestListing(t, db, owner.ID)

	require.NoError(t, repo.Save(user.ID, listing.ID))
	require.NoError(t, repo.Unsave(user.ID, listing.ID))
	// 再次取消同样成功
	require.NoError(t, repo.Unsave(user.ID, listing.ID))

	saved, err := repo.IsSaved(user.ID, listing.ID)
	require.NoError(t, err)
	assert.False(t, saved)
}
