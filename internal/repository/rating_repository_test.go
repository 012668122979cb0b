package repository

import (
	"path/filepath"
	"testing"

	"ckan-go/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.Open("sqlite:///" + filepath.Join(t.TempDir(), "ckan.db"))
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seed(t *testing.T, db *gorm.DB) (*models.User, *models.Package) {
	t.Helper()
	user := &models.User{Name: "alice", PasswordHash: "x"}
	require.NoError(t, NewUserRepository(db).Create(user))
	pkg := &models.Package{Name: "road-traffic"}
	require.NoError(t, NewPackageRepository(db).Create(pkg))
	return user, pkg
}

func TestRatingRepository_outOfRangeIsStored(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)
	user, pkg := seed(t, db)
	repo := NewRatingRepository(db)

	for _, v := range []float64{0, 7.5, -1} {
		require.NoError(repo.Create(&models.Rating{UserID: &user.ID, PackageID: pkg.ID, Rating: v}))
	}

	count, err := repo.Count()
	require.NoError(err)
	require.EqualValues(3, count)
}

func TestRatingRepository_aggregateAndLookup(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)
	user, pkg := seed(t, db)
	repo := NewRatingRepository(db)

	agg, err := repo.Aggregate(pkg.ID)
	require.NoError(err)
	require.EqualValues(0, agg.Count)
	require.Zero(agg.Average)

	require.NoError(repo.Create(&models.Rating{UserID: &user.ID, PackageID: pkg.ID, Rating: 4}))
	require.NoError(repo.Create(&models.Rating{UserIPAddress: "10.0.0.1", PackageID: pkg.ID, Rating: 2}))

	agg, err = repo.Aggregate(pkg.ID)
	require.NoError(err)
	require.EqualValues(2, agg.Count)
	require.InDelta(3.0, agg.Average, 1e-9)

	found, err := repo.FindForRater(pkg.ID, &user.ID, "")
	require.NoError(err)
	require.NotNil(found)
	require.False(found.IsAnonymous())
	require.False(found.Created.IsZero())

	found, err = repo.FindForRater(pkg.ID, nil, "10.0.0.1")
	require.NoError(err)
	require.NotNil(found)
	require.True(found.IsAnonymous())

	found, err = repo.FindForRater(pkg.ID, nil, "10.0.0.2")
	require.NoError(err)
	require.Nil(found)
}

func TestRatingRepository_cascadeOnPackageDelete(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)
	user, pkg := seed(t, db)
	repo := NewRatingRepository(db)

	require.NoError(repo.Create(&models.Rating{UserID: &user.ID, PackageID: pkg.ID, Rating: 5}))
	require.NoError(repo.Create(&models.Rating{UserIPAddress: "10.0.0.1", PackageID: pkg.ID, Rating: 1}))

	require.NoError(NewPackageRepository(db).Delete(pkg.ID))

	count, err := repo.Count()
	require.NoError(err)
	require.Zero(count)
}

func TestRatingRepository_cascadeOnUserDelete(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)
	user, pkg := seed(t, db)
	repo := NewRatingRepository(db)

	require.NoError(repo.Create(&models.Rating{UserID: &user.ID, PackageID: pkg.ID, Rating: 5}))
	require.NoError(repo.Create(&models.Rating{UserIPAddress: "10.0.0.1", PackageID: pkg.ID, Rating: 1}))

	require.NoError(NewUserRepository(db).Delete(user.ID))

	ratings, err := repo.ListByPackage(pkg.ID)
	require.NoError(err)
	require.Len(ratings, 1)
	require.True(ratings[0].IsAnonymous())
}

func TestRatingRepository_clean(t *testing.T) {
	require := require.New(t)
	db := newTestDB(t)
	user, pkg := seed(t, db)
	repo := NewRatingRepository(db)

	require.NoError(repo.Create(&models.Rating{UserID: &user.ID, PackageID: pkg.ID, Rating: 5}))
	require.NoError(repo.Create(&models.Rating{UserIPAddress: "10.0.0.1", PackageID: pkg.ID, Rating: 1}))
	require.NoError(repo.Create(&models.Rating{UserIPAddress: "10.0.0.2", PackageID: pkg.ID, Rating: 2}))

	n, err := repo.DeleteAnonymous()
	require.NoError(err)
	require.EqualValues(2, n)

	n, err = repo.DeleteAll()
	require.NoError(err)
	require.EqualValues(1, n)
}
