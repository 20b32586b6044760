package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"wellness-ops-backend/models"
	"wellness-ops-backend/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

var archiveTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestArchivePropertyCascadesToTherapists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	property := testutil.CreatePartnerProperty(t, db, "Palm Court", 25)
	other := testutil.CreatePartnerProperty(t, db, "Sea View", 25)

	u1, t1 := testutil.CreateTherapist(t, db, "a@test.com", property.ID, 50000)
	_, t2 := testutil.CreateTherapist(t, db, "b@test.com", property.ID, 50000)
	_, elsewhere := testutil.CreateTherapist(t, db, "c@test.com", other.ID, 50000)
	entry := testutil.CreateService(t, db, t1, "2026-03-01", "Swedish", 1000, models.ReceivedByHotel)

	svc := &ArchiveService{DB: db, Now: fixedClock(archiveTime)}
	archived, cascaded, err := svc.ArchiveProperty(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cascaded)
	assert.Equal(t, models.StatusArchived, archived.Status)
	assert.False(t, archived.Active)

	for _, id := range []uuid.UUID{t1.ID, t2.ID} {
		var th models.Therapist
		require.NoError(t, db.First(&th, "id = ?", id).Error)
		assert.Equal(t, models.StatusArchived, th.Status)
		require.NotNil(t, th.ArchivedAt)
	}

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", u1.ID).Error)
	assert.Equal(t, models.StatusArchived, user.Status)

	var untouched models.Therapist
	require.NoError(t, db.First(&untouched, "id = ?", elsewhere.ID).Error)
	assert.Equal(t, models.StatusActive, untouched.Status)

	// history stays reachable by id
	var history models.ServiceEntry
	require.NoError(t, db.First(&history, "id = ?", entry.ID).Error)
}

func TestArchivePropertyTwiceConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	property := testutil.CreatePartnerProperty(t, db, "Palm Court", 25)
	svc := NewArchiveService(db)

	_, _, err := svc.ArchiveProperty(context.Background(), property.ID)
	require.NoError(t, err)
	_, _, err = svc.ArchiveProperty(context.Background(), property.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestArchivePropertyNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, _, err := NewArchiveService(db).ArchiveProperty(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestorePropertyLeavesTherapistsArchived(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	property := testutil.CreatePartnerProperty(t, db, "Palm Court", 25)
	_, therapist := testutil.CreateTherapist(t, db, "x@test.com", property.ID, 0)
	svc := NewArchiveService(db)

	_, _, err := svc.ArchiveProperty(ctx, property.ID)
	require.NoError(t, err)

	restored, err := svc.RestoreProperty(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, restored.Status)
	assert.Nil(t, restored.ArchivedAt)

	var loaded models.Property
	require.NoError(t, db.First(&loaded, "id = ?", property.ID).Error)
	assert.True(t, loaded.Active)
	assert.Nil(t, loaded.ArchivedAt)

	var th models.Therapist
	require.NoError(t, db.First(&th, "id = ?", therapist.ID).Error)
	assert.Equal(t, models.StatusArchived, th.Status)
}

func TestRestoreActivePropertyConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	property := testutil.CreatePartnerProperty(t, db, "Palm Court", 25)

	_, err := NewArchiveService(db).RestoreProperty(context.Background(), property.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeletePropertyRejectsActiveTherapists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	property := testutil.CreatePartnerProperty(t, db, "Palm Court", 25)
	testutil.CreateTherapist(t, db, "x@test.com", property.ID, 0)

	_, err := NewArchiveService(db).DeleteProperty(context.Background(), property.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	var de *DetailError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Message, "1 active therapist")
}

func TestDeletePropertyWithHistoryArchives(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	property := testutil.CreatePartnerProperty(t, db, "Palm Court", 25)
	_, therapist := testutil.CreateTherapist(t, db, "x@test.com", property.ID, 0)
	testutil.CreateService(t, db, therapist, "2026-03-01", "Thai", 500, models.ReceivedByHotel)
	svc := NewArchiveService(db)

	_, err := svc.ArchiveTherapist(ctx, therapist.ID)
	require.NoError(t, err)

	outcome, err := svc.DeleteProperty(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeArchived, outcome)

	var loaded models.Property
	require.NoError(t, db.First(&loaded, "id = ?", property.ID).Error)
	assert.Equal(t, models.StatusArchived, loaded.Status)
}

func TestDeletePropertyWithoutReferencesHardDeletes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	property := testutil.CreatePartnerProperty(t, db, "Empty Inn", 10)

	outcome, err := NewArchiveService(db).DeleteProperty(context.Background(), property.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)

	var count int64
	db.Model(&models.Property{}).Where("id = ?", property.ID).Count(&count)
	assert.Zero(t, count)
}

func TestArchiveAndRestoreTherapist(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	property := testutil.CreatePartnerProperty(t, db, "Palm Court", 25)
	user, therapist := testutil.CreateTherapist(t, db, "x@test.com", property.ID, 0)
	svc := &ArchiveService{DB: db, Now: fixedClock(archiveTime)}

	archived, err := svc.ArchiveTherapist(ctx, therapist.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, archived.Status)
	require.NotNil(t, archived.ArchivedAt)
	assert.True(t, archived.ArchivedAt.Equal(archiveTime))

	var u models.User
	require.NoError(t, db.First(&u, "id = ?", user.ID).Error)
	assert.Equal(t, models.StatusArchived, u.Status)

	_, err = svc.ArchiveTherapist(ctx, therapist.ID)
	assert.ErrorIs(t, err, ErrConflict)

	restored, err := svc.RestoreTherapist(ctx, therapist.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, restored.Status)

	var restoredUser models.User
	require.NoError(t, db.First(&restoredUser, "id = ?", user.ID).Error)
	assert.Equal(t, models.StatusActive, restoredUser.Status)
	assert.Nil(t, restoredUser.ArchivedAt)

	var restoredTherapist models.Therapist
	require.NoError(t, db.First(&restoredTherapist, "id = ?", therapist.ID).Error)
	assert.Equal(t, models.StatusActive, restoredTherapist.Status)
	assert.Nil(t, restoredTherapist.ArchivedAt)
}

func TestRestoreTherapistDoesNotRestoreProperty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	property := testutil.CreatePartnerProperty(t, db, "Palm Court", 25)
	_, therapist := testutil.CreateTherapist(t, db, "x@test.com", property.ID, 0)
	svc := NewArchiveService(db)

	_, _, err := svc.ArchiveProperty(ctx, property.ID)
	require.NoError(t, err)
	_, err = svc.RestoreTherapist(ctx, therapist.ID)
	require.NoError(t, err)

	var loaded models.Property
	require.NoError(t, db.First(&loaded, "id = ?", property.ID).Error)
	assert.Equal(t, models.StatusArchived, loaded.Status)
}
