package ports

import (
	"context"
	"testing"
	"time"

	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		record := domain.NewSessionRecord(sessionID, "fr")
		record.Status = domain.StatusRunning
		record.Step = domain.StepLocation
		record.Answers.Problem = domain.ProblemTowing
		record.Answers.Location = domain.Location{
			Kind:        domain.LocationGPS,
			Coordinates: &domain.Coordinates{Lat: 48.85, Lng: 2.35},
		}

		require.NoError(t, store.Save(ctx, sessionID, record), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StepLocation, loaded.Step)
		assert.Equal(t, domain.StatusRunning, loaded.Status)
		assert.Equal(t, domain.ProblemTowing, loaded.Answers.Problem)
		require.NotNil(t, loaded.Answers.Location.Coordinates)
		assert.Equal(t, 48.85, loaded.Answers.Location.Coordinates.Lat)
	})

	t.Run("Optional answers survive", func(t *testing.T) {
		no := false
		record := domain.NewSessionRecord(sessionID, "nl")
		record.Answers.Problem = domain.ProblemTowing
		record.Answers.FourWheelDrive = &no
		record.Answers.Destination = &domain.Destination{Address: "Garage X", Distance: "12 km", Duration: "18 min"}
		require.NoError(t, store.Save(ctx, sessionID, record))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		require.NotNil(t, loaded.Answers.FourWheelDrive)
		assert.False(t, *loaded.Answers.FourWheelDrive)
		require.NotNil(t, loaded.Answers.Destination)
		assert.Equal(t, "18 min", loaded.Answers.Destination.Duration)
		assert.Empty(t, loaded.Answers.WheelPosition)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Saved record is detached", func(t *testing.T) {
		record := domain.NewSessionRecord(sessionID, "en")
		require.NoError(t, store.Save(ctx, sessionID, record))
		record.Language = "nl"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "en", loaded.Language)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewSessionRecord(sessionID, "fr")))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSessionRecord(id1, "fr"))
		_ = store.Save(ctx, id2, domain.NewSessionRecord(id2, "fr"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
