package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/crmcal/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	sourceID := "s1"
	entry1 := &activity.ActivityEntry{
		SourceID:     &sourceID,
		ObjectName:   "Opportunity",
		ActivityType: activity.TypeSourceSaved,
		Summary:      "Saved Opportunity source",
		Details:      `{"color":"#1589ee"}`,
		CreatedAt:    time.Now().Add(-time.Minute),
	}
	entry2 := &activity.ActivityEntry{
		ActivityType: activity.TypeSettingsUpdated,
		Summary:      "Updated theme",
		CreatedAt:    time.Now(),
	}

	require.NoError(t, repo.Log(ctx, "tenant1", entry1))
	require.NoError(t, repo.Log(ctx, "tenant1", entry2))
	require.NotZero(t, entry1.ID)

	entries, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, activity.TypeSettingsUpdated, entries[0].ActivityType)
	require.Equal(t, activity.TypeSourceSaved, entries[1].ActivityType)
	require.NotNil(t, entries[1].SourceID)
	require.Equal(t, "s1", *entries[1].SourceID)
	require.Nil(t, entries[0].SourceID)
}

func TestActivityRepository_FiltersAndTenantIsolation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	s1, s2 := "s1", "s2"
	require.NoError(t, repo.Log(ctx, "tenant1", &activity.ActivityEntry{SourceID: &s1, ActivityType: activity.TypeSourceSaved, Summary: "a"}))
	require.NoError(t, repo.Log(ctx, "tenant1", &activity.ActivityEntry{SourceID: &s2, ActivityType: activity.TypeSourceDeleted, Summary: "b"}))
	require.NoError(t, repo.Log(ctx, "tenant2", &activity.ActivityEntry{SourceID: &s1, ActivityType: activity.TypeSourceSaved, Summary: "c"}))

	bySource, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{SourceID: &s1})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	require.Equal(t, "a", bySource[0].Summary)

	typ := activity.TypeSourceDeleted
	byType, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{ActivityType: &typ})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	require.Equal(t, "b", byType[0].Summary)

	limited, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
