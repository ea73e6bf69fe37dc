package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/ports"
)

// ResultStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.ResultStore.
func ResultStoreContractTest(t *testing.T, store ports.ResultStore) {
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405.000000000")

	newRecord := func(id string, at time.Time) *domain.Record {
		return &domain.Record{
			ID:        id,
			Operation: domain.OpExport3D,
			Format:    domain.FormatSTL,
			ModelFile: "test3d.scad",
			File:      "out/test3d_all_20.stl",
			Output:    "Total rendering time: 0:00:00.042",
			Summary: &domain.Summary{
				Geometry: domain.GeometryStats{Dimensions: 3, Facets: 12, Vertices: 8, Simple: true},
				Time:     domain.Timing{Milliseconds: 42, Time: "0:00:00.042"},
			},
			CreatedAt: at.UTC().Truncate(time.Millisecond),
			Duration:  1500 * time.Millisecond,
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		rec := newRecord(id, time.Now())

		require.NoError(t, store.Save(ctx, rec), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec.Operation, loaded.Operation)
		assert.Equal(t, rec.File, loaded.File)
		assert.Equal(t, rec.Duration, loaded.Duration)
		assert.True(t, rec.CreatedAt.Equal(loaded.CreatedAt))
		require.NotNil(t, loaded.Summary)
		assert.Equal(t, int64(12), loaded.Summary.Geometry.Facets)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newRecord(id, time.Now())))

		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrResultNotFound, "Load after Delete should return ErrResultNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Deleting twice should not fail")
	})

	t.Run("List newest first", func(t *testing.T) {
		older := id + "-1"
		newer := id + "-2"
		now := time.Now()
		require.NoError(t, store.Save(ctx, newRecord(older, now.Add(-time.Minute))))
		require.NoError(t, store.Save(ctx, newRecord(newer, now)))

		defer func() {
			_ = store.Delete(ctx, older)
			_ = store.Delete(ctx, newer)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		require.Contains(t, ids, older)
		require.Contains(t, ids, newer)
		assert.Less(t, indexOf(ids, newer), indexOf(ids, older))
	})
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
