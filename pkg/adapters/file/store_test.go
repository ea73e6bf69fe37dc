package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yannickbattail/scadwrap/pkg/adapters/file"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/ports/tests"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.NewStore(t.TempDir())
	tests.ResultStoreContractTest(t, store)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "nope"))

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_RejectsPathIDs(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	err := store.Save(ctx, &domain.Record{ID: "../escape"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.Load(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFileStore_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, store.Save(ctx, &domain.Record{ID: "r1"}))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)
}
