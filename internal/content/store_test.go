package content_test

import (
	"context"
	"github.com/myrjola/spotfake/internal/content"
	"github.com/myrjola/spotfake/internal/sqlite"
	"github.com/myrjola/spotfake/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	dbs, err := sqlite.NewDatabase(context.Background(), ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, dbs.Close())
	})
	return dbs
}

// writeManifest writes a bundled manifest file and returns its path.
func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestStore_PutAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := content.NewStore(newTestDB(t), "", testhelpers.NewLogger(io.Discard))

	item := content.Item{
		ID:             "glacier-01",
		Kind:           content.KindImage,
		MediaRef:       "data:image/png;base64,AAAA",
		Authentic:      false,
		Title:          "Glacier at dusk",
		Explanation:    "The ice texture repeats in a grid pattern.",
		DetectionHints: []string{"repeating texture", "melted horizon"},
		Category:       "nature",
		GeneratorLabel: "diffusion-v3",
	}
	require.NoError(t, store.Put(ctx, item))

	items, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	require.True(t, got.UserSupplied, "stored copies are always marked user-supplied")
	got.UserSupplied = false
	require.Equal(t, item, got)
}

func TestStore_PutRequiresID(t *testing.T) {
	t.Parallel()
	store := content.NewStore(newTestDB(t), "", testhelpers.NewLogger(io.Discard))

	err := store.Put(context.Background(), content.Item{Kind: content.KindImage})

	require.ErrorIs(t, err, content.ErrEmptyID)
}

func TestStore_PutIsUpsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := content.NewStore(newTestDB(t), "", testhelpers.NewLogger(io.Discard))

	require.NoError(t, store.Put(ctx, content.Item{ID: "a", Kind: content.KindImage, Title: "first"}))
	require.NoError(t, store.Put(ctx, content.Item{ID: "a", Kind: content.KindVideo, Title: "second"}))

	items, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "second", items[0].Title)
	require.Equal(t, content.KindVideo, items[0].Kind)
}

func TestStore_RemoveMissingIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := content.NewStore(newTestDB(t), "", testhelpers.NewLogger(io.Discard))

	require.NoError(t, store.Remove(ctx, "nonexistent"))

	require.NoError(t, store.Put(ctx, content.Item{ID: "a", Kind: content.KindImage}))
	require.NoError(t, store.Remove(ctx, "a"))
	items, err := store.All(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestStore_AllMergesBundledManifest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	manifestPath := writeManifest(t, `{
  "items": [
    {"id": "bundled-only", "kind": "image", "mediaRef": "media/bundled-only.jpg", "isAuthentic": true, "title": "Street market"},
    {"id": "shared", "kind": "image", "mediaRef": "media/shared.jpg", "isAuthentic": true, "title": "Bundled copy"}
  ]
}`)
	store := content.NewStore(newTestDB(t), manifestPath, testhelpers.NewLogger(io.Discard))

	require.NoError(t, store.Put(ctx, content.Item{
		ID:    "shared",
		Kind:  content.KindImage,
		Title: "Local copy",
	}))

	items, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]content.Item{}
	for _, item := range items {
		byID[item.ID] = item
	}
	require.Equal(t, "Street market", byID["bundled-only"].Title)
	require.False(t, byID["bundled-only"].UserSupplied)
	require.Equal(t, "Local copy", byID["shared"].Title, "device-local copy wins over bundled copy")
	require.True(t, byID["shared"].UserSupplied)
}

func TestStore_AllToleratesMissingManifest(t *testing.T) {
	t.Parallel()
	store := content.NewStore(newTestDB(t), filepath.Join(t.TempDir(), "nope.json"),
		testhelpers.NewLogger(io.Discard))

	items, err := store.All(context.Background())

	require.NoError(t, err)
	require.Empty(t, items)
}

func TestStore_AllToleratesMalformedManifest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := content.NewStore(newTestDB(t), writeManifest(t, `{"items": "not-a-list"`),
		testhelpers.NewLogger(io.Discard))

	require.NoError(t, store.Put(ctx, content.Item{ID: "a", Kind: content.KindImage}))

	items, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}
