package pack_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"github.com/myrjola/spotfake/internal/clock"
	"github.com/myrjola/spotfake/internal/content"
	"github.com/myrjola/spotfake/internal/pack"
	"github.com/myrjola/spotfake/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

// memStore collects imported items for assertions.
type memStore struct {
	items map[string]content.Item
}

func newMemStore() *memStore {
	return &memStore{items: map[string]content.Item{}}
}

func (s *memStore) Put(_ context.Context, item content.Item) error {
	item.UserSupplied = true
	s.items[item.ID] = item
	return nil
}

func newTestCodec(t *testing.T) *pack.Codec {
	t.Helper()
	return pack.NewCodec(pack.NewFileResolver(t.TempDir()), clock.NewFake(), testhelpers.NewLogger(io.Discard))
}

func pngPayload() []byte {
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
}

func TestCodec_ExportNothing(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	archive, err := codec.Export(context.Background(), nil)

	require.ErrorIs(t, err, pack.ErrNothingToExport)
	require.Nil(t, archive, "no archive bytes may be produced")
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	codec := newTestCodec(t)
	payload := pngPayload()

	exported := []content.Item{
		{
			ID:             "harbor-07",
			Kind:           content.KindImage,
			MediaRef:       pack.EncodeDataURL("image/png", payload),
			Authentic:      true,
			Title:          "Harbor at noon",
			DetectionHints: []string{"consistent shadows"},
			Category:       "city",
		},
		{
			ID:        "crowd-99",
			Kind:      content.KindImage,
			MediaRef:  pack.EncodeDataURL("image/png", payload),
			Authentic: false,
			Title:     "Crowd scene",
		},
	}

	archive, err := codec.Export(ctx, exported)
	require.NoError(t, err)

	store := newMemStore()
	count, err := codec.Import(ctx, archive, store)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	for _, want := range exported {
		got, ok := store.items[want.ID]
		require.True(t, ok, "item %s should survive the round trip", want.ID)
		require.Equal(t, want.Authentic, got.Authentic)
		require.Equal(t, want.Title, got.Title)

		data, mimeType, err := pack.DecodeDataURL(got.MediaRef)
		require.NoError(t, err)
		require.Equal(t, "image/png", mimeType)
		require.Equal(t, payload, data, "media bytes should be recovered unchanged")
	}
}

func TestCodec_ExportKeepsUnresolvableReference(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	codec := newTestCodec(t)

	items := []content.Item{
		{ID: "remote-1", Kind: content.KindImage, MediaRef: "https://example.com/a.jpg", Title: "Remote"},
		{ID: "inline-1", Kind: content.KindImage, MediaRef: pack.EncodeDataURL("image/png", pngPayload())},
	}

	archive, err := codec.Export(ctx, items)
	require.NoError(t, err)

	manifest := readManifest(t, archive, "spotfake-import.json")
	require.Len(t, manifest.Items, 2, "unresolvable items are still included in the manifest")

	byID := map[string]content.Item{}
	for _, item := range manifest.Items {
		byID[item.ID] = item
	}
	require.Equal(t, "https://example.com/a.jpg", byID["remote-1"].MediaRef, "original reference kept")
	require.Equal(t, "media/inline-1.png", byID["inline-1"].MediaRef, "resolved media rewritten to archive path")
}

func TestCodec_ExportWritesBothManifestAliases(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	archive, err := codec.Export(context.Background(), []content.Item{
		{ID: "a", Kind: content.KindImage, MediaRef: pack.EncodeDataURL("image/png", pngPayload())},
	})
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)

	var local, imported []byte
	for _, f := range reader.File {
		switch f.Name {
		case "spotfake-library.json":
			local = readArchiveFile(t, f)
		case "spotfake-import.json":
			imported = readArchiveFile(t, f)
		}
	}
	require.NotNil(t, local)
	require.NotNil(t, imported)
	require.Equal(t, local, imported, "both aliases carry identical content")
}

func TestCodec_ImportFallsBackToLibraryAlias(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	archive := buildArchive(t, map[string][]byte{
		"spotfake-library.json": marshalManifest(t, []content.Item{
			{ID: "a", Kind: content.KindImage, MediaRef: pack.EncodeDataURL("image/png", pngPayload())},
		}),
	})

	store := newMemStore()
	count, err := codec.Import(context.Background(), archive, store)

	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestCodec_ImportRejectsNonPackages(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)
	store := newMemStore()

	_, err := codec.Import(context.Background(), []byte("not a zip"), store)
	require.ErrorIs(t, err, pack.ErrNotAPackage)

	archive := buildArchive(t, map[string][]byte{"readme.txt": []byte("hello")})
	_, err = codec.Import(context.Background(), archive, store)
	require.ErrorIs(t, err, pack.ErrNotAPackage)
}

func TestCodec_ImportRejectsCorruptManifests(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	tests := []struct {
		name     string
		manifest []byte
	}{
		{name: "invalid JSON", manifest: []byte(`{"version": 1,`)},
		{name: "items missing", manifest: []byte(`{"version": 1}`)},
		{name: "items not a list", manifest: []byte(`{"version": 1, "items": {"id": "a"}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			archive := buildArchive(t, map[string][]byte{"spotfake-import.json": tt.manifest})
			store := newMemStore()

			count, err := codec.Import(context.Background(), archive, store)

			require.ErrorIs(t, err, pack.ErrCorruptPackage)
			require.Zero(t, count)
			require.Empty(t, store.items, "no partial state on a corrupt package")
		})
	}
}

func TestCodec_ImportSkipsBrokenItems(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	items := []content.Item{
		// Payload present in the archive below.
		{ID: "with-media", Kind: content.KindImage, MediaRef: "media/with-media.png"},
		// Payload missing from the archive: skipped with a warning.
		{ID: "missing-media", Kind: content.KindImage, MediaRef: "media/missing-media.png"},
		// Unsupported reference shape: skipped without counting.
		{ID: "remote", Kind: content.KindImage, MediaRef: "https://example.com/x.jpg"},
		// Inline payload: imported directly.
		{ID: "inline", Kind: content.KindVideo, MediaRef: pack.EncodeDataURL("video/mp4", []byte{1, 2, 3})},
		// No kind: fails validation, skipped.
		{ID: "invalid"},
	}
	archive := buildArchive(t, map[string][]byte{
		"spotfake-import.json": marshalManifest(t, items),
		"media/with-media.png": pngPayload(),
		"media/orphan.png":     pngPayload(),
	})

	store := newMemStore()
	count, err := codec.Import(context.Background(), archive, store)

	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Contains(t, store.items, "with-media")
	require.Contains(t, store.items, "inline")

	data, mimeType, err := pack.DecodeDataURL(store.items["with-media"].MediaRef)
	require.NoError(t, err)
	require.Equal(t, "image/png", mimeType)
	require.Equal(t, pngPayload(), data)
}

func marshalManifest(t *testing.T, items []content.Item) []byte {
	t.Helper()
	encoded, err := json.Marshal(pack.Manifest{Version: pack.FormatVersion, Items: items})
	require.NoError(t, err)
	return encoded
}

func buildArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, data := range files {
		f, err := writer.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func readArchiveFile(t *testing.T, f *zip.File) []byte {
	t.Helper()
	reader, err := f.Open()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, reader.Close())
	}()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	return data
}

func readManifest(t *testing.T, archive []byte, name string) pack.Manifest {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	for _, f := range reader.File {
		if f.Name == name {
			var manifest pack.Manifest
			require.NoError(t, json.Unmarshal(readArchiveFile(t, f), &manifest))
			return manifest
		}
	}
	t.Fatalf("manifest %s not found in archive", name)
	return pack.Manifest{}
}
