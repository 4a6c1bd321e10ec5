package pack_test

import (
	"context"
	"github.com/myrjola/spotfake/internal/pack"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestFileResolver(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "media"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(root, "media", "a.png"), pngPayload(), 0o600))
	resolver := pack.NewFileResolver(root)

	tests := []struct {
		name     string
		ref      string
		wantMIME string
		wantErr  bool
	}{
		{
			name:     "data URL",
			ref:      pack.EncodeDataURL("image/webp", []byte{1, 2, 3}),
			wantMIME: "image/webp",
		},
		{
			name:     "file under media root",
			ref:      "media/a.png",
			wantMIME: "image/png",
		},
		{
			name:    "missing file",
			ref:     "media/missing.png",
			wantErr: true,
		},
		{
			name:    "remote reference",
			ref:     "https://example.com/a.jpg",
			wantErr: true,
		},
		{
			name:    "path traversal",
			ref:     "../../etc/passwd",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, mimeType, err := resolver.Resolve(context.Background(), tt.ref)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, data)
			require.Equal(t, tt.wantMIME, mimeType)
		})
	}
}

func TestDecodeDataURL(t *testing.T) {
	t.Parallel()

	data, mimeType, err := pack.DecodeDataURL("data:video/mp4;base64,AQID")
	require.NoError(t, err)
	require.Equal(t, "video/mp4", mimeType)
	require.Equal(t, []byte{1, 2, 3}, data)

	_, _, err = pack.DecodeDataURL("media/a.png")
	require.Error(t, err)

	_, _, err = pack.DecodeDataURL("data:image/png;base64")
	require.Error(t, err)
}
