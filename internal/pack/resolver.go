package pack

import (
	"context"
	"github.com/myrjola/spotfake/internal/errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MediaResolver turns a media reference into payload bytes and a MIME type.
// Export uses it to materialize item media into the archive.
type MediaResolver interface {
	Resolve(ctx context.Context, ref string) (data []byte, mimeType string, err error)
}

// FileResolver resolves inline data URLs and references relative to a local
// media root directory. Remote http(s) references are not resolved; export
// keeps such items in the manifest with their original reference.
type FileResolver struct {
	root string
}

func NewFileResolver(root string) *FileResolver {
	return &FileResolver{root: root}
}

func (r *FileResolver) Resolve(_ context.Context, ref string) ([]byte, string, error) {
	if IsDataURL(ref) {
		return DecodeDataURL(ref)
	}
	if strings.Contains(ref, "://") {
		return nil, "", errors.New("remote media reference is not resolvable", slog.String("ref", ref))
	}

	path := filepath.Join(r.root, filepath.FromSlash(ref))
	// Keep references inside the media root.
	if rel, err := filepath.Rel(r.root, path); err != nil || strings.HasPrefix(rel, "..") {
		return nil, "", errors.New("media reference escapes media root", slog.String("ref", ref))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "read media file", slog.String("ref", ref))
	}

	mimeType := mimeFor(path, "")
	if sniffed := http.DetectContentType(data); sniffed != "application/octet-stream" {
		if _, known := extensionByMIME[sniffed]; known {
			mimeType = sniffed
		}
	}
	return data, mimeType, nil
}
