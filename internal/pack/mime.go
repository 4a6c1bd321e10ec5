package pack

import (
	"github.com/myrjola/spotfake/internal/content"
	"strings"
)

// extensionByMIME is the fixed lookup table for media payload filenames.
var extensionByMIME = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"video/mp4":  "mp4",
	"video/webm": "webm",
}

var mimeByExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"mp4":  "video/mp4",
	"webm": "video/webm",
}

// extensionFor maps a MIME type to a payload file extension. Unrecognized
// types fall back to the default extension for the item kind.
func extensionFor(mimeType string, kind content.Kind) string {
	if ext, ok := extensionByMIME[mimeType]; ok {
		return ext
	}
	if kind == content.KindVideo {
		return "mp4"
	}
	return "jpg"
}

// mimeFor maps a payload filename back to a MIME type, falling back to the
// kind default when the extension is unknown.
func mimeFor(name string, kind content.Kind) string {
	ext := ""
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		ext = strings.ToLower(name[idx+1:])
	}
	if mimeType, ok := mimeByExtension[ext]; ok {
		return mimeType
	}
	if kind == content.KindVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}
