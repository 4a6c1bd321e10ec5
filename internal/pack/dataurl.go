package pack

import (
	"encoding/base64"
	"fmt"
	"github.com/myrjola/spotfake/internal/errors"
	"strings"
)

const dataURLPrefix = "data:"

// IsDataURL reports whether the media reference carries an inline payload.
func IsDataURL(ref string) bool {
	return strings.HasPrefix(ref, dataURLPrefix)
}

// EncodeDataURL packs the payload into a base64 data URL.
func EncodeDataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("%s%s;base64,%s", dataURLPrefix, mimeType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURL unpacks a base64 data URL into payload bytes and a MIME type.
func DecodeDataURL(ref string) ([]byte, string, error) {
	if !IsDataURL(ref) {
		return nil, "", errors.New("not a data URL")
	}
	meta, encoded, found := strings.Cut(ref[len(dataURLPrefix):], ",")
	if !found {
		return nil, "", errors.New("data URL has no payload")
	}
	mimeType, _, _ := strings.Cut(meta, ";")
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", errors.Wrap(err, "decode base64 payload")
	}
	return data, mimeType, nil
}
