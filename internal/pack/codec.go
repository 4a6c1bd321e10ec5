package pack

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/myrjola/spotfake/internal/clock"
	"github.com/myrjola/spotfake/internal/content"
	"github.com/myrjola/spotfake/internal/errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

// FormatVersion is written to every exported manifest.
const FormatVersion = 1

const (
	// localManifestName is the manifest alias read by a local install.
	localManifestName = "spotfake-library.json"
	// importManifestName is the manifest alias preferred on import.
	importManifestName = "spotfake-import.json"
	// mediaPrefix is the archive folder holding media payloads.
	mediaPrefix = "media/"
)

var (
	ErrNothingToExport = errors.NewSentinel("nothing to export")
	ErrNotAPackage     = errors.NewSentinel("not a valid package")
	ErrCorruptPackage  = errors.NewSentinel("corrupt package")
)

// Manifest is the JSON document written to the archive root under both
// manifest aliases.
type Manifest struct {
	Version   int            `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Items     []content.Item `json:"items"`
}

// Upserter is the slice of the content store the importer needs.
type Upserter interface {
	Put(ctx context.Context, item content.Item) error
}

// Codec converts between a content item collection and a single portable
// archive. Items coming out of an archive are validated before they are
// trusted; raw manifest JSON never crosses the archive boundary unchecked.
type Codec struct {
	resolver MediaResolver
	validate *validator.Validate
	clock    clock.Clock
	logger   *slog.Logger
}

func NewCodec(resolver MediaResolver, clk clock.Clock, logger *slog.Logger) *Codec {
	return &Codec{
		resolver: resolver,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock:    clk,
		logger:   logger.With("source", "PackageCodec"),
	}
}

// Export packs the items and their resolvable media into an archive.
//
// Items whose media cannot be resolved stay in the manifest with their
// original reference; a single bad item never fails the whole export. An
// empty collection fails with ErrNothingToExport before any bytes are
// produced.
func (c *Codec) Export(ctx context.Context, items []content.Item) ([]byte, error) {
	if len(items) == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)

	manifestItems := make([]content.Item, len(items))
	copy(manifestItems, items)

	for i := range manifestItems {
		item := &manifestItems[i]
		data, mimeType, err := c.resolver.Resolve(ctx, item.MediaRef)
		if err != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "media not resolvable, keeping original reference",
				slog.String("id", item.ID), errors.SlogError(err))
			continue
		}

		name := fmt.Sprintf("%s%s.%s", mediaPrefix, item.ID, extensionFor(mimeType, item.Kind))
		var payload io.Writer
		if payload, err = archive.Create(name); err != nil {
			return nil, errors.Wrap(err, "create media payload", slog.String("name", name))
		}
		if _, err = payload.Write(data); err != nil {
			return nil, errors.Wrap(err, "write media payload", slog.String("name", name))
		}
		item.MediaRef = name
	}

	manifest := Manifest{
		Version:   FormatVersion,
		Timestamp: c.clock.Now().UTC(),
		Items:     manifestItems,
	}
	encoded, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode manifest")
	}
	// The manifest goes in twice for compatibility with older installs that
	// only know the library alias.
	for _, name := range []string{localManifestName, importManifestName} {
		var w io.Writer
		if w, err = archive.Create(name); err != nil {
			return nil, errors.Wrap(err, "create manifest", slog.String("name", name))
		}
		if _, err = w.Write(encoded); err != nil {
			return nil, errors.Wrap(err, "write manifest", slog.String("name", name))
		}
	}

	if err = archive.Close(); err != nil {
		return nil, errors.Wrap(err, "close archive")
	}
	return buf.Bytes(), nil
}

// Import reads an archive and upserts its items into the store. It returns
// the number of items imported. Items with unusable media or an invalid shape
// are skipped with a warning; zero imported items is not an error.
func (c *Codec) Import(ctx context.Context, archive []byte, store Upserter) (int, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return 0, errors.Wrap(ErrNotAPackage, "open archive")
	}

	files := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		files[f.Name] = f
	}

	rawItems, err := c.readManifestItems(files)
	if err != nil {
		return 0, err
	}

	imported := 0
	referenced := map[string]bool{}
	for i, raw := range rawItems {
		item, ok := c.parseItem(ctx, i, raw)
		if !ok {
			continue
		}

		switch {
		case strings.HasPrefix(item.MediaRef, mediaPrefix):
			payload := files[item.MediaRef]
			if payload == nil {
				c.logger.LogAttrs(ctx, slog.LevelWarn, "media payload missing from archive, skipping item",
					slog.String("id", item.ID), slog.String("ref", item.MediaRef))
				continue
			}
			var data []byte
			if data, err = readZipFile(payload); err != nil {
				c.logger.LogAttrs(ctx, slog.LevelWarn, "media payload unreadable, skipping item",
					slog.String("id", item.ID), errors.SlogError(err))
				continue
			}
			referenced[item.MediaRef] = true
			item.MediaRef = EncodeDataURL(mimeFor(payload.Name, item.Kind), data)
		case IsDataURL(item.MediaRef):
			// Inline payload, nothing to recover.
		default:
			c.logger.LogAttrs(ctx, slog.LevelWarn, "unsupported media reference, skipping item",
				slog.String("id", item.ID), slog.String("ref", item.MediaRef))
			continue
		}

		if err = store.Put(ctx, item); err != nil {
			return imported, errors.Wrap(err, "store imported item", slog.String("id", item.ID))
		}
		imported++
	}

	// Orphan payload files are tolerated, but worth a warning.
	for name := range files {
		if strings.HasPrefix(name, mediaPrefix) && !referenced[name] {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "orphan media payload in archive",
				slog.String("name", name))
		}
	}

	return imported, nil
}

// readManifestItems locates the manifest under either alias and returns its
// raw item list. The items are parsed one by one later so that a single
// malformed item cannot poison the batch.
func (c *Codec) readManifestItems(files map[string]*zip.File) ([]json.RawMessage, error) {
	var manifestFile *zip.File
	for _, name := range []string{importManifestName, localManifestName} {
		if f, ok := files[name]; ok {
			manifestFile = f
			break
		}
	}
	if manifestFile == nil {
		return nil, errors.Wrap(ErrNotAPackage, "no manifest in archive")
	}

	raw, err := readZipFile(manifestFile)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}

	var manifest struct {
		Version int             `json:"version"`
		Items   json.RawMessage `json:"items"`
	}
	if err = json.Unmarshal(raw, &manifest); err != nil {
		return nil, errors.Wrap(ErrCorruptPackage, "parse manifest")
	}
	if manifest.Items == nil {
		return nil, errors.Wrap(ErrCorruptPackage, "manifest has no items")
	}

	var rawItems []json.RawMessage
	if err = json.Unmarshal(manifest.Items, &rawItems); err != nil {
		return nil, errors.Wrap(ErrCorruptPackage, "manifest items is not a list")
	}
	return rawItems, nil
}

// parseItem turns untrusted manifest JSON into a validated content.Item.
func (c *Codec) parseItem(ctx context.Context, index int, raw json.RawMessage) (content.Item, bool) {
	var item content.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "malformed item in manifest, skipping",
			slog.Int("index", index), errors.SlogError(err))
		return content.Item{}, false
	}
	if err := c.validate.Struct(item); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "invalid item in manifest, skipping",
			slog.Int("index", index), slog.String("id", item.ID), errors.SlogError(err))
		return content.Item{}, false
	}
	return item, true
}

func readZipFile(f *zip.File) ([]byte, error) {
	reader, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open archive file", slog.String("name", f.Name))
	}
	defer func() {
		_ = reader.Close()
	}()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "read archive file", slog.String("name", f.Name))
	}
	return data, nil
}
