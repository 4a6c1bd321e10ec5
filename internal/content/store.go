package content

import (
	"context"
	"encoding/json"
	"github.com/myrjola/spotfake/internal/errors"
	"github.com/myrjola/spotfake/internal/sqlite"
	"log/slog"
	"os"
	"sort"
)

// ErrEmptyID is returned when a content item without an id is written to the store.
var ErrEmptyID = errors.NewSentinel("content item id must not be empty")

// Store is the durable keyed collection of content items. Reads merge the
// device-local rows with an optional bundled manifest file, with the local
// copy winning on id collision.
type Store struct {
	dbs          *sqlite.Database
	manifestPath string
	logger       *slog.Logger
}

// NewStore wires the store to its database and the well-known bundled
// manifest path. The manifest is optional; an empty path disables it.
func NewStore(dbs *sqlite.Database, manifestPath string, logger *slog.Logger) *Store {
	return &Store{
		dbs:          dbs,
		manifestPath: manifestPath,
		logger:       logger.With("source", "ContentStore"),
	}
}

// itemRow is the database shape of an Item. Detection hints are persisted as
// a JSON array in a text column.
type itemRow struct {
	ID             string `db:"id"`
	Kind           string `db:"kind"`
	MediaRef       string `db:"media_ref"`
	Authentic      bool   `db:"authentic"`
	Title          string `db:"title"`
	Explanation    string `db:"explanation"`
	DetectionHints string `db:"detection_hints"`
	Category       string `db:"category"`
	ShortHint      string `db:"short_hint"`
	GeneratorLabel string `db:"generator_label"`
	UserSupplied   bool   `db:"user_supplied"`
}

func toRow(item Item) (itemRow, error) {
	hints := item.DetectionHints
	if hints == nil {
		hints = []string{}
	}
	encoded, err := json.Marshal(hints)
	if err != nil {
		return itemRow{}, errors.Wrap(err, "encode detection hints")
	}
	return itemRow{
		ID:             item.ID,
		Kind:           string(item.Kind),
		MediaRef:       item.MediaRef,
		Authentic:      item.Authentic,
		Title:          item.Title,
		Explanation:    item.Explanation,
		DetectionHints: string(encoded),
		Category:       item.Category,
		ShortHint:      item.ShortHint,
		GeneratorLabel: item.GeneratorLabel,
		UserSupplied:   item.UserSupplied,
	}, nil
}

func (r itemRow) toItem() (Item, error) {
	var hints []string
	if err := json.Unmarshal([]byte(r.DetectionHints), &hints); err != nil {
		return Item{}, errors.Wrap(err, "decode detection hints", slog.String("id", r.ID))
	}
	if len(hints) == 0 {
		hints = nil
	}
	return Item{
		ID:             r.ID,
		Kind:           Kind(r.Kind),
		MediaRef:       r.MediaRef,
		Authentic:      r.Authentic,
		Title:          r.Title,
		Explanation:    r.Explanation,
		DetectionHints: hints,
		Category:       r.Category,
		ShortHint:      r.ShortHint,
		GeneratorLabel: r.GeneratorLabel,
		UserSupplied:   r.UserSupplied,
	}, nil
}

// Put upserts the item by id. The stored copy is always marked user-supplied
// so that provenance survives round trips through packages. Idempotent.
func (s *Store) Put(ctx context.Context, item Item) error {
	if item.ID == "" {
		return ErrEmptyID
	}
	item.UserSupplied = true

	row, err := toRow(item)
	if err != nil {
		return err
	}

	stmt := `INSERT INTO content_items
    (id, kind, media_ref, authentic, title, explanation, detection_hints, category, short_hint, generator_label,
     user_supplied)
VALUES (:id, :kind, :media_ref, :authentic, :title, :explanation, :detection_hints, :category, :short_hint,
        :generator_label, :user_supplied)
ON CONFLICT (id) DO UPDATE SET kind            = excluded.kind,
                               media_ref       = excluded.media_ref,
                               authentic       = excluded.authentic,
                               title           = excluded.title,
                               explanation     = excluded.explanation,
                               detection_hints = excluded.detection_hints,
                               category        = excluded.category,
                               short_hint      = excluded.short_hint,
                               generator_label = excluded.generator_label,
                               user_supplied   = excluded.user_supplied`
	if _, err = s.dbs.ReadWrite.NamedExecContext(ctx, stmt, row); err != nil {
		return errors.Wrap(err, "upsert content item", slog.String("id", item.ID))
	}
	return nil
}

// Remove deletes the item by id. Removing a missing id is not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM content_items WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "delete content item", slog.String("id", id))
	}
	return nil
}

// All returns the merge of the bundled manifest and the durable store. The
// manifest is read fresh on every call; a missing or unreadable manifest is
// treated as empty. Local rows override manifest items on id collision.
// Callers must not depend on a particular ordering.
func (s *Store) All(ctx context.Context) ([]Item, error) {
	merged := map[string]Item{}
	for _, item := range s.bundledItems(ctx) {
		merged[item.ID] = item
	}

	var rows []itemRow
	if err := s.dbs.ReadOnly.SelectContext(ctx, &rows, `SELECT * FROM content_items`); err != nil {
		return nil, errors.Wrap(err, "select content items")
	}
	for _, row := range rows {
		item, err := row.toItem()
		if err != nil {
			return nil, err
		}
		merged[item.ID] = item
	}

	items := make([]Item, 0, len(merged))
	for _, item := range merged {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// bundledItems reads the optional read-only manifest shipped with the game.
func (s *Store) bundledItems(ctx context.Context) []Item {
	if s.manifestPath == "" {
		return nil
	}
	raw, err := os.ReadFile(s.manifestPath)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "bundled manifest not readable, treating as empty",
			slog.String("path", s.manifestPath), errors.SlogError(err))
		return nil
	}
	var manifest struct {
		Items []Item `json:"items"`
	}
	if err = json.Unmarshal(raw, &manifest); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "bundled manifest malformed, treating as empty",
			slog.String("path", s.manifestPath), errors.SlogError(err))
		return nil
	}
	return manifest.Items
}
