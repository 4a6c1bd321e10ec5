// Package pack holds the CLI commands for moving content packages in and out
// of the library database.
package pack

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/myrjola/spotfake/internal/clock"
	"github.com/myrjola/spotfake/internal/content"
	contentpack "github.com/myrjola/spotfake/internal/pack"
	"github.com/myrjola/spotfake/internal/sqlite"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "pack",
	Title: "Content packages",
}

func init() {
	Export.Flags().String("out", "./spotfake-library.zip", "path to the exported package")
	addLibraryFlags(Export)
	addLibraryFlags(Import)
}

func addLibraryFlags(cmd *cobra.Command) {
	cmd.Flags().String("sqlite-url", "./spotfake.sqlite", "SQLite URL")
	cmd.Flags().String("manifest", "./spotfake-library.json", "path to the bundled content manifest")
	cmd.Flags().String("media-dir", "./media", "directory holding media files")
}

// openLibrary builds the store and codec from the library flags. The caller
// must close the returned database.
func openLibrary(cmd *cobra.Command) (*sqlite.Database, *content.Store, *contentpack.Codec, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	sqliteURL, err := cmd.Flags().GetString("sqlite-url")
	if err != nil {
		return nil, nil, nil, err
	}
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return nil, nil, nil, err
	}
	mediaDir, err := cmd.Flags().GetString("media-dir")
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := sqlite.NewDatabase(cmd.Context(), sqliteURL, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	store := content.NewStore(db, manifestPath, logger)
	codec := contentpack.NewCodec(contentpack.NewFileResolver(mediaDir), clock.System(), logger)
	return db, store, codec, nil
}

var Export = &cobra.Command{
	Use:     "export",
	GroupID: "pack",
	Short:   "Export the content library",
	Long:    "Exports the whole content library, media included, as a shareable package file",
	Run: func(cmd *cobra.Command, _ []string) {
		db, store, codec, err := openLibrary(cmd)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Library error: %v\n", err)
			return
		}
		defer func() {
			_ = db.Close()
		}()

		ctx := cmd.Context()
		items, err := store.All(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Read library error: %v\n", err)
			return
		}

		archive, err := codec.Export(ctx, items)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Export error: %v\n", err)
			return
		}

		outPath, err := cmd.Flags().GetString("out")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid out flag: %v\n", err)
			return
		}
		if err = os.WriteFile(outPath, archive, 0o644); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
			return
		}

		fmt.Printf("Exported %d items to %s\n", len(items), outPath)
	},
}

var Import = &cobra.Command{
	Use:     "import [package file]",
	GroupID: "pack",
	Short:   "Import a content package",
	Long:    "Imports the items of a package file into the content library, skipping entries that cannot be read",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, store, codec, err := openLibrary(cmd)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Library error: %v\n", err)
			return
		}
		defer func() {
			_ = db.Close()
		}()

		archive, err := os.ReadFile(args[0])
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			return
		}

		count, err := codec.Import(cmd.Context(), archive, store)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Import error: %v\n", err)
			return
		}

		fmt.Printf("Imported %d items from %s\n", count, args[0])
	},
}
