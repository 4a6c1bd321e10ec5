// Package library holds the CLI commands for inspecting and pruning the
// content library.
package library

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/myrjola/spotfake/internal/content"
	"github.com/myrjola/spotfake/internal/sqlite"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "library",
	Title: "Content library",
}

func init() {
	addLibraryFlags(List)
	addLibraryFlags(Remove)
}

func addLibraryFlags(cmd *cobra.Command) {
	cmd.Flags().String("sqlite-url", "./spotfake.sqlite", "SQLite URL")
	cmd.Flags().String("manifest", "./spotfake-library.json", "path to the bundled content manifest")
}

func openStore(cmd *cobra.Command) (*sqlite.Database, *content.Store, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	sqliteURL, err := cmd.Flags().GetString("sqlite-url")
	if err != nil {
		return nil, nil, err
	}
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlite.NewDatabase(cmd.Context(), sqliteURL, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, content.NewStore(db, manifestPath, logger), nil
}

var List = &cobra.Command{
	Use:     "list",
	GroupID: "library",
	Short:   "List content items",
	Long:    "Lists every item of the content library, bundled manifest items included",
	Run: func(cmd *cobra.Command, _ []string) {
		db, store, err := openStore(cmd)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Library error: %v\n", err)
			return
		}
		defer func() {
			_ = db.Close()
		}()

		items, err := store.All(cmd.Context())
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Read library error: %v\n", err)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tKIND\tAUTHENTIC\tSOURCE\tTITLE")
		for _, item := range items {
			source := "bundled"
			if item.UserSupplied {
				source = "user"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", item.ID, item.Kind, item.Authentic, source, item.Title)
		}
		_ = w.Flush()
	},
}

var Remove = &cobra.Command{
	Use:     "remove [item id]",
	GroupID: "library",
	Short:   "Remove a content item",
	Long:    "Removes an item from the library database. Bundled manifest items reappear unless the manifest is edited too.",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, store, err := openStore(cmd)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Library error: %v\n", err)
			return
		}
		defer func() {
			_ = db.Close()
		}()

		if err = store.Remove(cmd.Context(), args[0]); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Remove error: %v\n", err)
			return
		}

		fmt.Printf("Removed %s\n", args[0])
	},
}
