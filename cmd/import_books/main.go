package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"library-circulation/library"
)

// catalogEntry is one book in the import file.
type catalogEntry struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
}

func main() {
	var dbPath string
	var fresh bool
	cmd := &cobra.Command{
		Use:           "import_books CATALOG.yaml",
		Short:         "Load books from a YAML catalog file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fresh {
				removeDatabase(cmd.OutOrStdout(), dbPath)
			}
			entries, err := loadCatalog(args[0])
			if err != nil {
				return err
			}
			return importBooks(cmd.Context(), cmd.OutOrStdout(), dbPath, entries)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "library.db", "SQLite database path")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "delete the existing database before importing")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func removeDatabase(out io.Writer, dbPath string) {
	fmt.Fprintln(out, "Cleaning up existing database files...")
	for _, file := range []string{dbPath, dbPath + "-shm", dbPath + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(out, "Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Fprintln(out, "Database cleanup complete.")
}

func loadCatalog(path string) ([]catalogEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var entries []catalogEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return entries, nil
}

// importBooks adds every entry and keeps going past individual failures.
// It reports an error only when the database cannot be used at all.
func importBooks(ctx context.Context, out io.Writer, dbPath string, entries []catalogEntry) error {
	manager, err := library.NewLibraryManager(dbPath)
	if err != nil {
		return fmt.Errorf("error creating database: %w", err)
	}
	defer manager.Close()

	fmt.Fprintf(out, "Importing %d books into %s...\n", len(entries), dbPath)

	successCount := 0
	errorCount := 0
	for i, e := range entries {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			fmt.Fprintf(out, "Entry %d: ERROR - missing title\n", i+1)
			errorCount++
			continue
		}

		fmt.Fprintf(out, "Importing: %s (%s)... ", title, e.Category)
		bookID, err := manager.AddBook(ctx, title, e.Category)
		if err != nil {
			fmt.Fprintf(out, "ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Fprintf(out, "SUCCESS (ID: %d)\n", bookID)
		successCount++
	}

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d books\n", successCount)
	fmt.Fprintf(out, "Errors: %d\n", errorCount)

	if successCount == 0 {
		if errorCount > 0 {
			return errors.New("no books imported")
		}
		return nil
	}

	books, err := manager.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("error retrieving books: %w", err)
	}
	fmt.Fprintln(out, "\nCatalog:")
	fmt.Fprintf(out, "%-5s %-30s %-20s %-10s\n", "ID", "Title", "Category", "Status")
	fmt.Fprintln(out, strings.Repeat("-", 68))
	for _, b := range books {
		fmt.Fprintln(out, library.PrettyBook(b))
	}
	return nil
}
