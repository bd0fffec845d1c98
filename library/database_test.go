package library

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

func tempDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeClock is a settable time source for circulation tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(year int, month time.Month, day int) *fakeClock {
	return &fakeClock{now: time.Date(year, month, day, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lib.db")
	ctx := context.Background()

	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id, err := NewCatalog(db).AddBook(ctx, "Noli Me Tangere", "Fiction")
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = NewDatabase(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var version int
	if err := db.db.Get(&version, `SELECT value FROM meta WHERE key='schema_version'`); err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != schemaVersion {
		t.Fatalf("schema version = %d, want %d", version, schemaVersion)
	}

	b, err := NewCatalog(db).GetBook(ctx, id)
	if err != nil {
		t.Fatalf("get book after reopen: %v", err)
	}
	if b.Title != "Noli Me Tangere" || !b.Available {
		t.Fatalf("unexpected book after reopen: %+v", b)
	}
}

func TestReturnDateBeforeBorrowDateRejected(t *testing.T) {
	db := tempDB(t)
	_, err := db.db.Exec(`INSERT INTO borrow_records(member_id,book_id,borrow_date,return_date) VALUES('M1',1,'2024-05-10','2024-05-09')`)
	if err == nil {
		t.Fatalf("expected check constraint to reject return before borrow")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	sentinel := ErrBookUnavailable
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO books(title,category) VALUES('Ghost','None')`); err != nil {
			return err
		}
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("withTx err = %v, want %v", err, sentinel)
	}

	books, err := NewCatalog(db).ListBooks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("insert should have been rolled back, found %d books", len(books))
	}
}
