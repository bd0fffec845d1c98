package library

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

// LibraryManager is a thin façade over the catalog, circulation engine and
// member directory sharing one Database, keeping CLI code simple.
type LibraryManager struct {
	db          *Database
	catalog     *Catalog
	circulation *Circulation
	directory   *Directory
}

// NewLibraryManager opens (or creates) the SQLite database at dbPath.
func NewLibraryManager(dbPath string, opts ...CirculationOption) (*LibraryManager, error) {
	db, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	catalog := NewCatalog(db)
	circulation := NewCirculation(db, catalog, opts...)
	directory := NewDirectory(db)
	directory.now = circulation.now
	return &LibraryManager{
		db:          db,
		catalog:     catalog,
		circulation: circulation,
		directory:   directory,
	}, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

func (lm *LibraryManager) Catalog() *Catalog         { return lm.catalog }
func (lm *LibraryManager) Circulation() *Circulation { return lm.circulation }
func (lm *LibraryManager) Directory() *Directory     { return lm.directory }

// ------------------ Book helpers ------------------

func (lm *LibraryManager) AddBook(ctx context.Context, title, category string) (int64, error) {
	id, err := lm.catalog.AddBook(ctx, title, category)
	if err != nil {
		return 0, err
	}
	lm.circulation.logger.Info("book added", slog.Int64("book_id", id), slog.String("title", title))
	return id, nil
}

func (lm *LibraryManager) RemoveBook(ctx context.Context, id int64) error {
	if err := lm.catalog.RemoveBook(ctx, id); err != nil {
		return err
	}
	lm.circulation.logger.Info("book removed", slog.Int64("book_id", id))
	return nil
}

func (lm *LibraryManager) GetBook(ctx context.Context, id int64) (*Book, error) {
	return lm.catalog.GetBook(ctx, id)
}

func (lm *LibraryManager) ListBooks(ctx context.Context) ([]Book, error) {
	return lm.catalog.ListBooks(ctx)
}

func (lm *LibraryManager) SearchBooks(ctx context.Context, q string) ([]Book, error) {
	return lm.catalog.SearchByTitle(ctx, q)
}

// ------------------ Member helpers ------------------

func (lm *LibraryManager) RegisterMember(ctx context.Context, m Member, password string) error {
	if err := lm.directory.Register(ctx, m, password); err != nil {
		return err
	}
	lm.circulation.logger.Info("member registered", slog.String("member_id", m.ID))
	return nil
}

func (lm *LibraryManager) GetMember(ctx context.Context, id string) (*Member, error) {
	return lm.directory.Get(ctx, id)
}

func (lm *LibraryManager) ListMembers(ctx context.Context) ([]Member, error) {
	return lm.directory.List(ctx)
}

// AuthenticateMember fails unless password matches the member's credential.
func (lm *LibraryManager) AuthenticateMember(ctx context.Context, id, password string) error {
	ok, err := lm.directory.Verify(ctx, id, password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("invalid credentials for member %q", id)
	}
	return nil
}

func (lm *LibraryManager) ResetMemberPassword(ctx context.Context, id, password string) error {
	return lm.directory.ResetPassword(ctx, id, password)
}

// ------------------ Circulation ------------------

func (lm *LibraryManager) BorrowBook(ctx context.Context, memberID string, bookID int64) (*BorrowRecord, error) {
	return lm.circulation.Borrow(ctx, memberID, bookID)
}

// ReturnBook closes the loan and yields the late penalty.
func (lm *LibraryManager) ReturnBook(ctx context.Context, memberID string, bookID int64) (*BorrowRecord, int64, error) {
	return lm.circulation.Return(ctx, memberID, bookID)
}

func (lm *LibraryManager) History(ctx context.Context, memberID string) iter.Seq2[HistoryEntry, error] {
	return lm.circulation.History(ctx, memberID)
}

func (lm *LibraryManager) Summary(ctx context.Context) ([]SummaryRow, error) {
	return lm.circulation.Summary(ctx)
}

func (lm *LibraryManager) OpenLoans(ctx context.Context) ([]BorrowRecord, error) {
	return lm.circulation.OpenLoans(ctx)
}

// Today is the current calendar day according to the engine's clock.
func (lm *LibraryManager) Today() Date { return DateOf(lm.circulation.now()) }

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b Book) string {
	return fmt.Sprintf("%-5d %-30s %-20s %-10s", b.ID, truncate(b.Title, 30), truncate(b.Category, 20), BookStatus(b))
}

// BookStatus is "Available" or "Borrowed".
func BookStatus(b Book) string {
	if b.Available {
		return "Available"
	}
	return "Borrowed"
}

// DueDate is the last day a loan opened on borrowed can be returned without penalty.
func (lm *LibraryManager) DueDate(borrowed Date) Date {
	return borrowed.AddDays(lm.circulation.policy.GraceDays)
}

func truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
