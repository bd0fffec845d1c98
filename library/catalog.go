package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Catalog stores books and their availability flag.
type Catalog struct {
	db *Database
}

// NewCatalog returns the catalog backed by db.
func NewCatalog(db *Database) *Catalog {
	return &Catalog{db: db}
}

// AddBook inserts an available book and returns its id.
func (c *Catalog) AddBook(ctx context.Context, title, category string) (int64, error) {
	res, err := c.db.addBookStmt.ExecContext(ctx, title, category)
	if err != nil {
		return 0, fmt.Errorf("add book: %w", err)
	}
	return res.LastInsertId()
}

// RemoveBook deletes the book. Removing an unknown id is a no-op; removing a
// book with an open loan fails with ErrBookOnLoan. Closed borrow records keep
// pointing at the removed id.
func (c *Catalog) RemoveBook(ctx context.Context, id int64) error {
	return c.db.withTx(ctx, func(tx *sqlx.Tx) error {
		var onLoan bool
		if err := tx.GetContext(ctx, &onLoan,
			`SELECT EXISTS(SELECT 1 FROM borrow_records WHERE book_id=? AND return_date IS NULL)`, id); err != nil {
			return fmt.Errorf("check open loans: %w", err)
		}
		if onLoan {
			return fmt.Errorf("remove book %d: %w", id, ErrBookOnLoan)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id=?`, id); err != nil {
			return fmt.Errorf("remove book %d: %w", id, err)
		}
		return nil
	})
}

// GetBook fetches a single book.
func (c *Catalog) GetBook(ctx context.Context, id int64) (*Book, error) {
	var b Book
	err := c.db.db.GetContext(ctx, &b, `SELECT id,title,category,available FROM books WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %d: %w", id, ErrBookNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &b, nil
}

// ListBooks returns every book in storage order.
func (c *Catalog) ListBooks(ctx context.Context) ([]Book, error) {
	books := []Book{}
	if err := c.db.db.SelectContext(ctx, &books, `SELECT id,title,category,available FROM books ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// SearchByTitle returns books whose title contains substr, ignoring ASCII
// case, in storage order.
func (c *Catalog) SearchByTitle(ctx context.Context, substr string) ([]Book, error) {
	pattern := "%" + likeEscaper.Replace(substr) + "%"
	books := []Book{}
	if err := c.db.db.SelectContext(ctx, &books,
		`SELECT id,title,category,available FROM books WHERE title LIKE ? ESCAPE '\' ORDER BY id`, pattern); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Availability reports whether the book is on the shelf.
func (c *Catalog) Availability(ctx context.Context, id int64) (bool, error) {
	return c.availability(ctx, c.db.db, id)
}

func (c *Catalog) availability(ctx context.Context, q sqlx.QueryerContext, id int64) (bool, error) {
	var avail bool
	err := sqlx.GetContext(ctx, q, &avail, `SELECT available FROM books WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("book %d: %w", id, ErrBookNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("get availability %d: %w", id, err)
	}
	return avail, nil
}

// setAvailability flips the flag from !value to value and reports whether the
// row was in the expected state. Only circulation calls it, inside its own
// transaction.
func (c *Catalog) setAvailability(ctx context.Context, x sqlx.ExecerContext, id int64, value bool) (bool, error) {
	res, err := x.ExecContext(ctx, `UPDATE books SET available=? WHERE id=? AND available=?`, value, id, !value)
	if err != nil {
		return false, fmt.Errorf("set availability %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
