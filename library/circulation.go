package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Circulation owns the borrow record lifecycle. Borrow and Return each apply
// the record write and the availability flip in one transaction.
type Circulation struct {
	db      *Database
	catalog *Catalog
	policy  PenaltyPolicy
	now     func() time.Time
	logger  *slog.Logger
}

// CirculationOption configures a Circulation.
type CirculationOption func(*Circulation)

// WithClock replaces time.Now, which decides borrow and return dates.
func WithClock(now func() time.Time) CirculationOption {
	return func(c *Circulation) { c.now = now }
}

// WithPenaltyPolicy replaces DefaultPenaltyPolicy.
func WithPenaltyPolicy(p PenaltyPolicy) CirculationOption {
	return func(c *Circulation) { c.policy = p }
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) CirculationOption {
	return func(c *Circulation) { c.logger = l }
}

// NewCirculation returns an engine operating on catalog's books.
func NewCirculation(db *Database, catalog *Catalog, opts ...CirculationOption) *Circulation {
	c := &Circulation{
		db:      db,
		catalog: catalog,
		policy:  DefaultPenaltyPolicy,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the penalty policy in effect.
func (c *Circulation) Policy() PenaltyPolicy { return c.policy }

// Borrow opens a loan of bookID for memberID. The member id is not checked
// against the directory.
func (c *Circulation) Borrow(ctx context.Context, memberID string, bookID int64) (*BorrowRecord, error) {
	today := DateOf(c.now())

	var rec *BorrowRecord
	err := c.db.withTx(ctx, func(tx *sqlx.Tx) error {
		avail, err := c.catalog.availability(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if !avail {
			return fmt.Errorf("borrow book %d: %w", bookID, ErrBookUnavailable)
		}
		// Compare-and-set: a concurrent borrower that committed first leaves
		// zero rows to update.
		flipped, err := c.catalog.setAvailability(ctx, tx, bookID, false)
		if err != nil {
			return err
		}
		if !flipped {
			return fmt.Errorf("borrow book %d: %w", bookID, ErrBookUnavailable)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO borrow_records(member_id,book_id,borrow_date) VALUES(?,?,?)`, memberID, bookID, today)
		if err != nil {
			return fmt.Errorf("insert borrow record: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		rec = &BorrowRecord{ID: id, MemberID: memberID, BookID: bookID, BorrowDate: today}
		return nil
	})
	if err != nil {
		c.logger.Debug("borrow rejected",
			slog.String("member_id", memberID),
			slog.Int64("book_id", bookID),
			slog.String("error", err.Error()))
		return nil, err
	}

	c.logger.Info("book borrowed",
		slog.Int64("record_id", rec.ID),
		slog.String("member_id", memberID),
		slog.Int64("book_id", bookID),
		slog.String("borrow_date", today.String()))
	return rec, nil
}

// Return closes memberID's open loan of bookID and reports the late penalty.
// Every failure to match an open loan satisfies errors.Is(err, ErrNoOpenLoan);
// the message says which case applied.
func (c *Circulation) Return(ctx context.Context, memberID string, bookID int64) (*BorrowRecord, int64, error) {
	today := DateOf(c.now())

	var rec BorrowRecord
	err := c.db.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &rec,
			`SELECT id,member_id,book_id,borrow_date,return_date FROM borrow_records
             WHERE member_id=? AND book_id=? AND return_date IS NULL
             ORDER BY id LIMIT 1`, memberID, bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoOpenLoan
		}
		if err != nil {
			return fmt.Errorf("find open loan: %w", err)
		}

		// A clock that went backwards must not produce return < borrow.
		returned := today
		if returned.Before(rec.BorrowDate) {
			returned = rec.BorrowDate
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE borrow_records SET return_date=? WHERE id=? AND return_date IS NULL`, returned, rec.ID); err != nil {
			return fmt.Errorf("close borrow record %d: %w", rec.ID, err)
		}
		rec.ReturnDate = &returned

		flipped, err := c.catalog.setAvailability(ctx, tx, bookID, true)
		if err != nil {
			return err
		}
		if !flipped {
			c.logger.Warn("availability already set on return",
				slog.Int64("book_id", bookID),
				slog.Int64("record_id", rec.ID))
		}
		return nil
	})
	if errors.Is(err, ErrNoOpenLoan) {
		err = c.noOpenLoan(ctx, memberID, bookID)
	}
	if err != nil {
		c.logger.Debug("return rejected",
			slog.String("member_id", memberID),
			slog.Int64("book_id", bookID),
			slog.String("error", err.Error()))
		return nil, 0, err
	}

	days := rec.BorrowDate.DaysUntil(*rec.ReturnDate)
	penalty := c.policy.Penalty(days)
	c.logger.Info("book returned",
		slog.Int64("record_id", rec.ID),
		slog.String("member_id", memberID),
		slog.Int64("book_id", bookID),
		slog.Int("days_borrowed", days),
		slog.Int64("penalty", penalty))
	return &rec, penalty, nil
}

// noOpenLoan tells apart the three ways a return can miss.
func (c *Circulation) noOpenLoan(ctx context.Context, memberID string, bookID int64) error {
	var holder string
	err := c.db.db.GetContext(ctx, &holder,
		`SELECT member_id FROM borrow_records WHERE book_id=? AND return_date IS NULL LIMIT 1`, bookID)
	switch {
	case err == nil:
		return fmt.Errorf("return book %d for member %q: %w: on loan to another member", bookID, memberID, ErrNoOpenLoan)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("return book %d for member %q: %w", bookID, memberID, ErrNoOpenLoan)
	}

	var returned bool
	if err := c.db.db.GetContext(ctx, &returned,
		`SELECT EXISTS(SELECT 1 FROM borrow_records WHERE member_id=? AND book_id=?)`, memberID, bookID); err != nil {
		return fmt.Errorf("return book %d for member %q: %w", bookID, memberID, ErrNoOpenLoan)
	}
	if returned {
		return fmt.Errorf("return book %d for member %q: %w: already returned", bookID, memberID, ErrNoOpenLoan)
	}
	return fmt.Errorf("return book %d for member %q: %w: never borrowed", bookID, memberID, ErrNoOpenLoan)
}

// History lazily yields memberID's borrow records in creation order. Each
// range over the sequence runs a fresh query.
func (c *Circulation) History(ctx context.Context, memberID string) iter.Seq2[HistoryEntry, error] {
	return func(yield func(HistoryEntry, error) bool) {
		rows, err := c.db.db.QueryxContext(ctx, `
            SELECT br.id AS record_id, br.book_id, COALESCE(b.title,'') AS title,
                   b.id IS NULL AS book_removed, br.borrow_date, br.return_date
            FROM borrow_records br
            LEFT JOIN books b ON b.id = br.book_id
            WHERE br.member_id = ?
            ORDER BY br.id`, memberID)
		if err != nil {
			yield(HistoryEntry{}, fmt.Errorf("query history: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var h HistoryEntry
			if err := rows.StructScan(&h); err != nil {
				yield(HistoryEntry{}, fmt.Errorf("scan history: %w", err))
				return
			}
			if !yield(h, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(HistoryEntry{}, fmt.Errorf("iterate history: %w", err))
		}
	}
}

// Summary counts borrow records per registered member, members without loans
// included, busiest first. Ties keep registration order.
func (c *Circulation) Summary(ctx context.Context) ([]SummaryRow, error) {
	rows := []SummaryRow{}
	err := c.db.db.SelectContext(ctx, &rows, `
        SELECT m.id AS member_id, m.name AS member_name, COUNT(br.id) AS borrow_count
        FROM members m
        LEFT JOIN borrow_records br ON br.member_id = m.id
        GROUP BY m.id
        ORDER BY borrow_count DESC, m.rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("borrowing summary: %w", err)
	}
	return rows, nil
}

// OpenLoans returns every outstanding borrow record, oldest first.
func (c *Circulation) OpenLoans(ctx context.Context) ([]BorrowRecord, error) {
	loans := []BorrowRecord{}
	err := c.db.db.SelectContext(ctx, &loans,
		`SELECT id,member_id,book_id,borrow_date,return_date FROM borrow_records WHERE return_date IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("open loans: %w", err)
	}
	return loans, nil
}
