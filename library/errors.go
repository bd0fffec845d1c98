package library

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by this package for a rejected
// operation wraps exactly one of them.
var (
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrIntegrityViolation = errors.New("integrity violation")
)

var (
	// ErrBookNotFound is returned when the book id is not in the catalog.
	ErrBookNotFound = fmt.Errorf("book %w", ErrNotFound)

	// ErrMemberNotFound is returned by the directory for unknown member ids.
	ErrMemberNotFound = fmt.Errorf("member %w", ErrNotFound)

	// ErrBookUnavailable is returned when borrowing a book that is already out.
	ErrBookUnavailable = fmt.Errorf("%w: book is currently unavailable", ErrPreconditionFailed)

	// ErrNoOpenLoan is returned when a return does not match an open loan
	// for the same member and book.
	ErrNoOpenLoan = fmt.Errorf("%w: no open loan", ErrPreconditionFailed)

	// ErrBookOnLoan is returned when removing a book that is still borrowed.
	ErrBookOnLoan = fmt.Errorf("%w: book is on loan", ErrPreconditionFailed)

	// ErrDuplicateMember is returned when registering an id that already exists.
	ErrDuplicateMember = fmt.Errorf("%w: member id already exists", ErrIntegrityViolation)
)
