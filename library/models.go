package library

// Book is one physical copy in the catalog. Available is false while an open
// borrow record references it.
type Book struct {
	ID        int64  `db:"id" json:"id"`
	Title     string `db:"title" json:"title"`
	Category  string `db:"category" json:"category"`
	Available bool   `db:"available" json:"available"`
}

// Member is a registered library member. The credential never leaves the
// directory.
type Member struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	Email          string `db:"email" json:"email"`
	Phone          string `db:"phone" json:"phone"`
	DateRegistered Date   `db:"date_registered" json:"date_registered"`
	PasswordHash   string `db:"password_hash" json:"-"` // Don't serialize password hash
}

// BorrowRecord is one loan. A nil ReturnDate means the loan is still open.
type BorrowRecord struct {
	ID         int64  `db:"id" json:"id"`
	MemberID   string `db:"member_id" json:"member_id"`
	BookID     int64  `db:"book_id" json:"book_id"`
	BorrowDate Date   `db:"borrow_date" json:"borrow_date"`
	ReturnDate *Date  `db:"return_date" json:"return_date,omitempty"`
}

// Open reports whether the loan is outstanding.
func (r *BorrowRecord) Open() bool { return r.ReturnDate == nil }

// Loan statuses reported by History.
const (
	StatusReturned    = "Returned"
	StatusNotReturned = "Not Returned"
)

// HistoryEntry is one line of a member's borrowing history.
type HistoryEntry struct {
	RecordID    int64  `db:"record_id" json:"record_id"`
	BookID      int64  `db:"book_id" json:"book_id"`
	Title       string `db:"title" json:"title"`
	BookRemoved bool   `db:"book_removed" json:"book_removed"`
	BorrowDate  Date   `db:"borrow_date" json:"borrow_date"`
	ReturnDate  *Date  `db:"return_date" json:"return_date,omitempty"`
}

// Status is "Returned" once the loan is closed and "Not Returned" otherwise.
func (h HistoryEntry) Status() string {
	if h.ReturnDate != nil {
		return StatusReturned
	}
	return StatusNotReturned
}

// SummaryRow counts every borrow record a member has ever created.
type SummaryRow struct {
	MemberID    string `db:"member_id" json:"member_id"`
	MemberName  string `db:"member_name" json:"member_name"`
	BorrowCount int    `db:"borrow_count" json:"borrow_count"`
}
