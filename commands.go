package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"library-circulation/library"
)

// ------------------ Books ------------------

func (a *app) bookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage the catalog",
	}

	var title, category string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authenticateAdmin(); err != nil {
				return err
			}
			return a.addBook(cmd.Context(), title, category)
		},
	}
	add.Flags().StringVar(&title, "title", "", "book title")
	add.Flags().StringVar(&category, "category", "", "book category")
	_ = add.MarkFlagRequired("title")

	remove := &cobra.Command{
		Use:   "remove BOOK_ID",
		Short: "Remove a book that is not on loan (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			if err := a.authenticateAdmin(); err != nil {
				return err
			}
			return a.removeBook(cmd.Context(), bookID)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.listBooks(cmd.Context())
		},
	}

	search := &cobra.Command{
		Use:   "search TITLE",
		Short: "Search books by title substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.searchBooks(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(add, remove, list, search)
	return cmd
}

func (a *app) addBook(ctx context.Context, title, category string) error {
	id, err := a.mgr.AddBook(ctx, title, category)
	if err != nil {
		return fmt.Errorf("adding book: %w", err)
	}
	fmt.Fprintf(a.out, "Book '%s' added with ID %d\n", title, id)
	return nil
}

func (a *app) removeBook(ctx context.Context, bookID int64) error {
	if err := a.mgr.RemoveBook(ctx, bookID); err != nil {
		return fmt.Errorf("removing book: %w", err)
	}
	fmt.Fprintf(a.out, "Book %d removed\n", bookID)
	return nil
}

func (a *app) listBooks(ctx context.Context) error {
	books, err := a.mgr.ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintln(a.out, "No books in library.")
		return nil
	}
	a.printBooks(books)
	return nil
}

func (a *app) searchBooks(ctx context.Context, query string) error {
	books, err := a.mgr.SearchBooks(ctx, query)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintf(a.out, "No books found matching '%s'.\n", query)
		return nil
	}
	fmt.Fprintf(a.out, "Found %d book(s) matching '%s':\n", len(books), query)
	a.printBooks(books)
	return nil
}

func (a *app) printBooks(books []library.Book) {
	fmt.Fprintf(a.out, "%-5s %-30s %-20s %-10s\n", "ID", "Title", "Category", "Status")
	fmt.Fprintln(a.out, strings.Repeat("-", 68))
	for _, b := range books {
		fmt.Fprintln(a.out, library.PrettyBook(b))
	}
}

// ------------------ Members ------------------

func (a *app) memberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage library members",
	}

	var m library.Member
	register := &cobra.Command{
		Use:   "register",
		Short: "Register a new member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			password, err := a.readNewPassword(fmt.Sprintf("Enter password for %s: ", m.Name))
			if err != nil {
				return err
			}
			return a.registerMember(cmd.Context(), m, password)
		},
	}
	register.Flags().StringVar(&m.ID, "id", "", "member id (generated when omitted)")
	register.Flags().StringVar(&m.Name, "name", "", "full name")
	register.Flags().StringVar(&m.Email, "email", "", "email address")
	register.Flags().StringVar(&m.Phone, "phone", "", "phone number")
	_ = register.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered members (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authenticateAdmin(); err != nil {
				return err
			}
			return a.listMembers(cmd.Context())
		},
	}

	reset := &cobra.Command{
		Use:   "reset-password MEMBER_ID",
		Short: "Set a new password for a member (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.authenticateAdmin(); err != nil {
				return err
			}
			member, err := a.mgr.GetMember(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			password, err := a.readNewPassword(fmt.Sprintf("Enter new password for %s (ID: %s): ", member.Name, member.ID))
			if err != nil {
				return err
			}
			if err := a.mgr.ResetMemberPassword(cmd.Context(), member.ID, password); err != nil {
				return fmt.Errorf("resetting password: %w", err)
			}
			fmt.Fprintf(a.out, "Password successfully reset for %s (ID: %s)\n", member.Name, member.ID)
			return nil
		},
	}

	cmd.AddCommand(register, list, reset)
	return cmd
}

func (a *app) registerMember(ctx context.Context, m library.Member, password string) error {
	if err := a.mgr.RegisterMember(ctx, m, password); err != nil {
		return fmt.Errorf("registering member: %w", err)
	}
	fmt.Fprintf(a.out, "Account created for '%s' with ID %s\n", m.Name, m.ID)
	return nil
}

func (a *app) listMembers(ctx context.Context) error {
	members, err := a.mgr.ListMembers(ctx)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		fmt.Fprintln(a.out, "No members registered.")
		return nil
	}
	fmt.Fprintf(a.out, "%-36s %-25s %-30s %-15s %s\n", "ID", "Name", "Email", "Phone", "Registered")
	fmt.Fprintln(a.out, strings.Repeat("-", 120))
	for _, m := range members {
		fmt.Fprintf(a.out, "%-36s %-25s %-30s %-15s %s\n", m.ID, m.Name, m.Email, m.Phone, m.DateRegistered)
	}
	return nil
}

// ------------------ Circulation ------------------

func (a *app) borrowCommand() *cobra.Command {
	var memberID string
	cmd := &cobra.Command{
		Use:   "borrow BOOK_ID",
		Short: "Borrow a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			if err := a.authenticateMember(cmd.Context(), memberID); err != nil {
				return err
			}
			return a.borrow(cmd.Context(), memberID, bookID)
		},
	}
	cmd.Flags().StringVarP(&memberID, "member", "m", "", "member id")
	_ = cmd.MarkFlagRequired("member")
	return cmd
}

func (a *app) returnCommand() *cobra.Command {
	var memberID string
	cmd := &cobra.Command{
		Use:   "return BOOK_ID",
		Short: "Return a borrowed book and show any late penalty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			if err := a.authenticateMember(cmd.Context(), memberID); err != nil {
				return err
			}
			return a.giveBack(cmd.Context(), memberID, bookID)
		},
	}
	cmd.Flags().StringVarP(&memberID, "member", "m", "", "member id")
	_ = cmd.MarkFlagRequired("member")
	return cmd
}

func (a *app) historyCommand() *cobra.Command {
	var memberID string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a member's borrowing history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authenticateMember(cmd.Context(), memberID); err != nil {
				return err
			}
			return a.history(cmd.Context(), memberID)
		},
	}
	cmd.Flags().StringVarP(&memberID, "member", "m", "", "member id")
	_ = cmd.MarkFlagRequired("member")
	return cmd
}

func (a *app) summaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Borrow counts per member (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authenticateAdmin(); err != nil {
				return err
			}
			return a.summary(cmd.Context())
		},
	}
}

func (a *app) loansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "loans",
		Short: "List outstanding loans with due dates (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authenticateAdmin(); err != nil {
				return err
			}
			return a.openLoans(cmd.Context())
		},
	}
}

func (a *app) borrow(ctx context.Context, memberID string, bookID int64) error {
	rec, err := a.mgr.BorrowBook(ctx, memberID, bookID)
	if err != nil {
		return fmt.Errorf("borrowing book: %w", err)
	}
	fmt.Fprintf(a.out, "Book %d borrowed on %s. Return by %s to avoid a penalty.\n",
		bookID, rec.BorrowDate, a.mgr.DueDate(rec.BorrowDate))
	return nil
}

func (a *app) giveBack(ctx context.Context, memberID string, bookID int64) error {
	rec, penalty, err := a.mgr.ReturnBook(ctx, memberID, bookID)
	if err != nil {
		return fmt.Errorf("returning book: %w", err)
	}
	fmt.Fprintf(a.out, "Book %d returned on %s (borrowed %s). Penalty: %d\n",
		bookID, rec.ReturnDate, rec.BorrowDate, penalty)
	return nil
}

func (a *app) history(ctx context.Context, memberID string) error {
	fmt.Fprintln(a.out, "--- Borrowing History ---")
	n := 0
	for h, err := range a.mgr.History(ctx, memberID) {
		if err != nil {
			return err
		}
		title := h.Title
		if h.BookRemoved {
			title = fmt.Sprintf("(removed book %d)", h.BookID)
		}
		returned := "Pending"
		if h.ReturnDate != nil {
			returned = h.ReturnDate.String()
		}
		fmt.Fprintf(a.out, "Title: %s, Borrowed: %s, Returned: %s (%s)\n", title, h.BorrowDate, returned, h.Status())
		n++
	}
	if n == 0 {
		fmt.Fprintln(a.out, "No borrowing records.")
	}
	return nil
}

func (a *app) summary(ctx context.Context) error {
	rows, err := a.mgr.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "--- Borrowing Summary ---")
	for _, r := range rows {
		fmt.Fprintf(a.out, "Name: %s, Books Borrowed: %d\n", r.MemberName, r.BorrowCount)
	}
	return nil
}

func (a *app) openLoans(ctx context.Context) error {
	loans, err := a.mgr.OpenLoans(ctx)
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		fmt.Fprintln(a.out, "No books are out.")
		return nil
	}
	today := a.mgr.Today()
	fmt.Fprintf(a.out, "%-8s %-36s %-8s %-12s %-12s %s\n", "Record", "Member", "Book", "Borrowed", "Due", "Penalty so far")
	fmt.Fprintln(a.out, strings.Repeat("-", 100))
	policy := a.mgr.Circulation().Policy()
	for _, l := range loans {
		fmt.Fprintf(a.out, "%-8d %-36s %-8d %-12s %-12s %d\n",
			l.ID, l.MemberID, l.BookID, l.BorrowDate, a.mgr.DueDate(l.BorrowDate),
			policy.Penalty(l.BorrowDate.DaysUntil(today)))
	}
	return nil
}

// ------------------ Utilities ------------------

func (a *app) hashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for auth.admin_password_hash",
		Args:  cobra.NoArgs,
		// Does not touch the database.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := a.readNewPassword("Password: ")
			if err != nil {
				return err
			}
			hash, err := library.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, hash)
			return nil
		},
	}
}

func parseBookID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid book ID: %s", s)
	}
	return id, nil
}
