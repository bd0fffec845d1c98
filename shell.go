package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"library-circulation/library"
)

func (a *app) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runShell(cmd.Context())
		},
	}
}

const shellHelp = `Available commands:
  Books: list books, search book, add book, remove book
  Members: register, list members
  Circulation: borrow, return, history, loans, summary
  System: help, exit`

// runShell reads commands until "exit" or end of input. Failed commands are
// reported and the loop continues.
func (a *app) runShell(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to the Library!")
	fmt.Fprintln(a.out, shellHelp)

	for {
		cmd, err := a.readLine("\n> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		var cmdErr error
		switch cmd {
		case "":
			continue
		case "list books":
			cmdErr = a.listBooks(ctx)
		case "search book":
			cmdErr = a.shellSearch(ctx)
		case "add book":
			cmdErr = a.shellAddBook(ctx)
		case "remove book":
			cmdErr = a.shellRemoveBook(ctx)
		case "register":
			cmdErr = a.shellRegister(ctx)
		case "list members":
			if cmdErr = a.authenticateAdmin(); cmdErr == nil {
				cmdErr = a.listMembers(ctx)
			}
		case "borrow":
			cmdErr = a.shellCirculation(ctx, a.borrow)
		case "return":
			cmdErr = a.shellCirculation(ctx, a.giveBack)
		case "history":
			cmdErr = a.shellHistory(ctx)
		case "loans":
			if cmdErr = a.authenticateAdmin(); cmdErr == nil {
				cmdErr = a.openLoans(ctx)
			}
		case "summary":
			if cmdErr = a.authenticateAdmin(); cmdErr == nil {
				cmdErr = a.summary(ctx)
			}
		case "help":
			fmt.Fprintln(a.out, shellHelp)
		case "exit":
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(a.out, "Unknown command. Type 'help' to see the available commands.")
		}

		if errors.Is(cmdErr, io.EOF) {
			return nil
		}
		if cmdErr != nil {
			fmt.Fprintf(a.out, "Error: %v\n", cmdErr)
		}
	}
}

func (a *app) shellSearch(ctx context.Context) error {
	query, err := a.readLine("Title: ")
	if err != nil {
		return err
	}
	return a.searchBooks(ctx, query)
}

func (a *app) shellAddBook(ctx context.Context) error {
	if err := a.authenticateAdmin(); err != nil {
		return err
	}
	title, err := a.readLine("Title: ")
	if err != nil {
		return err
	}
	category, err := a.readLine("Category: ")
	if err != nil {
		return err
	}
	return a.addBook(ctx, title, category)
}

func (a *app) shellRemoveBook(ctx context.Context) error {
	if err := a.authenticateAdmin(); err != nil {
		return err
	}
	bookID, err := a.readBookID()
	if err != nil {
		return err
	}
	return a.removeBook(ctx, bookID)
}

func (a *app) shellRegister(ctx context.Context) error {
	var m library.Member
	var err error
	if m.ID, err = a.readLine("Member ID (Enter to generate): "); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Name, err = a.readLine("Name: "); err != nil {
		return err
	}
	if m.Email, err = a.readLine("Email Address: "); err != nil {
		return err
	}
	if m.Phone, err = a.readLine("Phone Number: "); err != nil {
		return err
	}
	password, err := a.readNewPassword("Password: ")
	if err != nil {
		return err
	}
	return a.registerMember(ctx, m, password)
}

// shellCirculation collects the book and member, authenticates the member
// and runs op.
func (a *app) shellCirculation(ctx context.Context, op func(context.Context, string, int64) error) error {
	bookID, err := a.readBookID()
	if err != nil {
		return err
	}
	memberID, err := a.readLine("Member ID: ")
	if err != nil {
		return err
	}
	if err := a.authenticateMember(ctx, memberID); err != nil {
		return err
	}
	return op(ctx, memberID, bookID)
}

func (a *app) shellHistory(ctx context.Context) error {
	memberID, err := a.readLine("Member ID: ")
	if err != nil {
		return err
	}
	if err := a.authenticateMember(ctx, memberID); err != nil {
		return err
	}
	return a.history(ctx, memberID)
}

func (a *app) readBookID() (int64, error) {
	s, err := a.readLine("Book ID: ")
	if err != nil {
		return 0, err
	}
	return parseBookID(strings.TrimSpace(s))
}
