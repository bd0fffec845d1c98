package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"library-circulation/library"
)

// readLine prints prompt and returns the next trimmed input line.
func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(a.in.Text()), nil
}

// readPassword reads a password with masking when stdin is a terminal and
// falls back to a plain line otherwise.
func (a *app) readPassword(prompt string) (string, error) {
	if a.tty == nil || !term.IsTerminal(int(a.tty.Fd())) {
		return a.readLine(prompt)
	}
	fd := int(a.tty.Fd())
	fmt.Fprint(a.out, prompt)
	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	fmt.Fprintln(a.out) // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// readNewPassword asks twice and rejects a mismatch.
func (a *app) readNewPassword(prompt string) (string, error) {
	password, err := a.readPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	again, err := a.readPassword("Re-type password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password != again {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

// authenticateMember prompts for and verifies member credentials when auth is
// enabled.
func (a *app) authenticateMember(ctx context.Context, memberID string) error {
	if !a.cfg.Auth.Enabled() {
		return nil
	}
	password, err := a.readPassword("Enter your password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := a.mgr.AuthenticateMember(ctx, memberID, password); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	return nil
}

// authenticateAdmin checks the admin password against the configured hash.
func (a *app) authenticateAdmin() error {
	if !a.cfg.Auth.Enabled() {
		return nil
	}
	password, err := a.readPassword("Enter admin password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if !library.CheckPassword(password, a.cfg.Auth.AdminPasswordHash) {
		return errors.New("invalid admin password")
	}
	return nil
}
