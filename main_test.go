package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-circulation/library"
)

type cliHarness struct {
	dbPath     string
	configPath string
}

func newCLIHarness(t *testing.T) *cliHarness {
	dir := t.TempDir()
	return &cliHarness{
		dbPath:     filepath.Join(dir, "library.db"),
		configPath: filepath.Join(dir, "absent.yaml"),
	}
}

// run executes one CLI invocation with the given stdin and returns stdout.
func (h *cliHarness) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{
		in:  bufio.NewScanner(strings.NewReader(input)),
		out: &out,
	}
	t.Cleanup(func() { _ = a.close() })

	root := a.rootCommand()
	root.SetArgs(append([]string{"--config", h.configPath, "--db", h.dbPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLICirculation(t *testing.T) {
	h := newCLIHarness(t)

	out, err := h.run(t, "", "book", "add", "--title", "Noli Me Tangere", "--category", "Fiction")
	require.NoError(t, err)
	assert.Contains(t, out, "added with ID 1")

	out, err = h.run(t, "pw\npw\n", "member", "register", "--id", "M1", "--name", "Crisostomo")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created for 'Crisostomo' with ID M1")

	out, err = h.run(t, "", "borrow", "1", "--member", "M1")
	require.NoError(t, err)
	assert.Contains(t, out, "Book 1 borrowed")

	_, err = h.run(t, "", "borrow", "1", "--member", "M2")
	require.ErrorIs(t, err, library.ErrBookUnavailable)

	out, err = h.run(t, "", "book", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Borrowed")

	out, err = h.run(t, "", "loans")
	require.NoError(t, err)
	assert.Contains(t, out, "M1")

	out, err = h.run(t, "", "return", "1", "--member", "M1")
	require.NoError(t, err)
	assert.Contains(t, out, "Penalty: 0")

	_, err = h.run(t, "", "return", "1", "--member", "M1")
	require.ErrorIs(t, err, library.ErrNoOpenLoan)

	out, err = h.run(t, "", "history", "--member", "M1")
	require.NoError(t, err)
	assert.Contains(t, out, "Title: Noli Me Tangere")
	assert.Contains(t, out, "(Returned)")

	out, err = h.run(t, "", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Crisostomo, Books Borrowed: 1")

	out, err = h.run(t, "", "book", "search", "noli")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 book(s)")

	_, err = h.run(t, "", "book", "remove", "1")
	require.NoError(t, err)
}

func TestCLIRejectsBadInput(t *testing.T) {
	h := newCLIHarness(t)

	_, err := h.run(t, "", "borrow", "abc", "--member", "M1")
	assert.ErrorContains(t, err, "invalid book ID")

	_, err = h.run(t, "pw\nother\n", "member", "register", "--id", "M1", "--name", "Ibarra")
	assert.ErrorContains(t, err, "passwords do not match")

	_, err = h.run(t, "", "borrow", "7", "--member", "M1")
	assert.ErrorIs(t, err, library.ErrBookNotFound)
}

func TestCLIPasswordAuth(t *testing.T) {
	h := newCLIHarness(t)
	hash, err := library.HashPassword("admin123")
	require.NoError(t, err)
	h.configPath = filepath.Join(t.TempDir(), "library.yaml")
	// Config files are env-expanded, so a literal bcrypt hash would lose its
	// "$2a$..." segments.
	t.Setenv("LIBRARY_ADMIN_PASSWORD_HASH", hash)
	cfg := "auth:\n  mode: password\n  admin_password_hash: ${LIBRARY_ADMIN_PASSWORD_HASH}\n"
	require.NoError(t, os.WriteFile(h.configPath, []byte(cfg), 0o644))

	_, err = h.run(t, "wrong\n", "book", "add", "--title", "Locked")
	assert.ErrorContains(t, err, "invalid admin password")

	_, err = h.run(t, "admin123\n", "book", "add", "--title", "Open")
	require.NoError(t, err)

	_, err = h.run(t, "s3cret\ns3cret\n", "member", "register", "--id", "M1", "--name", "Elias")
	require.NoError(t, err)

	_, err = h.run(t, "nope\n", "borrow", "1", "--member", "M1")
	assert.ErrorContains(t, err, "authentication failed")

	out, err := h.run(t, "s3cret\n", "borrow", "1", "--member", "M1")
	require.NoError(t, err)
	assert.Contains(t, out, "borrowed")
}

func TestShellSession(t *testing.T) {
	h := newCLIHarness(t)
	script := strings.Join([]string{
		"add book", "Florante at Laura", "Poetry",
		"register", "M1", "Francisco", "kiko@example.com", "0917", "pw", "pw",
		"borrow", "1", "M1",
		"borrow", "1", "M2",
		"return", "1", "M2",
		"return", "1", "M1",
		"history", "M1",
		"dance",
		"exit",
	}, "\n") + "\n"

	out, err := h.run(t, script, "shell")
	require.NoError(t, err)

	assert.Contains(t, out, "Book 'Florante at Laura' added with ID 1")
	assert.Contains(t, out, "Account created for 'Francisco' with ID M1")
	assert.Contains(t, out, "Book 1 borrowed")
	assert.Contains(t, out, "book is currently unavailable")
	assert.Contains(t, out, "on loan to another member")
	assert.Contains(t, out, "Penalty: 0")
	assert.Contains(t, out, "(Returned)")
	assert.Contains(t, out, "Unknown command")
	assert.Contains(t, out, "Goodbye!")
}

func TestShellStopsAtEndOfInput(t *testing.T) {
	h := newCLIHarness(t)
	out, err := h.run(t, "list books\n", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "No books in library.")
}
