// Package file persists the ledger collections as JSON documents on
// disk, one file per collection. A missing or blank file reads as an
// empty collection.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledgerbook/backend/internal/domain/ledger"
)

const (
	borrowersFile = "borrowers.json"
	loansFile     = "loans.json"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Store struct {
	dir string
}

// NewStore creates the data directory if needed and returns a store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) LoadBorrowers(_ context.Context) ([]ledger.Borrower, error) {
	var borrowers []ledger.Borrower
	if err := s.readJSON(borrowersFile, &borrowers); err != nil {
		return nil, err
	}
	if borrowers == nil {
		borrowers = []ledger.Borrower{}
	}
	return borrowers, nil
}

func (s *Store) SaveBorrowers(_ context.Context, borrowers []ledger.Borrower) error {
	return s.writeJSON(borrowersFile, borrowers)
}

func (s *Store) LoadLoans(_ context.Context) ([]ledger.Loan, error) {
	var loans []ledger.Loan
	if err := s.readJSON(loansFile, &loans); err != nil {
		return nil, err
	}
	if loans == nil {
		loans = []ledger.Loan{}
	}
	return loans, nil
}

func (s *Store) SaveLoans(_ context.Context, loans []ledger.Loan) error {
	return s.writeJSON(loansFile, loans)
}

// Ping satisfies the readiness probe: the data directory must exist.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *Store) readJSON(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// writeJSON goes through a temp file and rename so a crashed write
// never leaves a half-written collection behind.
func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
