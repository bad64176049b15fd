// Package store is the persistence codec: it serializes the full registry
// graph to line-oriented, pipe-delimited text files and reconstructs it at
// startup. Loading is deliberately tolerant: a missing file means zero
// records of that kind, and a malformed line or dangling reference is
// logged and skipped instead of failing the whole process.
package store

import (
	"fmt"
	"path/filepath"

	"github.com/devcoelho/gobank/internal/model"
)

const (
	clientsFile      = "clients.txt"
	accountsFile     = "accounts.txt"
	investmentsFile  = "investments.txt"
	transactionsFile = "transactions.txt"

	timeLayout = "2006-01-02 15:04:05"

	fieldSep = "|"
)

// Store reads and writes the flat snapshot under a data directory
type Store struct {
	dir string
}

// New creates a Store rooted at dir
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// persistErr tags an I/O failure with the recoverable persistence sentinel
func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrPersistence, op, err)
}
