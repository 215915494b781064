// Package file keeps each user's ledger as a JSON document on local disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

const docVersion = 1

type document struct {
	Version      int                `json:"version"`
	UserID       string             `json:"userId"`
	Transactions []core.Transaction `json:"transactions"`
}

// Dir is a directory holding one <user>.json file per user.
type Dir struct {
	mu   sync.Mutex
	path string
}

// Open creates the directory if needed.
func Open(path string) (*Dir, error) {
	if path == "" {
		return nil, errors.New("file store: empty data directory")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) ForSession(session core.Session) (store.Store, error) {
	return New(d, session)
}

type Store struct {
	dir     *Dir
	session core.Session
	file    string
}

func New(d *Dir, session core.Session) (*Store, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	name := url.PathEscape(session.UserID) + ".json"
	return &Store{dir: d, session: session, file: filepath.Join(d.path, name)}, nil
}

func (s *Store) Create(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for _, it := range doc.Transactions {
		if it.ID == tx.ID {
			return fmt.Errorf("create %s: %w", tx.ID, store.ErrDuplicate)
		}
	}
	doc.Transactions = append(doc.Transactions, tx)
	return s.save(ctx, doc)
}

func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Transactions, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for i, it := range doc.Transactions {
		if it.ID == id {
			doc.Transactions = append(doc.Transactions[:i], doc.Transactions[i+1:]...)
			return s.save(ctx, doc)
		}
	}
	return fmt.Errorf("delete %s: %w", id, store.ErrNotFound)
}

func (s *Store) load() (document, error) {
	doc := document{Version: docVersion, UserID: s.session.UserID, Transactions: []core.Transaction{}}
	b, err := os.ReadFile(s.file)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read ledger file: %w", err)
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("decode ledger file %s: %w", s.file, err)
	}
	if doc.UserID != s.session.UserID {
		return doc, fmt.Errorf("ledger file %s belongs to another user", s.file)
	}
	return doc, nil
}

// save writes to a temp file and renames it over the old one.
func (s *Store) save(ctx context.Context, doc document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir.path, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.file); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
