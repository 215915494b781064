package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// DB is the shared SQLite connection. Stores for each session borrow it.
type DB struct {
	db *sql.DB
}

func Open(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Ping reports whether the database answers.
func (d *DB) Ping(ctx context.Context) error { return d.db.PingContext(ctx) }

func (d *DB) ForSession(session core.Session) (store.Store, error) {
	return New(d, session)
}

type Store struct {
	db      *sql.DB
	session core.Session
}

func New(d *DB, session core.Session) (*Store, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return &Store{db: d.db, session: session}, nil
}

const (
	insertTx = `INSERT INTO transactions
	(id, user_id, amount, description, category, tx_date, tx_type, payment_mode, tags, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO NOTHING`

	selectTx = `SELECT id, amount, description, category, tx_date, tx_type, payment_mode, tags, created_at
	FROM transactions WHERE user_id = ? ORDER BY tx_date DESC, created_at DESC`

	deleteTx = `DELETE FROM transactions WHERE user_id = ? AND id = ?`
)

func (s *Store) Create(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	tags, err := json.Marshal(nonNil(tx.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, insertTx,
		tx.ID, s.session.UserID, tx.Amount.String(), tx.Description, tx.Category,
		tx.Date.String(), string(tx.Type), string(tx.PaymentMode), string(tags),
		createdAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("create %s: %w", tx.ID, store.ErrDuplicate)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"user_id", s.session.UserID,
		"type", tx.Type,
		"amount", tx.Amount.String())
	return nil
}

func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, selectTx, s.session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		var (
			tx                                   core.Transaction
			amount, date, typ, mode, tags, creat string
		)
		if err := rows.Scan(&tx.ID, &amount, &tx.Description, &tx.Category, &date, &typ, &mode, &tags, &creat); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: bad amount %q: %w", tx.ID, amount, err)
		}
		if tx.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		tx.Type = core.TxType(typ)
		tx.PaymentMode = core.PaymentMode(mode)
		if err := json.Unmarshal([]byte(tags), &tx.Tags); err != nil {
			return nil, fmt.Errorf("transaction %s: bad tags: %w", tx.ID, err)
		}
		if len(tx.Tags) == 0 {
			tx.Tags = nil
		}
		if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, creat); err != nil {
			return nil, fmt.Errorf("transaction %s: bad created_at %q: %w", tx.ID, creat, err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, deleteTx, s.session.UserID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
