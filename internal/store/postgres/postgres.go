// Package postgres stores ledgers in a remote PostgreSQL database through gorm.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// record is the row layout of the transactions table.
type record struct {
	ID          string          `gorm:"primaryKey;type:text"`
	UserID      string          `gorm:"type:text;not null;index:idx_transactions_user_date,priority:1"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	Description string          `gorm:"type:text;not null"`
	Category    string          `gorm:"type:text;not null"`
	TxDate      time.Time       `gorm:"type:date;not null;index:idx_transactions_user_date,priority:2"`
	TxType      string          `gorm:"type:text;not null"`
	PaymentMode string          `gorm:"type:text;not null"`
	Tags        pq.StringArray  `gorm:"type:text[]"`
	CreatedAt   time.Time
}

func (record) TableName() string { return "transactions" }

func toRecord(userID string, tx core.Transaction) record {
	r := record{
		ID:          tx.ID,
		UserID:      userID,
		Amount:      tx.Amount,
		Description: tx.Description,
		Category:    tx.Category,
		TxDate:      tx.Date.Time,
		TxType:      string(tx.Type),
		PaymentMode: string(tx.PaymentMode),
		CreatedAt:   tx.CreatedAt,
	}
	if len(tx.Tags) > 0 {
		r.Tags = pq.StringArray(tx.Tags)
	}
	return r
}

func (r record) toTransaction() core.Transaction {
	tx := core.Transaction{
		ID:          r.ID,
		Amount:      r.Amount,
		Description: r.Description,
		Category:    r.Category,
		Date:        core.NewDate(r.TxDate.Year(), int(r.TxDate.Month()), r.TxDate.Day()),
		Type:        core.TxType(r.TxType),
		PaymentMode: core.PaymentMode(r.PaymentMode),
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if len(r.Tags) > 0 {
		tx.Tags = []string(r.Tags)
	}
	return tx
}

// DB wraps the shared gorm handle.
type DB struct {
	gorm *gorm.DB
}

// Open connects with lib/pq, waits for the server, migrates, and hands the
// connection to gorm.
func Open(dsn string, log *slog.Logger) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres: empty DSN")
	}
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := waitForDatabase(sqlDB, log); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := RunMigrations(dsn); err != nil {
		sqlDB.Close()
		return nil, err
	}

	db, err := FromConn(sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// FromConn builds a DB over an existing connection using the postgres dialect.
func FromConn(conn *sql.DB) (*DB, error) {
	g, err := gorm.Open(gormpg.New(gormpg.Config{Conn: conn}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return &DB{gorm: g}, nil
}

// FromGorm wraps an already opened gorm handle of any dialect.
func FromGorm(g *gorm.DB) *DB { return &DB{gorm: g} }

// AutoMigrate creates the table from the record model. Production schemas
// come from the embedded migrations; this serves throwaway databases.
func (d *DB) AutoMigrate() error {
	return d.gorm.AutoMigrate(&record{})
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
}

func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DB) ForSession(session core.Session) (store.Store, error) {
	return New(d, session)
}

type Store struct {
	db      *gorm.DB
	session core.Session
}

func New(d *DB, session core.Session) (*Store, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return &Store{db: d.gorm, session: session}, nil
}

func (s *Store) Create(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	rec := toRecord(s.session.UserID, tx)
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return fmt.Errorf("insert transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("create %s: %w", tx.ID, store.ErrDuplicate)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	var recs []record
	err := s.db.WithContext(ctx).
		Where("user_id = ?", s.session.UserID).
		Order("tx_date DESC").
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toTransaction())
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", s.session.UserID, id).
		Delete(&record{})
	if res.Error != nil {
		return fmt.Errorf("delete transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s: %w", id, store.ErrNotFound)
	}
	return nil
}
