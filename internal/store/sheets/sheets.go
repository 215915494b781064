// Package sheets stores ledgers as rows of a Google spreadsheet.
//
// Layout of the sheet (row 1 is the header):
//
//	A ID | B User | C Date | D Type | E Category | F Description | G Payment | H Amount | I Tags
//
// Deleted rows are cleared, not removed, so List skips blank rows.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/store"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	lastCol   = "I"
	tagSep    = ","
	headerID  = "ID"
	rowLength = 9
)

var header = []any{headerID, "User", "Date", "Type", "Category", "Description", "Payment", "Amount", "Tags"}

// Config names the spreadsheet and how to authenticate.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Client is the shared Sheets connection.
type Client struct {
	mu            sync.Mutex
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *slog.Logger
}

// Open authenticates with a service account and prepares the header row.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg, logger,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// New builds a client with explicit API options.
func New(ctx context.Context, cfg Config, logger *slog.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Transactions"
	}
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	c := &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheet: sheet, logger: logger}
	if err := c.ensureHeader(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// loadCredentials reads service account credentials from the inline JSON,
// the configured file or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func loadCredentials(cfg Config) ([]byte, error) {
	if j := strings.TrimSpace(cfg.CredentialsJSON); j != "" {
		return []byte(j), nil
	}
	path := strings.TrimSpace(cfg.CredentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

func (c *Client) rng(cells string) string { return fmt.Sprintf("%s!%s", c.sheet, cells) }

func (c *Client) ensureHeader(ctx context.Context) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A1:"+lastCol+"1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheet, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{header}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rng("A1:"+lastCol+"1"), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheet, err)
	}
	c.logger.InfoContext(ctx, "Initialized transactions sheet", "sheet", c.sheet)
	return nil
}

// Ping checks that the spreadsheet is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A1:A1")).Context(ctx).Do()
	return err
}

func (c *Client) ForSession(session core.Session) (store.Store, error) {
	return NewStore(c, session)
}

// row is a parsed sheet row with its 1-based position.
type row struct {
	index  int
	userID string
	tx     core.Transaction
}

func (c *Client) readRows(ctx context.Context) ([]row, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A:"+lastCol)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.sheet, err)
	}
	out := make([]row, 0, len(resp.Values))
	for i, raw := range resp.Values {
		cols := toStrings(raw)
		if len(cols) == 0 || cols[0] == "" || (i == 0 && cols[0] == headerID) {
			continue
		}
		tx, err := parseRow(cols)
		if err != nil {
			c.logger.WarnContext(ctx, "Skipping malformed sheet row", "row", i+1, "error", err)
			continue
		}
		out = append(out, row{index: i + 1, userID: cols[1], tx: tx})
	}
	return out, nil
}

func parseRow(cols []string) (core.Transaction, error) {
	for len(cols) < rowLength {
		cols = append(cols, "")
	}
	amount, err := decimal.NewFromString(cols[7])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", cols[7], err)
	}
	date, err := core.ParseDate(cols[2])
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		ID:          cols[0],
		Date:        date,
		Type:        core.TxType(cols[3]),
		Category:    cols[4],
		Description: cols[5],
		PaymentMode: core.PaymentMode(cols[6]),
		Amount:      amount,
	}
	if cols[8] != "" {
		tx.Tags = strings.Split(cols[8], tagSep)
	}
	return tx, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// Store is one user's slice of the sheet.
type Store struct {
	client  *Client
	session core.Session
}

func NewStore(c *Client, session core.Session) (*Store, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return &Store{client: c, session: session}, nil
}

func (s *Store) Create(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	c := s.client
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.readRows(ctx)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.tx.ID == tx.ID {
			return fmt.Errorf("create %s: %w", tx.ID, store.ErrDuplicate)
		}
	}

	vr := &gsheet.ValueRange{Values: [][]any{{
		tx.ID, s.session.UserID, tx.Date.String(), string(tx.Type), tx.Category,
		tx.Description, string(tx.PaymentMode), tx.Amount.String(), strings.Join(tx.Tags, tagSep),
	}}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.rng("A:"+lastCol), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.sheet, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.client.readRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		if r.userID == s.session.UserID {
			out = append(out, r.tx)
		}
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	c := s.client
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.readRows(ctx)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.tx.ID != id || r.userID != s.session.UserID {
			continue
		}
		target := c.rng(fmt.Sprintf("A%d:%s%d", r.index, lastCol, r.index))
		if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, target, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return fmt.Errorf("clear %s: %w", target, err)
		}
		return nil
	}
	return fmt.Errorf("delete %s: %w", id, store.ErrNotFound)
}
