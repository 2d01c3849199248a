package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_storefront/internal/models"
)

// ErrLedgerNotFound is returned when an archived transaction does not exist.
var ErrLedgerNotFound = errors.New("ledger entry not found")

// LedgerRepository archives committed storefront transactions in PostgreSQL.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

type ledgerRow struct {
	models.Transaction
	FieldsJSON []byte `db:"fields"`
}

// Archive inserts tx. Archiving the same id twice is a no-op.
func (r *LedgerRepository) Archive(ctx context.Context, tx models.Transaction) error {
	const q = `
        INSERT INTO transactions (
            id, owner, game, product_id, product_name, amount, original_amount,
            fee, discount, voucher_code, status, date, game_account, game_zone,
            game_server, whatsapp, payment_method, payment_method_name, fields
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,
            $8,$9,$10,$11,$12,$13,$14,
            $15,$16,$17,$18,$19
        ) ON CONFLICT (id) DO NOTHING`

	var fields interface{}
	if len(tx.Fields) > 0 {
		b, err := json.Marshal(tx.Fields)
		if err != nil {
			return fmt.Errorf("marshal fields: %w", err)
		}
		fields = b
	}

	_, err := r.db.ExecContext(ctx, q,
		tx.ID, tx.Owner, tx.Game, tx.ProductID, tx.ProductName, tx.Amount, tx.OriginalAmount,
		tx.Fee, tx.Discount, tx.VoucherCode, tx.Status, tx.Date, tx.GameAccount, tx.GameZone,
		tx.GameServer, tx.WhatsApp, tx.PaymentMethod, tx.PaymentMethodName, fields,
	)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

// GetByID returns the archived transaction id.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	const q = `
        SELECT id, owner, game, product_id, product_name, amount, original_amount,
               fee, discount, voucher_code, status, date, game_account, game_zone,
               game_server, whatsapp, payment_method, payment_method_name, fields
        FROM transactions WHERE id = $1`

	var row ledgerRow
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}
	if len(row.FieldsJSON) > 0 {
		if err := json.Unmarshal(row.FieldsJSON, &row.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
	}
	return &row.Transaction, nil
}

// Ping reports whether the archive database is reachable.
func (r *LedgerRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
