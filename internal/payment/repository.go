package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRecordNotFound indicates no payment record matches the identifier.
var ErrRecordNotFound = errors.New("payment record not found")

// Repository persists the append-only payment history.
type Repository interface {
	Append(ctx context.Context, record Record) error
	Get(ctx context.Context, id string) (Record, error)
	ListBySender(ctx context.Context, senderID string, limit int) ([]Record, error)
	Count(ctx context.Context) (int64, error)
}

// PostgresRepository stores payment records in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a history repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts a record. Records are never updated.
func (r *PostgresRepository) Append(ctx context.Context, record Record) error {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO payments
        (id, kind, status, sender_id, beneficiary_id, recipient, asset_id, gross, fee, note, reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, string(record.Kind), string(record.Status), record.SenderID, nullable(record.BeneficiaryID),
		record.Recipient, record.Asset, record.Gross, record.Fee, record.Note, record.Reason, record.CreatedAt.UTC())
	return err
}

// Get fetches a record by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Record, error) {
	recID, err := uuid.Parse(id)
	if err != nil {
		return Record{}, ErrRecordNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, kind, status, sender_id, beneficiary_id, recipient, asset_id, gross, fee, note, reason, created_at
        FROM payments WHERE id = $1`, recID)
	return scanRecord(row)
}

// ListBySender returns the sender's most recent records.
func (r *PostgresRepository) ListBySender(ctx context.Context, senderID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT id, kind, status, sender_id, beneficiary_id, recipient, asset_id, gross, fee, note, reason, created_at
        FROM payments WHERE sender_id = $1 ORDER BY created_at DESC LIMIT $2`, senderID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// Count returns the total number of recorded payment attempts.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`).Scan(&n)
	return n, err
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		id            uuid.UUID
		kind, status  string
		beneficiaryID *string
		createdAt     time.Time
		record        Record
	)
	if err := row.Scan(&id, &kind, &status, &record.SenderID, &beneficiaryID, &record.Recipient,
		&record.Asset, &record.Gross, &record.Fee, &record.Note, &record.Reason, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	record.ID = id.String()
	record.Kind = Kind(kind)
	record.Status = Status(status)
	if beneficiaryID != nil {
		record.BeneficiaryID = *beneficiaryID
	}
	record.CreatedAt = createdAt.UTC()
	return record, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
