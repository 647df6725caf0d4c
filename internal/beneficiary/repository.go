package beneficiary

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no active beneficiary matches the owner and id.
var ErrNotFound = errors.New("beneficiary not found")

// Repository persists beneficiaries.
type Repository interface {
	Create(ctx context.Context, b Beneficiary) error
	Get(ctx context.Context, ownerID, id string) (Beneficiary, error)
	Update(ctx context.Context, b Beneficiary) error
	ListActive(ctx context.Context, ownerID string) ([]Beneficiary, error)
}

// PostgresRepository stores beneficiaries in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a beneficiary record.
func (r *PostgresRepository) Create(ctx context.Context, b Beneficiary) error {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(b.OwnerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO beneficiaries
        (id, owner_id, target, name, relationship, amount, asset_id, cadence, last_paid_at, active, total_sent, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, ownerID, b.Target, b.Name, b.Relationship, b.Amount, b.Asset, string(b.Cadence), b.LastPaidAt, b.Active, b.TotalSent, b.CreatedAt.UTC())
	return err
}

// Get fetches an active beneficiary scoped to its owner.
func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (Beneficiary, error) {
	benID, err := uuid.Parse(id)
	if err != nil {
		return Beneficiary{}, ErrNotFound
	}
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return Beneficiary{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, target, name, relationship, amount, asset_id, cadence, last_paid_at, active, total_sent, created_at
        FROM beneficiaries WHERE id = $1 AND owner_id = $2 AND active`, benID, owner)
	return scanBeneficiary(row)
}

// Update rewrites the mutable fields. Owner and identifier never change.
func (r *PostgresRepository) Update(ctx context.Context, b Beneficiary) error {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE beneficiaries
        SET target = $1, name = $2, relationship = $3, amount = $4, asset_id = $5, cadence = $6,
            last_paid_at = $7, active = $8, total_sent = $9
        WHERE id = $10 AND owner_id = $11`,
		b.Target, b.Name, b.Relationship, b.Amount, b.Asset, string(b.Cadence), b.LastPaidAt, b.Active, b.TotalSent, id, b.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns the owner's active beneficiaries in creation order.
func (r *PostgresRepository) ListActive(ctx context.Context, ownerID string) ([]Beneficiary, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, ErrNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, target, name, relationship, amount, asset_id, cadence, last_paid_at, active, total_sent, created_at
        FROM beneficiaries WHERE owner_id = $1 AND active ORDER BY created_at`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Beneficiary
	for rows.Next() {
		b, err := scanBeneficiary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBeneficiary(row pgx.Row) (Beneficiary, error) {
	var (
		id        uuid.UUID
		ownerID   uuid.UUID
		cadence   string
		createdAt time.Time
		b         Beneficiary
	)
	if err := row.Scan(&id, &ownerID, &b.Target, &b.Name, &b.Relationship, &b.Amount, &b.Asset, &cadence, &b.LastPaidAt, &b.Active, &b.TotalSent, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Beneficiary{}, ErrNotFound
		}
		return Beneficiary{}, err
	}
	b.ID = id.String()
	b.OwnerID = ownerID.String()
	b.Cadence = Cadence(cadence)
	b.CreatedAt = createdAt.UTC()
	return b, nil
}
