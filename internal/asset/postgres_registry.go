package asset

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRegistry stores supported assets in PostgreSQL.
type PostgresRegistry struct {
	db *pgxpool.Pool
}

// NewPostgresRegistry builds a registry backed by PostgreSQL.
func NewPostgresRegistry(db *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

// IsSupported reports whether the asset is currently accepted.
func (r *PostgresRegistry) IsSupported(ctx context.Context, assetID string) (bool, error) {
	var supported bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
        SELECT 1 FROM assets WHERE id = $1 AND supported)`, assetID).Scan(&supported)
	return supported, err
}

// Add marks an asset as accepted, reinstating it if previously removed.
func (r *PostgresRegistry) Add(ctx context.Context, assetID string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO assets (id, supported) VALUES ($1, TRUE)
        ON CONFLICT (id) DO UPDATE SET supported = TRUE`, assetID)
	return err
}

// Remove marks an asset as no longer accepted. Existing balances are kept.
func (r *PostgresRegistry) Remove(ctx context.Context, assetID string) error {
	_, err := r.db.Exec(ctx, `UPDATE assets SET supported = FALSE WHERE id = $1`, assetID)
	return err
}

// List returns the accepted asset identifiers.
func (r *PostgresRegistry) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM assets WHERE supported ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
