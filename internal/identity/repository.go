package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotRegistered indicates no user exists for the identifier.
	ErrNotRegistered = errors.New("user not registered")

	// ErrAlreadyRegistered indicates the phone number is already in use.
	ErrAlreadyRegistered = errors.New("user already registered")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByPhone(ctx context.Context, phone string) (User, error)
	ListIDs(ctx context.Context) ([]string, error)
	AddSent(ctx context.Context, id string, amount int64) error
	AddReceived(ctx context.Context, id string, amount int64) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `INSERT INTO users (id, name, country, phone, pin_hash, active, total_sent, total_received, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (phone) DO NOTHING`,
		userID, user.Name, user.Country, user.Phone, user.PINHash, user.Active, user.TotalSent, user.TotalReceived, user.CreatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyRegistered
	}
	return nil
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotRegistered
	}
	return r.scanOne(r.db.QueryRow(ctx, `SELECT id, name, country, phone, pin_hash, active, total_sent, total_received, created_at
        FROM users WHERE id = $1`, userID))
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT id, name, country, phone, pin_hash, active, total_sent, total_received, created_at
        FROM users WHERE phone = $1`, phone))
}

// ListIDs returns the identifiers of all active users.
func (r *PostgresRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users WHERE active ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id.String())
	}
	return ids, rows.Err()
}

// AddSent accumulates the user's lifetime sent total.
func (r *PostgresRepository) AddSent(ctx context.Context, id string, amount int64) error {
	return r.addStat(ctx, id, "total_sent", amount)
}

// AddReceived accumulates the user's lifetime received total.
func (r *PostgresRepository) AddReceived(ctx context.Context, id string, amount int64) error {
	return r.addStat(ctx, id, "total_received", amount)
}

func (r *PostgresRepository) addStat(ctx context.Context, id, column string, amount int64) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotRegistered
	}
	query := `UPDATE users SET total_sent = total_sent + $1 WHERE id = $2`
	if column == "total_received" {
		query = `UPDATE users SET total_received = total_received + $1 WHERE id = $2`
	}
	tag, err := r.db.Exec(ctx, query, amount, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotRegistered
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		user      User
	)
	if err := row.Scan(&id, &user.Name, &user.Country, &user.Phone, &user.PINHash, &user.Active, &user.TotalSent, &user.TotalReceived, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotRegistered
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
