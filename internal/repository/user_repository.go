package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/invtrack/internal/domain"
)

// userRepository implements UserRepository over Postgres.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const uniqueViolation = "23505"

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, role, password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Email, user.Name, string(user.Role), user.Password, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return r.getOne(ctx, `
		SELECT id, email, name, role, password, created_at
		FROM users WHERE id = $1
	`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `
		SELECT id, email, name, role, password, created_at
		FROM users WHERE email = lower($1)
	`, strings.TrimSpace(email))
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, role, password, created_at
		FROM users ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) DeleteAllExcept(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE email <> lower($1)`, email)
	if err != nil {
		return fmt.Errorf("failed to purge users: %w", err)
	}
	return nil
}

func (r *userRepository) CreateSession(ctx context.Context, token uuid.UUID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, created_at) VALUES ($1, $2, now())
	`, token, userID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *userRepository) GetSessionUser(ctx context.Context, token uuid.UUID) (domain.User, error) {
	return r.getOne(ctx, `
		SELECT u.id, u.email, u.name, u.role, u.password, u.created_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
	`, token)
}

func (r *userRepository) DeleteSessionsForUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

func (r *userRepository) DeleteAllSessions(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	var role string
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &role, &user.Password, &user.CreatedAt); err != nil {
		return domain.User{}, err
	}
	user.Role = domain.Role(role)
	return user, nil
}
