package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"quizmaster/internal/quiz"
)

type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         quiz.Role
	CreatedAt    time.Time
}

func (u UserRecord) Public() quiz.User {
	return quiz.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: &quiz.Timestamp{Time: u.CreatedAt},
	}
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user UserRecord) error {
	if user.ID == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	if user.Role == "" {
		user.Role = quiz.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at_unix) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		strings.TrimSpace(user.Email),
		user.PasswordHash,
		string(user.Role),
		user.CreatedAt.UnixNano(),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *SQLiteStore) UserByEmail(ctx context.Context, email string) (UserRecord, error) {
	return s.scanUser(s.db.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, role, created_at_unix FROM users WHERE email = ?`,
		strings.TrimSpace(email),
	))
}

func (s *SQLiteStore) UserByID(ctx context.Context, id string) (UserRecord, error) {
	return s.scanUser(s.db.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, role, created_at_unix FROM users WHERE id = ?`,
		id,
	))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (UserRecord, error) {
	var (
		user      UserRecord
		role      string
		createdNs int64
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &createdNs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, err
	}
	user.Role = quiz.Role(role)
	user.CreatedAt = unixTime(createdNs)
	return user, nil
}

// ListUsers pages through users newest first. search matches name or email.
func (s *SQLiteStore) ListUsers(ctx context.Context, search string, limit, offset int) ([]quiz.User, int, error) {
	pattern := "%" + strings.TrimSpace(search) + "%"

	var total int
	if err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM users WHERE name LIKE ? OR email LIKE ?`,
		pattern, pattern,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, email, role, created_at_unix FROM users
		 WHERE name LIKE ? OR email LIKE ?
		 ORDER BY created_at_unix DESC, email ASC
		 LIMIT ? OFFSET ?`,
		pattern, pattern, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]quiz.User, 0)
	for rows.Next() {
		var (
			user      UserRecord
			role      string
			createdNs int64
		)
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &role, &createdNs); err != nil {
			return nil, 0, err
		}
		user.Role = quiz.Role(role)
		user.CreatedAt = unixTime(createdNs)
		users = append(users, user.Public())
	}
	return users, total, rows.Err()
}
