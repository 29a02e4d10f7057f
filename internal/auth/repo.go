package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("staff not found")

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleStaff }

type Staff struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Repo struct{ DB *pgxpool.Pool }

var _ StaffStore = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.NewString()
	s.Active = true
	return r.DB.QueryRow(ctx, `
		INSERT INTO staff(id, username, password_hash, role, active)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		s.ID, s.Username, s.PasswordHash, s.Role, s.Active).Scan(&s.CreatedAt)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*Staff, error) {
	var s Staff
	err := r.DB.QueryRow(ctx, `
		SELECT id, username, password_hash, role, active, created_at
		FROM staff WHERE username=$1`, username).
		Scan(&s.ID, &s.Username, &s.PasswordHash, &s.Role, &s.Active, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) List(ctx context.Context) ([]Staff, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, username, password_hash, role, active, created_at
		FROM staff ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.Username, &s.PasswordHash, &s.Role, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) Deactivate(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE staff SET active=false WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
