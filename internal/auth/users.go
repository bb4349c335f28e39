package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type Users struct{ pool *pgxpool.Pool }

func NewUsers(pool *pgxpool.Pool) *Users { return &Users{pool: pool} }

const userColumns = `id, login, password_hash, full_name, role, active, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.FullName, &u.Role, &u.Active, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Users) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *Users) GetByLogin(ctx context.Context, login string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE login = $1`, strings.ToLower(strings.TrimSpace(login))))
}

// Upsert creates the user or resets its password and role.
func (r *Users) Upsert(ctx context.Context, login, password, fullName string, role Role) (*User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" || password == "" {
		return nil, fmt.Errorf("login and password are required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (login, password_hash, full_name, role)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (login)
		DO UPDATE SET password_hash = EXCLUDED.password_hash, full_name = EXCLUDED.full_name, role = EXCLUDED.role
		RETURNING `+userColumns, login, hash, fullName, role))
}

// Authenticate checks login and password and returns the active user.
func (r *Users) Authenticate(ctx context.Context, login, password string) (*User, error) {
	u, err := r.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active || !CheckPassword(u.PasswordHash, password) {
		return nil, ErrBadPassword
	}
	return u, nil
}

// Lookup implements PrincipalStore.
func (r *Users) Lookup(ctx context.Context, userID int64) (*Principal, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active {
		return nil, ErrUnauthorized
	}
	p := u.Principal()
	return &p, nil
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
