package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
	"github.com/iliyamo/hotel-rate-configurator/internal/utils"
)

// OperatorRepository stores operator accounts.  Emails are matched
// case-insensitively.
type OperatorRepository interface {
	Create(ctx context.Context, email, password string, role model.Role, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Operator, error)
	GetByID(ctx context.Context, id uint64) (model.Operator, error)
	Count(ctx context.Context) (int, error)
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// mysqlDuplicateEntry is the server error number of a unique key violation.
const mysqlDuplicateEntry = 1062

// MySQLOperatorRepo persists operators in the operators table.
type MySQLOperatorRepo struct{ DB *sql.DB }

func NewMySQLOperatorRepo(db *sql.DB) *MySQLOperatorRepo { return &MySQLOperatorRepo{DB: db} }

// Create hashes the password and inserts the operator, returning its id.
func (r *MySQLOperatorRepo) Create(ctx context.Context, email, password string, role model.Role, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO operators (email, password_hash, role) VALUES (?,?,?)",
		normalizeEmail(email), hash, string(role))
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *MySQLOperatorRepo) scanOne(ctx context.Context, query string, arg any) (model.Operator, error) {
	var (
		op   model.Operator
		role string
	)
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&op.ID, &op.Email, &op.PasswordHash, &role, &op.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Operator{}, ErrOperatorNotFound
	}
	if err != nil {
		return model.Operator{}, err
	}
	op.Role = model.ParseRole(role)
	return op, nil
}

// GetByEmail fetches an operator by normalized email.
func (r *MySQLOperatorRepo) GetByEmail(ctx context.Context, email string) (model.Operator, error) {
	return r.scanOne(ctx,
		"SELECT id,email,password_hash,role,created_at FROM operators WHERE email=? LIMIT 1",
		normalizeEmail(email))
}

// GetByID fetches an operator by id.
func (r *MySQLOperatorRepo) GetByID(ctx context.Context, id uint64) (model.Operator, error) {
	return r.scanOne(ctx,
		"SELECT id,email,password_hash,role,created_at FROM operators WHERE id=? LIMIT 1",
		id)
}

// Count returns how many operators exist.
func (r *MySQLOperatorRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM operators").Scan(&n)
	return n, err
}
