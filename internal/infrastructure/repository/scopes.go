package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	domainRepo "github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
	"gorm.io/gorm"
)

type ctxKey string

// txKey is the context key for the transaction opened by the transactor
const txKey ctxKey = "gorm_tx"

// WithTx binds a transaction to the context
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// TxFromContext extracts the transaction bound to the context
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	return tx, ok && tx != nil
}

// conn returns the transaction bound to ctx, or the base connection
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// DateRangeScope filters column into the half-open range [From, To)
func DateRangeScope(column string, r domainRepo.DateRange) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.From != nil {
			db = db.Where(column+" >= ?", *r.From)
		}
		if r.To != nil {
			db = db.Where(column+" < ?", *r.To)
		}
		return db
	}
}

// Paginate applies offset and limit for page-based listing
func Paginate(p *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		p.Validate()
		return db.Offset(p.Offset()).Limit(p.PerPage)
	}
}

// likePattern builds a case-insensitive LIKE pattern usable on both drivers
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// orderBy whitelists a client-supplied sort column
func orderBy(sortBy, sortOrder string, allowed map[string]bool, fallback string) string {
	column := fallback
	if allowed[sortBy] {
		column = sortBy
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// IsDuplicateKey reports unique-constraint violations from either driver
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// translateWriteError maps driver errors onto the repository sentinels
func translateWriteError(err error, what string) error {
	if err == nil {
		return nil
	}
	if IsDuplicateKey(err) {
		return fmt.Errorf("%s: %w", what, domainRepo.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}
