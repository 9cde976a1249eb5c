// Package postgres implements store.Store on top of pgx. Counter updates use
// atomic SQL increments and the (user, video) pairs in watch_history and
// watch_later are backed by unique constraints, so concurrent requests cannot
// produce duplicate rows or lost updates.
package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/codecast/codecast/internal/database"
	"github.com/codecast/codecast/internal/store"
)

type Store struct {
	db database.DBTX
}

var _ store.Store = (*Store)(nil)

func New(db database.DBTX) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
