package migrate

// guard.go - concurrency guard around "create if absent" statements.
//
// Two processes bootstrapping the same fresh tenant database race on every
// CREATE. The guard turns that race into a deterministic outcome: check
// first, create, and when a concurrent creator wins re-check existence a
// bounded number of times before giving up.

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the guard recognizes.
const (
	codeUniqueViolation   = "23505"
	codeUndefinedTable    = "42P01"
	codeUndefinedColumn   = "42703"
	codeDuplicateColumn   = "42701"
	codeDuplicateDatabase = "42P04"
	codeDuplicateSchema   = "42P06"
	codeDuplicateTable    = "42P07"
	codeDuplicateObject   = "42710"
	codeDuplicateFunction = "42723"
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsDuplicate reports whether err says the object already exists.
func IsDuplicate(err error) bool {
	switch sqlState(err) {
	case codeDuplicateTable, codeDuplicateColumn, codeDuplicateObject,
		codeDuplicateFunction, codeDuplicateDatabase, codeDuplicateSchema,
		codeUniqueViolation:
		return true
	}
	return false
}

// IsUndefinedTable reports whether err says a referenced table is absent.
func IsUndefinedTable(err error) bool {
	return sqlState(err) == codeUndefinedTable
}

// guard retries existence checks after a lost create race.
type guard struct {
	retries int
	delay   time.Duration
}

func defaultGuard() guard {
	return guard{retries: 3, delay: 100 * time.Millisecond}
}

// create runs exec unless exists already reports true. When exec fails
// with a duplicate-class error, existence is re-checked up to g.retries
// times; if the object appears, the race is benign and create returns nil
// with created=false. If it never appears, the original error is returned.
func (g guard) create(ctx context.Context, exec func() error, exists func() (bool, error)) (created bool, err error) {
	ok, err := exists()
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}

	execErr := exec()
	if execErr == nil {
		return true, nil
	}
	if !IsDuplicate(execErr) {
		return false, execErr
	}

	for i := 0; i < g.retries; i++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(g.delay):
		}
		ok, err := exists()
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
	}
	return false, execErr
}
