package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/edufin/financing-engine/pkg/errors"
)

type txKey struct{}

type sqlTransactor struct {
	db *sqlx.DB
}

// NewTransactor creates a Transactor backed by the given database
func NewTransactor(db *sqlx.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.WrapPersistence(err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.WrapPersistence(err)
	}
	return nil
}

// executor returns the transaction carried on the context, or the plain
// database handle when no transaction is open.
func executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}
