package services

import (
	"context"
	"errors"
	"fmt"

	"staylane/internal/database"
	txctx "staylane/internal/context"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type TransactionExecutor interface {
	Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error
}

// TransactionService runs multi-entity writes inside one database transaction.
type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("TransactionService"),
	}
}

// Execute runs fn inside a transaction, committing when it returns nil and
// rolling back otherwise. A call made from inside another Execute joins the
// outer transaction. A panic in fn is rolled back and returned as an error.
func (ts *TransactionService) Execute(
	ctx context.Context,
	fn func(context.Context, *gorm.DB) error,
) (err error) {
	if tx, ok := txctx.GetTransaction(ctx); ok {
		return fn(ctx, tx)
	}

	log := ts.log.Function("Execute")

	tx := ts.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warn("recovered panic inside transaction", "panic", r)
			err = ts.rollback(tx, fmt.Errorf("panic during transaction: %v", r))
		}
	}()

	if err = fn(txctx.WithTransaction(ctx, tx), tx); err != nil {
		return ts.rollback(tx, err)
	}

	if err = tx.Commit().Error; err != nil {
		return log.Err("failed to commit transaction", err)
	}

	return nil
}

// rollback undoes tx and hands back cause unchanged, or joined with the
// rollback failure when the rollback itself fails.
func (ts *TransactionService) rollback(tx *gorm.DB, cause error) error {
	if err := tx.Rollback().Error; err != nil {
		ts.log.Function("rollback").Er("failed to roll back transaction", err, "cause", cause.Error())
		return errors.Join(cause, fmt.Errorf("rollback failed: %w", err))
	}
	return cause
}
