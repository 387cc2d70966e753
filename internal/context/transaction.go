package context

import (
	"context"

	"gorm.io/gorm"
)

type transactionKey struct{}

// WithTransaction marks ctx as running inside tx so nested
// TransactionService.Execute calls reuse it.
func WithTransaction(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, transactionKey{}, tx)
}

func GetTransaction(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(transactionKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}
