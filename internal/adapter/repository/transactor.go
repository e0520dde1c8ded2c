package repository

import (
	"context"
	"fmt"

	domainRepo "github.com/wekeepgrowing/semo-partner/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type txKey struct{}

// gormTransactor implements Transactor by carrying the *gorm.DB transaction in the context
type gormTransactor struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransactor creates a transactor over db
func NewTransactor(db *gorm.DB, logger *zap.Logger) domainRepo.Transactor {
	return &gormTransactor{
		db:     db,
		logger: logger,
	}
}

// WithinTransaction runs fn in a transaction. A nested call joins the outer transaction.
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		t.logger.Debug("Transaction rolled back", zap.Error(err))
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// conn returns the transaction carried by ctx, or db bound to ctx
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
