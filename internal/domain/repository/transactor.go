package repository

import "context"

// Transactor runs fn atomically. Repositories called with the ctx passed to fn
// take part in the same transaction; a returned error rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
