package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager provides a thin abstraction to execute a function
// within a database transaction, passing the underlying transaction
// handle via `qx`.
//
// Repository methods accept `qx any` and detect a tx handle
// implementation-side, so use-case interfaces stay clean of storage
// types. Repositories MUST gracefully accept a nil qx (the
// non-transactional path runs against the pool).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
