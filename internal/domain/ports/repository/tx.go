package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Its concrete type is infra-defined
// (pgx.Tx for Postgres); repositories must gracefully accept NoTX and run
// against the pool instead.
type Tx interface{}

// NoTX marks the non-transactional path.
var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via tx. It keeps use-case interfaces free
// of storage types while still letting a use case group a read-check-write
// sequence into one atomic unit.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
