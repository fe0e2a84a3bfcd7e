// Package jsql is a fluent SQL command builder and executor. It assembles
// text, stored procedure, and generated insert/update commands from named
// parameters and runs them through a shared pipeline with pluggable event
// handlers, middlewares, and result materializers.
package jsql

import (
	"context"
	"io"

	"github.com/shrek82/jsql/core"
)

// Re-export core types
type Executor = core.Executor
type Option = core.Option
type Middleware = core.Middleware
type ExecInfo = core.ExecInfo
type ExecResult = core.ExecResult
type ExecEvent = core.ExecEvent
type Row = core.Row

var (
	New           = core.New
	WithLogger    = core.WithLogger
	WithMapper    = core.WithMapper
	WithDialect   = core.WithDialect
	WithAutoClose = core.WithAutoClose
)

// Re-export sentinel errors
var (
	ErrDuplicateParameter     = core.ErrDuplicateParameter
	ErrExecution              = core.ErrExecution
	ErrNoReturnValue          = core.ErrNoReturnValue
	ErrMissingOutputParameter = core.ErrMissingOutputParameter
	ErrDuplicateKey           = core.ErrDuplicateKey
	ErrNoCommand              = core.ErrNoCommand
	ErrNoRows                 = core.ErrNoRows
)

// Generic execute variants (methods cannot carry type parameters, so these
// are thin wrappers over the core package-level functions).

func ExecuteScalar[T any](ctx context.Context, e *Executor) (T, error) {
	return core.ExecuteScalar[T](ctx, e)
}

func ExecuteScalarText[T any](ctx context.Context, e *Executor, text string, records ...any) (T, error) {
	return core.ExecuteScalarText[T](ctx, e, text, records...)
}

func ExecuteReturnValue[T any](ctx context.Context, e *Executor) (T, error) {
	return core.ExecuteReturnValue[T](ctx, e)
}

func ExecuteScopeIdentity[T any](ctx context.Context, e *Executor) (T, error) {
	return core.ExecuteScopeIdentity[T](ctx, e)
}

func ExecuteAndTransform[T any](ctx context.Context, e *Executor, fn func(r Row) (T, error)) ([]T, error) {
	return core.ExecuteAndTransform[T](ctx, e, fn)
}

func ExecuteAndAutoMap[T any](ctx context.Context, e *Executor) ([]T, error) {
	return core.ExecuteAndAutoMap[T](ctx, e)
}

func ExecuteArray[T any](ctx context.Context, e *Executor, column string) ([]T, error) {
	return core.ExecuteArray[T](ctx, e, column)
}

func ExecuteVerticalDictionary[K comparable, V any](ctx context.Context, e *Executor, keyCol, valCol string) (map[K]V, error) {
	return core.ExecuteVerticalDictionary[K, V](ctx, e, keyCol, valCol)
}

func ExecuteVerticalDictionaryOrdinal[K comparable, V any](ctx context.Context, e *Executor, keyIdx, valIdx int) (map[K]V, error) {
	return core.ExecuteVerticalDictionaryOrdinal[K, V](ctx, e, keyIdx, valIdx)
}

func ExecuteVerticalLookup[K comparable, V any](ctx context.Context, e *Executor, keyCol, valCol string) (map[K][]V, error) {
	return core.ExecuteVerticalLookup[K, V](ctx, e, keyCol, valCol)
}

// ExecuteBinaryStream copies one row's binary column to sink in bounded
// chunks. See core.Executor.ExecuteBinaryStream.
func ExecuteBinaryStream(ctx context.Context, e *Executor, column string, sink io.Writer, bufferSize int) (int64, error) {
	return e.ExecuteBinaryStream(ctx, column, sink, bufferSize)
}
