package core

import (
	"context"
)

// Execution kinds reported to middlewares and Executed handlers.
const (
	KindNonQuery     = "NONQUERY"
	KindScalar       = "SCALAR"
	KindQuery        = "QUERY"
	KindDictionaries = "DICTIONARIES"
	KindStream       = "STREAM"
)

// ExecInfo describes one command execution passing through the middleware
// chain.
type ExecInfo struct {
	// Kind is one of the execution kind constants.
	Kind string
	// Description is the human-readable command surface.
	Description string
	// Args holds the bound input parameter values in parameter order.
	Args []any
}

// ExecResult carries the materialized value (or fault) of one execution.
// For QUERY and DICTIONARIES kinds Value is the fully materialized result,
// so middlewares may cache or replace it.
type ExecResult struct {
	Value any
	Err   error
}

// ExecFunc is the next step in the middleware chain.
type ExecFunc func(ctx context.Context, info *ExecInfo) *ExecResult

// Middleware wraps command execution. Middlewares run in the order they
// were added with Use; the innermost function performs the database call.
type Middleware func(next ExecFunc) ExecFunc
