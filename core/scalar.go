package core

import (
	"context"

	"github.com/shrek82/jsql/client"
)

// ExecuteScalar runs the pending command and converts the first column of
// the first row to T. An empty result set yields the zero T.
func ExecuteScalar[T any](ctx context.Context, e *Executor) (T, error) {
	var zero T
	v, err := e.runQuery(ctx, KindScalar, client.BehaviorSingleRow, func(rows client.Rows) (any, error) {
		if !rows.Next() {
			return nil, rows.Err()
		}
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		row, err := scanRow(rows, cols)
		if err != nil {
			return nil, err
		}
		return row.Value(0), nil
	}, true)
	if err != nil {
		return zero, err
	}
	return as[T](v)
}

// ExecuteScalarText creates a text command from text and records, then runs
// it as a scalar.
func ExecuteScalarText[T any](ctx context.Context, e *Executor, text string, records ...any) (T, error) {
	if err := e.CreateTextCommand(text, records...); err != nil {
		var zero T
		return zero, err
	}
	return ExecuteScalar[T](ctx, e)
}

// ExecuteScopeIdentity appends the dialect's last-generated-identity clause
// to the current command text and runs the result as a scalar. The command
// text mutation is permanent, so call order relative to other command
// mutations matters.
func ExecuteScopeIdentity[T any](ctx context.Context, e *Executor) (T, error) {
	var zero T
	if e.cmd == nil {
		return zero, ErrNoCommand
	}
	e.cmd.text = e.cmd.text + "; " + e.d.LastIdentitySQL()
	return ExecuteScalar[T](ctx, e)
}
