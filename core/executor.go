package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shrek82/jsql/client"
	"github.com/shrek82/jsql/dialect"
	"github.com/shrek82/jsql/fieldmap"
	"github.com/shrek82/jsql/logger"
)

// Executor assembles SQL commands and stored procedure invocations from
// named parameters and runs them through one shared pipeline: wire event
// handlers, open the connection if needed, bind parameters, execute through
// the middleware chain, record timing, and close the connection again once
// the data has been fully consumed (unless auto-close is disabled).
//
// An Executor owns exactly one connection and one live command descriptor.
// It is not safe for concurrent use; callers needing concurrency use one
// executor per logical operation.
//
// Fault policy: with no error handlers registered, execution and
// connection-open faults propagate wrapped in ErrExecution. With one or
// more handlers registered, every handler receives the fault in
// registration order, the call returns the zero result for its variant with
// a nil error, and Faulted reports true until the next execution.
type Executor struct {
	id     string
	conn   client.Conn
	d      dialect.Dialect
	mapper fieldmap.Mapper
	log    logger.Logger
	mdls   []Middleware

	params *params
	cmd    *command

	autoClose bool

	errFns     []ErrorHandler
	infoFns    []InfoHandler
	stateFns   []StateChangeHandler
	execFns    []ExecutedHandler
	infoWired  int
	stateWired int

	execCount       int64
	recordsAffected int64
	lastElapsed     time.Duration
	faulted         bool

	lastCmd      client.Command
	outputsValid bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for command logging.
func WithLogger(l logger.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// WithMapper sets the field-map adapter used to decompose records and to
// normalize parameter names.
func WithMapper(m fieldmap.Mapper) Option {
	return func(e *Executor) { e.mapper = m }
}

// WithDialect sets the dialect used for identity fetches and diagnostics.
func WithDialect(d dialect.Dialect) Option {
	return func(e *Executor) { e.d = d }
}

// WithAutoClose controls whether the connection is closed automatically once
// a read or execution completes. Enabled by default; when disabled the
// connection stays open across calls and its lifecycle belongs to the caller.
func WithAutoClose(enabled bool) Option {
	return func(e *Executor) { e.autoClose = enabled }
}

// New creates an executor over the given connection.
func New(conn client.Conn, opts ...Option) *Executor {
	e := &Executor{
		id:        uuid.NewString(),
		conn:      conn,
		mapper:    fieldmap.Default(),
		log:       logger.NewStdLogger(),
		autoClose: true,
	}
	if d, ok := dialect.Get("mysql"); ok {
		e.d = d
	}
	for _, opt := range opts {
		opt(e)
	}
	e.params = newParams(e.mapper.Normalize)
	e.log = e.log.WithFields(map[string]any{"executor": e.id})
	return e
}

// Use appends middlewares to the execution chain.
func (e *Executor) Use(mdls ...Middleware) *Executor {
	e.mdls = append(e.mdls, mdls...)
	return e
}

// ID returns the executor's unique instance identifier.
func (e *Executor) ID() string { return e.id }

// Conn returns the owned connection.
func (e *Executor) Conn() client.Conn { return e.conn }

// ExecutionCount returns the number of completed executions.
func (e *Executor) ExecutionCount() int64 { return e.execCount }

// RecordsAffected returns the affected-row count of the most recent
// non-query execution.
func (e *Executor) RecordsAffected() int64 { return e.recordsAffected }

// LastElapsed returns the elapsed time of the most recent execution.
func (e *Executor) LastElapsed() time.Duration { return e.lastElapsed }

// Faulted reports whether the most recent call swallowed a fault through
// registered error handlers. It lets callers distinguish an empty result
// from a suppressed failure.
func (e *Executor) Faulted() bool { return e.faulted }

// Close closes the owned connection.
func (e *Executor) Close() error { return e.conn.Close() }

// ChangeDatabase switches the active database on the open connection.
func (e *Executor) ChangeDatabase(ctx context.Context, name string) error {
	return e.conn.ChangeDatabase(ctx, name)
}

// Describe returns the human-readable rendering of the pending command.
func (e *Executor) Describe() string {
	if e.cmd == nil {
		return ""
	}
	return e.cmd.describe(e.params.pairs())
}

// CommandText returns the current command text or procedure name.
func (e *Executor) CommandText() string {
	if e.cmd == nil {
		return ""
	}
	return e.cmd.text
}

// --- parameter store ---

// AddParameter adds a named parameter. The name is normalized once, at
// insertion. Adding a name already present fails with ErrDuplicateParameter
// and leaves the store unchanged.
func (e *Executor) AddParameter(name string, value any) error {
	if err := e.params.add(name, value); err != nil {
		return err
	}
	e.regenerate()
	return nil
}

// AddParameters decomposes a struct or map record into named parameters via
// the field-map adapter and adds each one. A nil record is a silent no-op.
// A duplicate mid-sequence stops the additions but leaves the parameters
// added so far in place.
func (e *Executor) AddParameters(record any) error {
	if record == nil {
		return nil
	}
	pairs, err := e.mapper.FieldPairs(record)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := e.AddParameter(p.Name, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// RemoveParameter removes a named parameter, reporting whether it existed.
func (e *Executor) RemoveParameter(name string) bool {
	ok := e.params.remove(name)
	if ok {
		e.regenerate()
	}
	return ok
}

// RemoveNullParameters removes every parameter whose value is nil.
func (e *Executor) RemoveNullParameters() int {
	return e.removeWhere(isNullValue)
}

// RemoveBlankParameters removes every string parameter whose value is the
// empty string. Whitespace-only strings and non-strings are untouched.
func (e *Executor) RemoveBlankParameters() int {
	return e.removeWhere(isBlankValue)
}

// RemoveNullAndBlankParameters removes both nil-valued and empty-string
// parameters.
func (e *Executor) RemoveNullAndBlankParameters() int {
	return e.removeWhere(func(v any) bool { return isNullValue(v) || isBlankValue(v) })
}

func (e *Executor) removeWhere(pred func(v any) bool) int {
	removed := e.params.removeIf(pred)
	if removed > 0 {
		e.regenerate()
	}
	return removed
}

// Parameters returns an ordered snapshot of the parameter store.
func (e *Executor) Parameters() []fieldmap.Pair {
	return e.params.pairs()
}

// HasParameter reports whether a parameter with the (normalized) name exists.
func (e *Executor) HasParameter(name string) bool {
	_, ok := e.params.get(name)
	return ok
}

// Parameter returns the value of a named parameter.
func (e *Executor) Parameter(name string) (any, bool) {
	return e.params.get(name)
}

func (e *Executor) regenerate() {
	if e.cmd != nil && e.cmd.mode != crudNone {
		e.cmd.regenerate(e.params.names)
	}
}

// --- command creation ---

// CreateTextCommand replaces the live command with a caller-supplied SQL
// text command and adds the supplied records' fields as parameters. The
// parameter store itself persists across command creations.
func (e *Executor) CreateTextCommand(text string, records ...any) error {
	e.cmd = &command{kind: client.KindText, text: text}
	e.outputsValid = false
	return e.addRecords(records)
}

// CreateProcedureCommand replaces the live command with a stored procedure
// invocation and allocates the return-value parameter exactly once.
func (e *Executor) CreateProcedureCommand(name string, records ...any) error {
	e.cmd = &command{kind: client.KindProcedure, text: name, hasReturn: true}
	e.outputsValid = false
	return e.addRecords(records)
}

// CreateTableDirectCommand replaces the live command with a direct read of
// the named table; the client renders the access for its engine.
func (e *Executor) CreateTableDirectCommand(table string) error {
	e.cmd = &command{kind: client.KindTableDirect, text: table}
	e.outputsValid = false
	return nil
}

// CreateInsertCommand switches to Insert mode: the command text becomes a
// derived function of the table name and the current parameter names, and is
// regenerated after every parameter change. Fields are merged into the store:
// a name already present keeps its position and takes the new value.
func (e *Executor) CreateInsertCommand(table string, fields any) error {
	e.cmd = &command{kind: client.KindText, mode: crudInsert, table: table}
	e.outputsValid = false
	if err := e.mergeParameters(fields); err != nil {
		return err
	}
	e.regenerate()
	return nil
}

// CreateUpdateCommand switches to Update mode with the same merge semantics
// as CreateInsertCommand. The where clause is passed through verbatim; its
// correctness and injection safety are the caller's responsibility.
func (e *Executor) CreateUpdateCommand(table string, fields any, where string) error {
	e.cmd = &command{kind: client.KindText, mode: crudUpdate, table: table, where: where}
	e.outputsValid = false
	if err := e.mergeParameters(fields); err != nil {
		return err
	}
	e.regenerate()
	return nil
}

func (e *Executor) mergeParameters(fields any) error {
	if fields == nil {
		return nil
	}
	pairs, err := e.mapper.FieldPairs(fields)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		e.params.set(p.Name, p.Value)
	}
	return nil
}

// DeclareOutput declares an output parameter on the live command. Its value
// becomes readable through OutputValue after a successful execution.
func (e *Executor) DeclareOutput(name, dbType string) error {
	if e.cmd == nil {
		return ErrNoCommand
	}
	e.cmd.outputs = append(e.cmd.outputs, client.Param{
		Name:      e.mapper.Normalize(name),
		Direction: client.DirectionOut,
		Type:      dbType,
	})
	return nil
}

// OutputValue reads a declared output parameter after execution.
func (e *Executor) OutputValue(name string) (any, error) {
	if e.cmd == nil {
		return nil, ErrNoCommand
	}
	name = e.mapper.Normalize(name)
	declared := false
	for _, out := range e.cmd.outputs {
		if out.Name == name {
			declared = true
			break
		}
	}
	if !declared {
		return nil, fmt.Errorf("%w: %s", ErrMissingOutputParameter, name)
	}
	if !e.outputsValid || e.lastCmd == nil {
		return nil, fmt.Errorf("output parameter %s is not readable before the command has executed", name)
	}
	v, _ := e.lastCmd.OutputValue(name)
	return v, nil
}

func (e *Executor) addRecords(records []any) error {
	for _, record := range records {
		if err := e.AddParameters(record); err != nil {
			return err
		}
	}
	return nil
}

// --- execution pipeline ---

// run is the single pipeline shared by every execute variant.
func (e *Executor) run(ctx context.Context, kind string, invoke func(ctx context.Context, cmd client.Command) (any, error), readToCompletion bool) (any, error) {
	e.faulted = false
	if e.cmd == nil {
		return nil, ErrNoCommand
	}

	e.wireHandlers()

	if e.conn.State() != client.StateOpen {
		if err := e.conn.Open(ctx); err != nil {
			return nil, e.dispatchError(err)
		}
	}

	cc := e.bindCommand()
	e.lastCmd = cc

	info := &ExecInfo{
		Kind:        kind,
		Description: e.Describe(),
		Args:        e.argValues(),
	}

	handler := func(ctx context.Context, info *ExecInfo) *ExecResult {
		v, err := invoke(ctx, cc)
		return &ExecResult{Value: v, Err: err}
	}
	for i := len(e.mdls) - 1; i >= 0; i-- {
		handler = e.mdls[i](handler)
	}

	start := time.Now()
	res := handler(ctx, info)
	e.lastElapsed = time.Since(start)

	var value any
	if res.Err != nil {
		if fatal := e.dispatchError(res.Err); fatal != nil {
			return nil, fatal
		}
		// Fault swallowed by handlers: the execution still counts as
		// completed and the post-execution hooks run with a zero result.
	} else {
		value = res.Value
	}

	e.execCount++
	ev := ExecEvent{Kind: kind, Description: info.Description, Elapsed: e.lastElapsed, Count: e.execCount}
	for _, fn := range e.execFns {
		fn(e, ev)
	}
	e.log.Command(info.Description, e.lastElapsed, info.Args...)

	if readToCompletion {
		e.completeRead()
	}
	return value, nil
}

// runQuery runs the pipeline with a scope-bound row cursor: the cursor is
// acquired for consume and released on every exit path before run returns.
func (e *Executor) runQuery(ctx context.Context, kind string, behavior client.Behavior, consume func(rows client.Rows) (any, error), readToCompletion bool) (any, error) {
	return e.run(ctx, kind, func(ctx context.Context, cmd client.Command) (any, error) {
		rows, err := cmd.Query(ctx, behavior)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return consume(rows)
	}, readToCompletion)
}

// dispatchError applies the suppress-or-propagate policy, evaluated at the
// moment of the failing operation. Bypass-marked errors surface unchanged.
func (e *Executor) dispatchError(err error) error {
	var be bypassError
	if errors.As(err, &be) {
		return be.err
	}
	if len(e.errFns) == 0 {
		return fmt.Errorf("%w: %s: %w", ErrExecution, e.Describe(), err)
	}
	for _, fn := range e.errFns {
		fn(e, err)
	}
	e.faulted = true
	return nil
}

// bindCommand creates the client command and pushes all current parameters,
// declared outputs, and the return-value parameter into it. Nil values are
// bound as explicit SQL NULL, never omitted.
func (e *Executor) bindCommand() client.Command {
	cc := e.conn.Command(e.cmd.kind, e.cmd.text)
	for _, name := range e.params.names {
		cc.Bind(client.Param{Name: name, Value: e.params.values[name], Direction: client.DirectionIn})
	}
	for _, out := range e.cmd.outputs {
		cc.Bind(out)
	}
	if e.cmd.hasReturn {
		cc.Bind(client.Param{Name: ReturnParamName, Direction: client.DirectionReturnValue})
	}
	return cc
}

func (e *Executor) argValues() []any {
	out := make([]any, 0, e.params.len())
	for _, name := range e.params.names {
		out = append(out, e.params.values[name])
	}
	return out
}

// completeRead is the data-read completion hook: it closes the connection
// iff auto-close is enabled and the connection is still open.
func (e *Executor) completeRead() {
	if e.autoClose && e.conn.State() == client.StateOpen {
		if err := e.conn.Close(); err != nil {
			e.log.Warn("closing connection after read: %v", err)
		}
	}
}

// --- non-query variants ---

// execNonQuery runs the command without a cursor and records the affected
// row count.
func (e *Executor) execNonQuery(ctx context.Context) (int64, error) {
	v, err := e.run(ctx, KindNonQuery, func(ctx context.Context, cmd client.Command) (any, error) {
		res, err := cmd.Exec(ctx)
		if err != nil {
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			n = 0
		}
		return n, nil
	}, true)
	if err != nil {
		return 0, err
	}
	n, _ := v.(int64)
	e.recordsAffected = n
	if !e.faulted {
		e.outputsValid = true
	}
	return n, nil
}

// ExecuteNonQuery runs the pending command without producing rows and sets
// RecordsAffected.
func (e *Executor) ExecuteNonQuery(ctx context.Context) error {
	_, err := e.execNonQuery(ctx)
	return err
}

// ExecuteRecordsAffected runs the pending command without producing rows and
// returns the affected-row count.
func (e *Executor) ExecuteRecordsAffected(ctx context.Context) (int64, error) {
	return e.execNonQuery(ctx)
}

// ExecuteReturnValue runs the pending stored procedure and converts its
// return-value parameter to T. It fails with ErrNoReturnValue when no
// stored procedure return-value parameter exists.
func ExecuteReturnValue[T any](ctx context.Context, e *Executor) (T, error) {
	var zero T
	if e.cmd == nil || !e.cmd.hasReturn {
		return zero, ErrNoReturnValue
	}
	if _, err := e.execNonQuery(ctx); err != nil {
		return zero, err
	}
	if e.faulted {
		return zero, nil
	}
	v, _ := e.lastCmd.OutputValue(ReturnParamName)
	return as[T](v)
}
