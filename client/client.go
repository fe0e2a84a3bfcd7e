// Package client defines the boundary to the underlying database client: a
// connection with state events, a command with directional parameters, and a
// forward-only row cursor. The executor core depends only on these
// interfaces; StdConn adapts them onto database/sql.
package client

import "context"

// ConnState is the lifecycle state of a connection.
type ConnState int

const (
	StateClosed ConnState = iota
	StateOpen
)

func (s ConnState) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// StateChange describes a connection state transition.
type StateChange struct {
	From ConnState
	To   ConnState
}

// CommandKind is the kind of command being executed.
type CommandKind int

const (
	KindText CommandKind = iota
	KindProcedure
	KindTableDirect
)

// Direction is the binding direction of a parameter.
type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
	DirectionReturnValue
)

// Param is a single parameter bound to a command. A nil Value on an input
// parameter is bound as an explicit SQL NULL, never omitted.
type Param struct {
	Name      string
	Value     any
	Direction Direction
	Type      string // declared database type for Out/ReturnValue parameters
}

// Behavior is a bitmask of cursor options requested from Query.
type Behavior int

const (
	BehaviorDefault    Behavior = 0
	BehaviorSequential Behavior = 1 << iota
	BehaviorSingleRow
)

// Result reports the outcome of a non-query execution.
// *sql.Result values satisfy it directly.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Conn is a single database connection owned by one executor instance.
// It is not safe for concurrent use.
type Conn interface {
	// Open establishes the connection. Opening an already open connection
	// is a no-op.
	Open(ctx context.Context) error
	// Close releases the connection. Closing a closed connection is a no-op.
	Close() error
	// ChangeDatabase switches the active database on the open connection.
	ChangeDatabase(ctx context.Context, name string) error
	// State reports the current connection state.
	State() ConnState
	// OnInfo registers a listener for informational messages emitted by the
	// server. Every registration adds a listener; there is no deduplication.
	OnInfo(fn func(msg string))
	// OnStateChange registers a listener for connection state transitions.
	OnStateChange(fn func(StateChange))
	// Command creates a command of the given kind with the given text or
	// procedure name.
	Command(kind CommandKind, text string) Command
}

// Command is a single executable statement or procedure invocation.
type Command interface {
	// Text returns the current command text (or procedure name).
	Text() string
	// SetText replaces the command text.
	SetText(text string)
	// Bind attaches a parameter to the command.
	Bind(p Param)
	// Exec runs the command without producing a row cursor.
	Exec(ctx context.Context) (Result, error)
	// Query runs the command and returns a forward-only row cursor.
	Query(ctx context.Context, behavior Behavior) (Rows, error)
	// OutputValue returns the value of an output or return-value parameter
	// after Exec has completed.
	OutputValue(name string) (any, bool)
}

// Rows is a forward-only row cursor.
type Rows interface {
	// Columns returns the result set's column names.
	Columns() ([]string, error)
	// Next advances to the next row, reporting whether one exists.
	Next() bool
	// Scan copies the current row's columns into dest.
	Scan(dest ...any) error
	// ColumnBytes copies up to len(p) bytes of the named column's binary
	// content starting at offset. A zero count with a nil error marks the
	// end of the column data.
	ColumnBytes(column string, offset int64, p []byte) (int, error)
	// Close releases the cursor. It is safe to call more than once.
	Close() error
	// Err returns the error, if any, encountered during iteration.
	Err() error
}
