package client

import (
	"context"
	"database/sql"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/shrek82/jsql/dialect"
)

const defaultStmtCacheSize = 64

// StdConn adapts a *sql.DB to the Conn interface. It pins one *sql.Conn for
// the open/close lifecycle so that session state (USE, temp tables, identity
// functions) survives across commands, and keeps an LRU cache of prepared
// statements on that connection.
//
// database/sql exposes no server info messages, so OnInfo listeners are
// retained but never invoked by this adapter.
type StdConn struct {
	db      *sql.DB
	dialect dialect.Dialect
	conn    *sql.Conn
	state   ConnState

	stmts *lru.Cache

	infoFns  []func(string)
	stateFns []func(StateChange)
}

// StdConnOption configures a StdConn.
type StdConnOption func(*StdConn)

// WithStmtCacheSize sets the prepared statement cache capacity.
func WithStmtCacheSize(n int) StdConnOption {
	return func(c *StdConn) {
		c.stmts, _ = lru.NewWithEvict(n, closeStmt)
	}
}

// NewStdConn wraps db for the given dialect.
func NewStdConn(db *sql.DB, d dialect.Dialect, opts ...StdConnOption) *StdConn {
	c := &StdConn{
		db:      db,
		dialect: d,
		state:   StateClosed,
	}
	c.stmts, _ = lru.NewWithEvict(defaultStmtCacheSize, closeStmt)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func closeStmt(_, value any) {
	if stmt, ok := value.(*sql.Stmt); ok {
		stmt.Close()
	}
}

func (c *StdConn) Open(ctx context.Context) error {
	if c.state == StateOpen {
		return nil
	}
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return err
	}
	c.conn = conn
	c.setState(StateOpen)
	return nil
}

func (c *StdConn) Close() error {
	if c.state == StateClosed {
		return nil
	}
	// Cached statements are bound to the pinned connection.
	c.stmts.Purge()
	err := c.conn.Close()
	c.conn = nil
	c.setState(StateClosed)
	return err
}

func (c *StdConn) ChangeDatabase(ctx context.Context, name string) error {
	stmt, ok := c.dialect.UseDatabaseSQL(name)
	if !ok {
		return fmt.Errorf("dialect %s cannot switch databases on an open connection", c.dialect.Name())
	}
	if c.state != StateOpen {
		return fmt.Errorf("connection is not open")
	}
	_, err := c.conn.ExecContext(ctx, stmt)
	return err
}

func (c *StdConn) State() ConnState {
	return c.state
}

func (c *StdConn) OnInfo(fn func(string)) {
	c.infoFns = append(c.infoFns, fn)
}

func (c *StdConn) OnStateChange(fn func(StateChange)) {
	c.stateFns = append(c.stateFns, fn)
}

func (c *StdConn) setState(to ConnState) {
	from := c.state
	c.state = to
	for _, fn := range c.stateFns {
		fn(StateChange{From: from, To: to})
	}
}

func (c *StdConn) Command(kind CommandKind, text string) Command {
	return &stdCommand{conn: c, kind: kind, text: text}
}

// stmt returns a cached prepared statement for sqlText, preparing it on the
// pinned connection on first use.
func (c *StdConn) stmt(ctx context.Context, sqlText string) (*sql.Stmt, error) {
	if c.state != StateOpen {
		return nil, fmt.Errorf("connection is not open")
	}
	if cached, ok := c.stmts.Get(sqlText); ok {
		return cached.(*sql.Stmt), nil
	}
	stmt, err := c.conn.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	c.stmts.Add(sqlText, stmt)
	return stmt, nil
}

// stdCommand implements Command on top of a StdConn.
type stdCommand struct {
	conn   *StdConn
	kind   CommandKind
	text   string
	params []Param
	outs   map[string]*any
}

func (c *stdCommand) Text() string {
	return c.text
}

func (c *stdCommand) SetText(text string) {
	c.text = text
}

func (c *stdCommand) Bind(p Param) {
	c.params = append(c.params, p)
}

func (c *stdCommand) OutputValue(name string) (any, bool) {
	holder, ok := c.outs[name]
	if !ok {
		return nil, false
	}
	return *holder, true
}

// prepare renders the final driver SQL and argument list. Text commands use
// @name placeholders rewritten to the dialect's positional form; procedure
// commands are rendered through the dialect's call syntax. Output and
// return-value parameters are bound via sql.Out; whether the driver honors
// them is driver-dependent.
func (c *stdCommand) prepare() (string, []any, error) {
	var inputs []Param
	var outputs []Param
	for _, p := range c.params {
		if p.Direction == DirectionIn {
			inputs = append(inputs, p)
		} else {
			outputs = append(outputs, p)
		}
	}

	var sqlText string
	var args []any
	switch c.kind {
	case KindProcedure:
		call, err := c.conn.dialect.CallSQL(c.text, len(inputs))
		if err != nil {
			return "", nil, err
		}
		sqlText = call
		for _, p := range inputs {
			args = append(args, p.Value)
		}
	case KindTableDirect:
		sqlText = "SELECT * FROM " + c.conn.dialect.Quote(c.text)
	default:
		text, ordered, err := rewriteNamed(c.text, inputs, c.conn.dialect)
		if err != nil {
			return "", nil, err
		}
		sqlText = text
		args = ordered
	}

	c.outs = make(map[string]*any, len(outputs))
	for _, p := range outputs {
		holder := new(any)
		c.outs[p.Name] = holder
		args = append(args, sql.Named(p.Name, sql.Out{Dest: holder}))
	}
	return sqlText, args, nil
}

func (c *stdCommand) Exec(ctx context.Context) (Result, error) {
	sqlText, args, err := c.prepare()
	if err != nil {
		return nil, err
	}
	stmt, err := c.conn.stmt(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

func (c *stdCommand) Query(ctx context.Context, behavior Behavior) (Rows, error) {
	sqlText, args, err := c.prepare()
	if err != nil {
		return nil, err
	}
	stmt, err := c.conn.stmt(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	return &stdRows{rows: rows}, nil
}

// stdRows adapts *sql.Rows. ColumnBytes serves ranged reads from a one-time
// scan of the current row; chunk-exact streaming below the row level depends
// on the driver and is not guaranteed by this adapter.
type stdRows struct {
	rows    *sql.Rows
	scanned bool
	blobCol string
	blob    []byte
}

func (r *stdRows) Columns() ([]string, error) {
	return r.rows.Columns()
}

func (r *stdRows) Next() bool {
	r.scanned = false
	r.blob = nil
	return r.rows.Next()
}

func (r *stdRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r *stdRows) ColumnBytes(column string, offset int64, p []byte) (int, error) {
	if !r.scanned || r.blobCol != column {
		cols, err := r.rows.Columns()
		if err != nil {
			return 0, err
		}
		dests := make([]any, len(cols))
		found := false
		for i, col := range cols {
			if col == column {
				dests[i] = &r.blob
				found = true
			} else {
				dests[i] = new(sql.RawBytes)
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown column %s", column)
		}
		if err := r.rows.Scan(dests...); err != nil {
			return 0, err
		}
		r.scanned = true
		r.blobCol = column
	}

	if offset >= int64(len(r.blob)) {
		return 0, nil
	}
	return copy(p, r.blob[offset:]), nil
}

func (r *stdRows) Close() error {
	return r.rows.Close()
}

func (r *stdRows) Err() error {
	return r.rows.Err()
}
