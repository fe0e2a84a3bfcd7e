package core

import (
	"context"

	"github.com/shrek82/jsql/client"
)

// fakeConn scripts one connection for executor tests: the next command's
// result set, affected count, faults, and output values are set up front and
// every interaction is recorded.
type fakeConn struct {
	state client.ConnState

	openErr  error
	execErr  error
	queryErr error

	affected int64
	cols     []string
	rows     [][]any
	blob     []byte
	iterErr  error
	outputs  map[string]any

	opens    int
	closes   int
	database string
	infoFns  []func(string)
	stateFns []func(client.StateChange)

	cmds     []*fakeCommand
	lastRows *fakeRows
}

func (c *fakeConn) Open(ctx context.Context) error {
	if c.openErr != nil {
		return c.openErr
	}
	c.opens++
	c.setState(client.StateOpen)
	return nil
}

func (c *fakeConn) Close() error {
	if c.state == client.StateClosed {
		return nil
	}
	c.closes++
	c.setState(client.StateClosed)
	return nil
}

func (c *fakeConn) ChangeDatabase(ctx context.Context, name string) error {
	c.database = name
	return nil
}

func (c *fakeConn) State() client.ConnState { return c.state }

func (c *fakeConn) OnInfo(fn func(string)) { c.infoFns = append(c.infoFns, fn) }

func (c *fakeConn) OnStateChange(fn func(client.StateChange)) {
	c.stateFns = append(c.stateFns, fn)
}

func (c *fakeConn) Command(kind client.CommandKind, text string) client.Command {
	cmd := &fakeCommand{conn: c, kind: kind, text: text}
	c.cmds = append(c.cmds, cmd)
	return cmd
}

func (c *fakeConn) setState(to client.ConnState) {
	from := c.state
	c.state = to
	for _, fn := range c.stateFns {
		fn(client.StateChange{From: from, To: to})
	}
}

func (c *fakeConn) fireInfo(msg string) {
	for _, fn := range c.infoFns {
		fn(msg)
	}
}

type fakeCommand struct {
	conn     *fakeConn
	kind     client.CommandKind
	text     string
	params   []client.Param
	behavior client.Behavior
	execs    int
	queries  int
}

func (c *fakeCommand) Text() string        { return c.text }
func (c *fakeCommand) SetText(text string) { c.text = text }
func (c *fakeCommand) Bind(p client.Param) { c.params = append(c.params, p) }

func (c *fakeCommand) Exec(ctx context.Context) (client.Result, error) {
	c.execs++
	if c.conn.execErr != nil {
		return nil, c.conn.execErr
	}
	return fakeResult{affected: c.conn.affected}, nil
}

func (c *fakeCommand) Query(ctx context.Context, behavior client.Behavior) (client.Rows, error) {
	c.queries++
	c.behavior = behavior
	if c.conn.queryErr != nil {
		return nil, c.conn.queryErr
	}
	rows := &fakeRows{
		cols:    c.conn.cols,
		rows:    c.conn.rows,
		blob:    c.conn.blob,
		iterErr: c.conn.iterErr,
	}
	c.conn.lastRows = rows
	return rows, nil
}

func (c *fakeCommand) OutputValue(name string) (any, bool) {
	v, ok := c.conn.outputs[name]
	return v, ok
}

type fakeResult struct{ affected int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

type fakeRows struct {
	cols    []string
	rows    [][]any
	blob    []byte
	iterErr error

	idx    int
	cur    []any
	closed int

	chunkCalls int
	maxChunk   int
}

func (r *fakeRows) Columns() ([]string, error) { return r.cols, nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.cur = r.rows[r.idx]
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	for i, d := range dest {
		*(d.(*any)) = r.cur[i]
	}
	return nil
}

func (r *fakeRows) ColumnBytes(column string, offset int64, p []byte) (int, error) {
	r.chunkCalls++
	if offset >= int64(len(r.blob)) {
		return 0, nil
	}
	n := copy(p, r.blob[offset:])
	if n > r.maxChunk {
		r.maxChunk = n
	}
	return n, nil
}

func (r *fakeRows) Close() error {
	r.closed++
	return nil
}

func (r *fakeRows) Err() error { return r.iterErr }
