package core

import (
	"time"

	"github.com/shrek82/jsql/client"
)

// ExecEvent is the payload delivered to Executed handlers after a command
// runs to completion.
type ExecEvent struct {
	Kind        string
	Description string
	Elapsed     time.Duration
	Count       int64
}

// ErrorHandler receives underlying execution or connection-open faults.
// Registering at least one error handler switches the executor from
// propagating faults to swallowing them (see Executor docs).
type ErrorHandler func(e *Executor, err error)

// InfoHandler receives informational messages emitted by the server.
type InfoHandler func(e *Executor, msg string)

// StateChangeHandler receives connection state transitions.
type StateChangeHandler func(e *Executor, change client.StateChange)

// ExecutedHandler runs after every completed execution.
type ExecutedHandler func(e *Executor, ev ExecEvent)

// OnError appends an error handler. Handlers run in registration order.
func (e *Executor) OnError(fn ErrorHandler) *Executor {
	e.errFns = append(e.errFns, fn)
	return e
}

// OnInfo appends an informational message handler. Each registration adds a
// listener on the connection; there is no deduplication.
func (e *Executor) OnInfo(fn InfoHandler) *Executor {
	e.infoFns = append(e.infoFns, fn)
	return e
}

// OnStateChange appends a connection state change handler.
func (e *Executor) OnStateChange(fn StateChangeHandler) *Executor {
	e.stateFns = append(e.stateFns, fn)
	return e
}

// OnExecuted appends a post-execution handler.
func (e *Executor) OnExecuted(fn ExecutedHandler) *Executor {
	e.execFns = append(e.execFns, fn)
	return e
}

// wireHandlers attaches info and state-change handlers registered since the
// previous execution onto the connection.
func (e *Executor) wireHandlers() {
	for i := e.infoWired; i < len(e.infoFns); i++ {
		fn := e.infoFns[i]
		e.conn.OnInfo(func(msg string) { fn(e, msg) })
	}
	e.infoWired = len(e.infoFns)

	for i := e.stateWired; i < len(e.stateFns); i++ {
		fn := e.stateFns[i]
		e.conn.OnStateChange(func(change client.StateChange) { fn(e, change) })
	}
	e.stateWired = len(e.stateFns)
}
