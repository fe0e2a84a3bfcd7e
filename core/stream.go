package core

import (
	"context"
	"io"

	"github.com/shrek82/jsql/client"
)

const defaultStreamBufferSize = 32 * 1024

// ExecuteBinaryStream runs the pending command with a sequential single-row
// cursor and copies the named column's binary content to sink in chunks of
// at most bufferSize bytes, returning the number of bytes written. The
// column is never materialized in memory as a whole by this path.
//
// The cursor is released on every exit path, but the data-read completion
// hook does not run: the connection stays open regardless of the auto-close
// setting and remains the caller's to close (or to reuse).
func (e *Executor) ExecuteBinaryStream(ctx context.Context, column string, sink io.Writer, bufferSize int) (int64, error) {
	if bufferSize <= 0 {
		bufferSize = defaultStreamBufferSize
	}

	v, err := e.runQuery(ctx, KindStream, client.BehaviorSequential|client.BehaviorSingleRow, func(rows client.Rows) (any, error) {
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return nil, err
			}
			return nil, bypass(ErrNoRows)
		}

		buf := make([]byte, bufferSize)
		var written int64
		var offset int64
		for {
			n, err := rows.ColumnBytes(column, offset, buf)
			if err != nil {
				return written, err
			}
			if n == 0 {
				break
			}
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return written, bypass(werr)
			}
			offset += int64(n)
			written += int64(n)
		}
		return written, nil
	}, false)
	if err != nil {
		return 0, err
	}
	n, _ := v.(int64)
	return n, nil
}
