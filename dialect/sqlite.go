package dialect

import (
	"errors"
	"fmt"
)

// ErrProceduresUnsupported is returned by dialects of engines that have no
// stored procedure support.
var ErrProceduresUnsupported = errors.New("dialect does not support stored procedures")

type sqlite3 struct{}

func init() {
	Register("sqlite3", &sqlite3{})
}

func (d *sqlite3) Name() string {
	return "sqlite3"
}

func (d *sqlite3) Quote(name string) string {
	return fmt.Sprintf("`%s`", name)
}

func (d *sqlite3) Placeholder(index int) string {
	return "?"
}

func (d *sqlite3) CallSQL(proc string, paramCount int) (string, error) {
	return "", ErrProceduresUnsupported
}

func (d *sqlite3) LastIdentitySQL() string {
	return "SELECT last_insert_rowid()"
}

func (d *sqlite3) UseDatabaseSQL(name string) (string, bool) {
	return "", false
}
