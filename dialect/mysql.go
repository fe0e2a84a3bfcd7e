package dialect

import (
	"fmt"
	"strings"
)

// MySQL dialect implementation
type mysql struct{}

func init() {
	Register("mysql", &mysql{})
}

func (d *mysql) Name() string {
	return "mysql"
}

func (d *mysql) Quote(name string) string {
	return fmt.Sprintf("`%s`", name)
}

func (d *mysql) Placeholder(index int) string {
	return "?"
}

func (d *mysql) CallSQL(proc string, paramCount int) (string, error) {
	var placeholders []string
	for i := 0; i < paramCount; i++ {
		placeholders = append(placeholders, "?")
	}
	return fmt.Sprintf("CALL %s(%s)", d.Quote(proc), strings.Join(placeholders, ", ")), nil
}

func (d *mysql) LastIdentitySQL() string {
	return "SELECT LAST_INSERT_ID()"
}

func (d *mysql) UseDatabaseSQL(name string) (string, bool) {
	return fmt.Sprintf("USE %s", d.Quote(name)), true
}
