package dialect

import (
	"fmt"
	"strings"
)

type sqlserver struct{}

func init() {
	Register("sqlserver", &sqlserver{})
}

func (d *sqlserver) Name() string {
	return "sqlserver"
}

func (d *sqlserver) Quote(name string) string {
	return fmt.Sprintf("[%s]", name)
}

func (d *sqlserver) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index)
}

func (d *sqlserver) CallSQL(proc string, paramCount int) (string, error) {
	var placeholders []string
	for i := 0; i < paramCount; i++ {
		placeholders = append(placeholders, fmt.Sprintf("@p%d", i+1))
	}
	return fmt.Sprintf("EXEC %s %s", d.Quote(proc), strings.Join(placeholders, ", ")), nil
}

func (d *sqlserver) LastIdentitySQL() string {
	return "SELECT SCOPE_IDENTITY()"
}

func (d *sqlserver) UseDatabaseSQL(name string) (string, bool) {
	return fmt.Sprintf("USE %s", d.Quote(name)), true
}
