package dialect

import (
	"fmt"
	"strings"
)

// PostgreSQL dialect implementation
type postgres struct{}

func init() {
	Register("postgres", &postgres{})
}

func (d *postgres) Name() string {
	return "postgres"
}

func (d *postgres) Quote(name string) string {
	// PostgreSQL uses double quotes for identifiers
	return fmt.Sprintf(`"%s"`, name)
}

func (d *postgres) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *postgres) CallSQL(proc string, paramCount int) (string, error) {
	var placeholders []string
	for i := 0; i < paramCount; i++ {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}
	return fmt.Sprintf("CALL %s(%s)", d.Quote(proc), strings.Join(placeholders, ", ")), nil
}

func (d *postgres) LastIdentitySQL() string {
	return "SELECT LASTVAL()"
}

func (d *postgres) UseDatabaseSQL(name string) (string, bool) {
	// PostgreSQL cannot switch databases on an open connection
	return "", false
}
