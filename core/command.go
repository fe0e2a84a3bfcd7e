package core

import (
	"fmt"
	"strings"

	"github.com/shrek82/jsql/client"
	"github.com/shrek82/jsql/fieldmap"
)

// ReturnParamName is the name under which a stored procedure's return value
// is bound and read back.
const ReturnParamName = "return_value"

// crudMode selects whether command text is caller-supplied or a derived,
// auto-regenerated function of the current parameters.
type crudMode int

const (
	crudNone crudMode = iota
	crudInsert
	crudUpdate
)

// command is the live command descriptor: one per executor at any time.
// For Insert/Update modes the text is a pure function of {table, parameter
// names, where clause} and is rebuilt after every parameter mutation.
type command struct {
	kind  client.CommandKind
	text  string
	mode  crudMode
	table string
	where string

	outputs   []client.Param
	hasReturn bool
}

// regenerate replaces the command text from the CRUD state and the given
// parameter names. It has no effect in None mode and no side effects beyond
// replacing the text field.
func (c *command) regenerate(names []string) {
	switch c.mode {
	case crudInsert:
		vals := make([]string, len(names))
		for i, n := range names {
			vals[i] = "@" + n
		}
		c.text = fmt.Sprintf("insert into %s (%s) values (%s)",
			c.table, strings.Join(names, ", "), strings.Join(vals, ", "))
	case crudUpdate:
		assigns := make([]string, len(names))
		for i, n := range names {
			assigns[i] = fmt.Sprintf("%s = @%s", n, n)
		}
		c.text = fmt.Sprintf("update %s set %s where %s",
			c.table, strings.Join(assigns, ", "), c.where)
	}
}

// describe renders the human-readable command surface used in diagnostics
// and error messages: raw SQL for text commands, an exec line with the
// bound values for procedures. The return-value parameter is excluded.
func (c *command) describe(inputs []fieldmap.Pair) string {
	if c.kind != client.KindProcedure {
		return c.text
	}

	parts := make([]string, 0, len(inputs)+len(c.outputs))
	for _, p := range inputs {
		parts = append(parts, fmt.Sprintf("@%s = %s", p.Name, describeValue(p.Value)))
	}
	for _, out := range c.outputs {
		parts = append(parts, fmt.Sprintf("@%s = output", out.Name))
	}
	if len(parts) == 0 {
		return "exec " + c.text
	}
	return fmt.Sprintf("exec %s %s", c.text, strings.Join(parts, ", "))
}

func describeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + val + "'"
	case []byte:
		return fmt.Sprintf("0x(%d bytes)", len(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}
