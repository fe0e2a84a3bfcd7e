package dialect

// Dialect represents the interface for database-specific SQL rendering.
// Each database (MySQL, PostgreSQL, SQLite, SQL Server) must implement this
// interface to be usable by the command executor.
type Dialect interface {
	// Name returns the driver name the dialect is registered under.
	Name() string
	// Quote wraps a name (table, column, procedure) in database-specific quotes.
	Quote(name string) string
	// Placeholder returns the positional bind placeholder for the driver,
	// 1-based (e.g. "?" for MySQL, "$1" for PostgreSQL, "@p1" for SQL Server).
	Placeholder(index int) string
	// CallSQL renders the statement that invokes a stored procedure with the
	// given number of input parameters.
	CallSQL(proc string, paramCount int) (string, error)
	// LastIdentitySQL returns the clause that fetches the identity value
	// generated by the current session's last insert.
	LastIdentitySQL() string
	// UseDatabaseSQL returns the statement switching the active database,
	// or false when the engine does not support switching on a live connection.
	UseDatabaseSQL(name string) (string, bool)
}

var dialects = make(map[string]Dialect)

// Register registers a new dialect for a given driver name.
func Register(name string, d Dialect) {
	dialects[name] = d
}

// Get retrieves a registered dialect by driver name.
func Get(name string) (Dialect, bool) {
	d, ok := dialects[name]
	return d, ok
}
