package repository

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateIdentifier guards every table and column name spliced into SQL.
func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q (must match %s)", ErrInvalidIdentifier, name, identifierPattern)
	}
	return nil
}

// Dialect holds the per-backend SQL differences.
type Dialect struct {
	// Name is the configuration name: mysql, postgres or sqlite.
	Name string
	// Driver is the database/sql driver name.
	Driver string

	quoteChar   byte
	numbered    bool
	floatType   string
	integerType string
	textType    string
}

// Supported dialects.
var (
	MySQL    = Dialect{Name: "mysql", Driver: "mysql", quoteChar: '`', floatType: "DOUBLE", integerType: "BIGINT", textType: "VARCHAR(255)"}
	Postgres = Dialect{Name: "postgres", Driver: "pgx", quoteChar: '"', numbered: true, floatType: "DOUBLE PRECISION", integerType: "BIGINT", textType: "TEXT"}
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite", quoteChar: '"', floatType: "REAL", integerType: "INTEGER", textType: "TEXT"}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// Quote returns name as a quoted identifier. name must already be validated.
func (d Dialect) Quote(name string) string {
	q := string(d.quoteChar)
	return q + name + q
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// DSNConfig holds connection settings for DSN.
type DSNConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Charset  string
}

// DSN builds the driver connection string. For SQLite Name is the file path
// (":memory:" works).
func (d Dialect) DSN(c DSNConfig) string {
	addr := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	switch d.Name {
	case MySQL.Name:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = c.Name
		if c.Charset != "" {
			mc.Params = map[string]string{"charset": c.Charset}
		}
		return mc.FormatDSN()
	case Postgres.Name:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   addr,
			Path:   "/" + c.Name,
		}
		if c.Charset != "" {
			u.RawQuery = url.Values{"client_encoding": {pgEncoding(c.Charset)}}.Encode()
		}
		return u.String()
	default:
		return c.Name
	}
}

// pgEncoding maps MySQL charset names onto PostgreSQL encodings.
func pgEncoding(charset string) string {
	switch strings.ToLower(charset) {
	case "utf8", "utf8mb4", "utf8mb3":
		return "UTF8"
	default:
		return charset
	}
}
