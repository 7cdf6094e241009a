package dataset

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "modernc.org/sqlite"
)

// readSQLite reads the configured table from a SQLite database file. The
// os.Stat guard keeps the driver from creating an empty database for a
// missing path.
func (l *Loader) readSQLite(path string) ([]rawRecord, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s`,
		quoteIdent(l.cols.ItemName), quoteIdent(l.cols.Price),
		quoteIdent(l.cols.Location), quoteIdent(l.cols.Unit),
		quoteIdent(l.table))
	rows, err := db.Query(query)
	if err != nil {
		// no such table / no such column both surface here
		return nil, fmt.Errorf("query table %q: %w", l.table, err)
	}
	defer rows.Close()

	var out []rawRecord
	for rows.Next() {
		var name, location, unit sql.NullString
		var price sql.NullFloat64
		if err := rows.Scan(&name, &price, &location, &unit); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r := rawRecord{
			Name:     name.String,
			Location: location.String,
			Unit:     unit.String,
		}
		if price.Valid {
			r.Price = strconv.FormatFloat(price.Float64, 'f', -1, 64)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
