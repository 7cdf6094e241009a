package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"pricelens/internal/logging"
)

// Loader reads a columnar source file and aggregates it into a Snapshot.
type Loader struct {
	cols   Columns
	table  string
	logger *logging.Logger
}

// NewLoader creates a Loader. table is only consulted for SQLite sources.
func NewLoader(cols Columns, table string, logger *logging.Logger) *Loader {
	if cols == (Columns{}) {
		cols = DefaultColumns()
	}
	if table == "" {
		table = "prices"
	}
	return &Loader{cols: cols, table: table, logger: logger}
}

// Load reads, cleans, and aggregates the source at path. It never fails past
// its boundary: a missing file, schema drift, or a parse error degrades to an
// empty Snapshot, with the reason logged. The source format is chosen by file
// extension (.csv/.tsv, .xlsx, .db/.sqlite/.sqlite3).
func (l *Loader) Load(path string) *Snapshot {
	rows, err := l.read(path)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			l.logger.Error("[dataset] source file not found at %s, using empty data", path)
		case errors.As(err, new(*schemaError)):
			l.logger.Error("[dataset] %v, using empty data", err)
		default:
			l.logger.Error("[dataset] failed to load %s: %v, using empty data", path, err)
		}
		return &Snapshot{}
	}

	snap, dropped := aggregate(rows)
	l.logger.Info("[dataset] loaded %d unique item combinations from %s (%d rows dropped)",
		len(snap.Records), filepath.Base(path), dropped)
	return snap
}

func (l *Loader) read(path string) ([]rawRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return l.readCSV(path)
	case ".xlsx":
		return l.readXLSX(path)
	case ".db", ".sqlite", ".sqlite3":
		return l.readSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported source format %q", filepath.Ext(path))
	}
}

// schemaError marks a required column missing from the source schema.
type schemaError struct {
	column string
}

func (e *schemaError) Error() string {
	return fmt.Sprintf("missing column %q in source schema", e.column)
}

// headerIndex resolves the four required columns against a header row,
// case-insensitively. Returns indexes in the order item, price, location, unit.
func (l *Loader) headerIndex(header []string) ([4]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var idx [4]int
	for i, name := range []string{l.cols.ItemName, l.cols.Price, l.cols.Location, l.cols.Unit} {
		j, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return idx, &schemaError{column: name}
		}
		idx[i] = j
	}
	return idx, nil
}

func (l *Loader) readCSV(path string) ([]rawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		r.Comma = '\t'
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &schemaError{column: l.cols.ItemName}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := l.headerIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []rawRecord
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		rows = append(rows, rowAt(rec, idx))
	}
	return rows, nil
}

func rowAt(rec []string, idx [4]int) rawRecord {
	at := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	return rawRecord{
		Name:     at(idx[0]),
		Price:    at(idx[1]),
		Location: at(idx[2]),
		Unit:     at(idx[3]),
	}
}

// aggregate drops invalid rows, groups the rest by (location, unit, name),
// and averages prices per group. Returned records are sorted by location,
// unit, name so repeated loads of the same input produce identical snapshots.
func aggregate(rows []rawRecord) (*Snapshot, int) {
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[Record]*acc)
	dropped := 0

	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		if name == "" || r.Location == "" || r.Unit == "" || r.Price == "" {
			dropped++
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(r.Price), 64)
		if err != nil {
			dropped++
			continue
		}
		key := Record{Location: r.Location, Unit: r.Unit, Name: name}
		a := groups[key]
		if a == nil {
			a = &acc{}
			groups[key] = a
		}
		a.sum += price
		a.n++
	}

	snap := &Snapshot{Records: make([]Record, 0, len(groups))}
	locSet := make(map[string]struct{})
	unitSet := make(map[string]struct{})
	for key, a := range groups {
		key.Price = round2(a.sum / float64(a.n))
		snap.Records = append(snap.Records, key)
		locSet[key.Location] = struct{}{}
		unitSet[key.Unit] = struct{}{}
	}
	sort.Slice(snap.Records, func(i, j int) bool {
		a, b := snap.Records[i], snap.Records[j]
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		return a.Name < b.Name
	})
	snap.Locations = sortedKeys(locSet)
	snap.Units = sortedKeys(unitSet)
	return snap, dropped
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
