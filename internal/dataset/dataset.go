package dataset

// Record is one aggregated price entry. The (Location, Unit, Name) key is
// unique across a Snapshot.
type Record struct {
	Location string  `json:"location"`
	Unit     string  `json:"unit"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
}

// Snapshot is the aggregated dataset plus the sorted category indexes used
// to populate the UI dropdowns. It is built once at startup and never
// mutated afterwards, so it is safe for concurrent readers.
type Snapshot struct {
	Records   []Record
	Locations []string
	Units     []string
}

// Empty reports whether the snapshot carries no data, either because the
// source was empty or because loading degraded to an empty dataset.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Records) == 0
}

// Columns names the four required source columns.
type Columns struct {
	ItemName string
	Price    string
	Location string
	Unit     string
}

// DefaultColumns returns the column names of the upstream price-intelligence
// export.
func DefaultColumns() Columns {
	return Columns{
		ItemName: "subsubcategory",
		Price:    "avg_price",
		Location: "location",
		Unit:     "unit_raw",
	}
}

// rawRecord is one source row before cleaning. Price stays a string until
// aggregation so that all source readers share the same shape.
type rawRecord struct {
	Name     string
	Price    string
	Location string
	Unit     string
}
