// Package ingest reads and validates tabular environmental measurements.
//
// The graph builder assumes pre-validated records; this package is the
// upstream gate that enforces the contract. It reads CSV with a header row,
// parses the eight numeric columns, and rejects rows whose region is empty
// or whose date does not start with a "YYYY-MM" token. Malformed dates are
// rejected here rather than coerced, so blind truncation downstream is safe.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/graph"
)

// Columns is the expected CSV header. Column order in the file is free;
// names are matched case-sensitively against this set.
var Columns = []string{
	"region", "date",
	"depth", "salinity", "temperature", "ph", "dissolved_oxygen",
	"fish_population", "plankton", "coral_coverage",
}

var yearMonthRe = regexp.MustCompile(`^\d{4}-\d{2}`)

// rowChecks carries the validator tags for the non-numeric columns.
// The numeric columns are validated by strconv during parsing.
type rowChecks struct {
	Region string `validate:"required"`
	Date   string `validate:"required,min=7,yearmonth"`
}

// Reader parses and validates measurement CSVs.
type Reader struct {
	validate *validator.Validate
}

// NewReader creates a reader with the measurement validation rules
// registered.
func NewReader() *Reader {
	v := validator.New()
	// Registration only fails for empty tag names.
	_ = v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		return yearMonthRe.MatchString(fl.Field().String())
	})
	return &Reader{validate: v}
}

// ReadFile reads and validates a CSV file of measurement records.
func (r *Reader) ReadFile(path string) ([]graph.MeasurementRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return r.Read(f)
}

// Read reads and validates CSV measurement data. The first row must be a
// header naming all of [Columns] in any order. An input with a header and
// zero data rows yields an empty (valid) record slice - nothing to render.
func (r *Reader) Read(src io.Reader) ([]graph.MeasurementRecord, error) {
	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "missing header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range Columns {
		if _, ok := col[name]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "missing column %q", name)
		}
	}

	var records []graph.MeasurementRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
		}

		rec, err := r.parseRow(row, col)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "line %d", line)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ValidateRecord checks a single record against the ingestion contract:
// non-empty region, date at least 7 characters starting with "YYYY-MM".
// Exposed so other entry points (the HTTP API, tests) can enforce the same
// rules on records that did not arrive through a CSV.
func (r *Reader) ValidateRecord(rec graph.MeasurementRecord) error {
	checks := rowChecks{Region: rec.Region, Date: rec.Date}
	if err := r.validate.Struct(checks); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			switch fe.Field() {
			case "Region":
				return errors.New(errors.ErrCodeInvalidRecord, "region must not be empty")
			case "Date":
				return errors.New(errors.ErrCodeInvalidDate, "date %q must start with YYYY-MM", rec.Date)
			}
		}
		return errors.Wrap(errors.ErrCodeInvalidRecord, err, "validate record")
	}
	return nil
}

// parseRow converts one CSV row into a validated record.
func (r *Reader) parseRow(row []string, col map[string]int) (graph.MeasurementRecord, error) {
	field := func(name string) string {
		i := col[name]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}
	num := func(name string) (float64, error) {
		raw := field(name)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q: %q is not a number", name, raw)
		}
		return v, nil
	}

	rec := graph.MeasurementRecord{
		Region: field("region"),
		Date:   field("date"),
	}

	var err error
	if rec.Depth, err = num("depth"); err != nil {
		return rec, err
	}
	if rec.Salinity, err = num("salinity"); err != nil {
		return rec, err
	}
	if rec.Temperature, err = num("temperature"); err != nil {
		return rec, err
	}
	if rec.PH, err = num("ph"); err != nil {
		return rec, err
	}
	if rec.DissolvedOxygen, err = num("dissolved_oxygen"); err != nil {
		return rec, err
	}
	if rec.FishPopulation, err = num("fish_population"); err != nil {
		return rec, err
	}
	if rec.Plankton, err = num("plankton"); err != nil {
		return rec, err
	}
	if rec.CoralCoverage, err = num("coral_coverage"); err != nil {
		return rec, err
	}

	if err := r.ValidateRecord(rec); err != nil {
		return rec, err
	}
	return rec, nil
}
