// Package records reads spot records from the comma separated layout used by
// spot data exports:
//
//	id,latitude,longitude,name,kind,label,region,time,a,b,c,d
//	5842041f4e65fad6a7708816,34.0402,-118.735,Zuma Beach,Spot,Zuma Beach,LA County,6:30,4,2,20,10
package records

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	ErrTypeMalformedRecord = "records_malformed_record"

	// ColumnCount is the number of columns of a record line. Lines with a
	// different count are skipped.
	ColumnCount = 12
)

// Record is a spot record as read from a data file.
type Record struct {
	ID        string
	Latitude  float64
	Longitude float64
	Name      string
	Kind      string
	Label     string
	Region    string
	Time      string
	Extra     []string
}

// Reader reads records from a delimited text source.
type Reader struct {
	csv *csv.Reader

	skipped int
}

func NewReader(r io.Reader) *Reader {
	c := csv.NewReader(r)
	c.FieldsPerRecord = -1
	c.TrimLeadingSpace = true
	c.LazyQuotes = true

	return &Reader{csv: c}
}

// Read returns the next record. Lines without exactly ColumnCount columns are
// skipped and counted. A line whose coordinates do not parse returns an error
// typed ErrTypeMalformedRecord; reading can continue after it. Any other
// error comes from the underlying reader. Read returns io.EOF when the source
// is exhausted.
func (r *Reader) Read() (Record, error) {
	for {
		columns, err := r.csv.Read()
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if _, ok := err.(*csv.ParseError); ok {
			return Record{}, errors.New("parsing record failed").
				WithType(ErrTypeMalformedRecord).
				Wrap(err)
		}
		if err != nil {
			return Record{}, errors.New("reading records failed").Wrap(err)
		}

		if len(columns) != ColumnCount {
			r.skipped++
			continue
		}

		line, _ := r.csv.FieldPos(0)
		return parseRecord(line, columns)
	}
}

// Skipped returns the number of lines skipped because of their column count.
func (r *Reader) Skipped() int {
	return r.skipped
}

func parseRecord(line int, columns []string) (Record, error) {
	lat, err := parseCoordinate(columns[1])
	if err != nil {
		return Record{}, errors.New("invalid latitude").
			WithType(ErrTypeMalformedRecord).
			WithTag("line", line).
			WithTag("value", columns[1]).
			Wrap(err)
	}

	lon, err := parseCoordinate(columns[2])
	if err != nil {
		return Record{}, errors.New("invalid longitude").
			WithType(ErrTypeMalformedRecord).
			WithTag("line", line).
			WithTag("value", columns[2]).
			Wrap(err)
	}

	return Record{
		ID:        strings.TrimSpace(columns[0]),
		Latitude:  lat,
		Longitude: lon,
		Name:      columns[3],
		Kind:      columns[4],
		Label:     columns[5],
		Region:    columns[6],
		Time:      columns[7],
		Extra:     append([]string(nil), columns[8:]...),
	}, nil
}

func parseCoordinate(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("coordinate is not finite")
	}
	return f, nil
}

// ReadAll reads every record of r. Malformed lines do not stop the reading;
// their errors are returned alongside the records that parsed. A failure of
// the underlying reader ends the reading and is returned last.
func ReadAll(r io.Reader) ([]Record, []error) {
	reader := NewReader(r)

	var records []Record
	var errs []error
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			return records, errs
		}
		if errors.IsType(err, ErrTypeMalformedRecord) {
			errs = append(errs, err)
			continue
		}
		if err != nil {
			return records, append(errs, err)
		}
		records = append(records, rec)
	}
}

// LoadFile reads every record of the file at path. The returned error is
// non-nil only when the file cannot be opened; malformed lines are reported in
// the error slice.
func LoadFile(path string) ([]Record, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.New("opening records file failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer f.Close()

	records, errs := ReadAll(f)
	return records, errs, nil
}
