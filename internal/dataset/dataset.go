// Package dataset loads specimen measurements from CSV tables.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/san-kum/bladebalance/internal/balance"
)

// Column names of the input table.
const (
	FieldName     = "name"
	FieldMass     = "mass"
	FieldGripRef  = "grip_ref"
	FieldCogRef   = "cog_ref"
	FieldHiltExt  = "hilt_ext"
	FieldBladeExt = "blade_ext"
	FieldLeverRef = "lever_ref"

	PairPrefix = "pair_"
)

var RequiredFields = []string{FieldMass, FieldGripRef, FieldCogRef, FieldHiltExt, FieldBladeExt, FieldLeverRef}

type Options struct {
	Specimen balance.Options
	Logger   *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Specimen: balance.DefaultOptions(),
		Logger:   zap.NewNop(),
	}
}

// Collection is an ordered set of loaded specimens.
type Collection struct {
	specimens []*balance.Specimen
}

func NewCollection(specimens ...*balance.Specimen) *Collection {
	return &Collection{specimens: specimens}
}

func (c *Collection) Len() int { return len(c.specimens) }

func (c *Collection) All() []*balance.Specimen {
	out := make([]*balance.Specimen, len(c.specimens))
	copy(out, c.specimens)
	return out
}

func (c *Collection) Names() []string {
	names := make([]string, len(c.specimens))
	for i, s := range c.specimens {
		names[i] = s.Name()
	}
	return names
}

// Select returns the first specimen with the given name.
func (c *Collection) Select(name string) (*balance.Specimen, error) {
	for _, s := range c.specimens {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, &SelectionError{Name: name, Available: c.Names()}
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, opts Options) (*Collection, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(file, opts)
}

// Load reads one specimen per row. Rows that fail are left out of the
// collection; their errors are combined into the returned error, which can
// be non-nil alongside a usable collection. Only an unreadable table returns
// a nil collection.
func Load(r io.Reader, opts Options) (*Collection, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: empty table")
	}

	columns := make(map[string]int, len(records[0]))
	var pairCols []int
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if _, dup := columns[h]; !dup {
			columns[h] = i
		}
		if strings.HasPrefix(h, PairPrefix) {
			pairCols = append(pairCols, i)
		}
	}

	coll := &Collection{}
	var errs error
	for i, record := range records[1:] {
		row := i + 1
		if isBlank(record) {
			continue
		}

		m, pairs, err := parseRow(row, record, columns, pairCols)
		if err != nil {
			log.Warn("skipping row", zap.Int("row", row), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		if m.Name == "" {
			m.Name = fmt.Sprintf("Specimen_%d", coll.Len()+1)
		}

		s, err := balance.NewSpecimen(m, pairs, opts.Specimen)
		if err != nil {
			rowErr := &RowError{Row: row, Name: m.Name, Err: err}
			log.Warn("skipping specimen", zap.Int("row", row), zap.String("name", m.Name), zap.Error(err))
			errs = multierr.Append(errs, rowErr)
			continue
		}

		for _, d := range s.DroppedPairs() {
			log.Warn("dropped pair",
				zap.String("name", s.Name()),
				zap.Float64("near", d.Pair.Near),
				zap.Float64("far", d.Pair.Far),
				zap.Error(d.Err))
		}
		rog, hasRog := s.ROG()
		log.Debug("loaded specimen",
			zap.String("name", s.Name()),
			zap.Float64("grip_ref", m.GripRef),
			zap.Float64("cog_ref", m.CogRef),
			zap.Int("pairs", len(s.Pairs())),
			zap.Float64("rog", rog),
			zap.Bool("has_rog", hasRog))
		coll.specimens = append(coll.specimens, s)
	}

	return coll, errs
}

func parseRow(row int, record []string, columns map[string]int, pairCols []int) (balance.Measurements, []balance.Pair, error) {
	var m balance.Measurements
	targets := map[string]*float64{
		FieldMass:     &m.Mass,
		FieldGripRef:  &m.GripRef,
		FieldCogRef:   &m.CogRef,
		FieldHiltExt:  &m.HiltExt,
		FieldBladeExt: &m.BladeExt,
		FieldLeverRef: &m.LeverRef,
	}
	for _, field := range RequiredFields {
		raw := cell(record, columns, field)
		v, err := strconv.ParseFloat(raw, 64)
		if raw == "" || err != nil || !finite(v) {
			return m, nil, &MissingFieldError{Row: row, Field: field, Value: raw}
		}
		*targets[field] = v
	}
	m.Name = cell(record, columns, FieldName)

	values := make([]float64, 0, len(pairCols))
	for _, col := range pairCols {
		if col >= len(record) {
			continue
		}
		raw := strings.TrimSpace(record[col])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return m, nil, fmt.Errorf("row %d: %w: %q", row, ErrInvalidPair, raw)
		}
		// NaN and Inf cells are missing readings.
		if !finite(v) {
			continue
		}
		values = append(values, v)
	}

	// An odd trailing value cannot form a pair and is discarded.
	pairs := make([]balance.Pair, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		pairs = append(pairs, balance.Pair{Near: values[i], Far: values[i+1]})
	}
	return m, pairs, nil
}

func cell(record []string, columns map[string]int, field string) string {
	idx, ok := columns[field]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
