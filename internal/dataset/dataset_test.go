package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/bladebalance/internal/balance"
)

const header = "name,mass,grip_ref,cog_ref,hilt_ext,blade_ext,lever_ref,pair_1,pair_2,pair_3,pair_4\n"

func TestLoad_DerivedPositions(t *testing.T) {
	data := header + "Reference,800,100,130,95,900,140,,,,\n"

	coll, err := Load(strings.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if coll.Len() != 1 {
		t.Fatalf("expected 1 specimen, got %d", coll.Len())
	}

	s := coll.All()[0]
	if s.COM() != 30 || s.Length() != 800 || s.Pommel() != -5 {
		t.Errorf("expected com=30 length=800 pommel=-5, got com=%v length=%v pommel=%v", s.COM(), s.Length(), s.Pommel())
	}
	if _, ok := s.ROG(); ok {
		t.Error("expected absent rog without pairs")
	}
}

func TestLoad_Pairs(t *testing.T) {
	tests := []struct {
		name  string
		cells string
		want  []balance.Pair
	}{
		{"two pairs", "80,160,75,170", []balance.Pair{{Near: -20, Far: 60}, {Near: -25, Far: 70}}},
		{"blank skipped not zero", "80,,160,", []balance.Pair{{Near: -20, Far: 60}}},
		{"odd trailing discarded", "80,160,75,", []balance.Pair{{Near: -20, Far: 60}}},
		{"single value", ",,75,", nil},
		{"none", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := header + "S,800,100,105,95,900,140," + tt.cells + "\n"
			coll, err := Load(strings.NewReader(data), DefaultOptions())
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			got := coll.All()[0].Pairs()
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("pairs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_GeometricMean(t *testing.T) {
	data := header + "GM,1,0,5,-10,100,0,-20,30,-25,35\n"
	coll, err := Load(strings.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	rog, ok := coll.All()[0].ROG()
	if !ok {
		t.Fatal("expected rog")
	}
	if math.Abs(rog-27.386) > 1e-3 {
		t.Errorf("expected rog ~27.386, got %f", rog)
	}
}

func TestLoad_MissingField(t *testing.T) {
	data := header +
		"Good,800,100,130,95,900,140,,,,\n" +
		"NoMass,,100,130,95,900,140,,,,\n" +
		"BadGrip,800,abc,130,95,900,140,,,,\n"

	coll, err := Load(strings.NewReader(data), DefaultOptions())
	if err == nil {
		t.Fatal("expected row errors")
	}
	if coll == nil || coll.Len() != 1 {
		t.Fatalf("expected only the good specimen, got %v", coll)
	}
	if _, selErr := coll.Select("NoMass"); selErr == nil {
		t.Error("partial specimen entered the collection")
	}

	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("expected 2 row errors, got %d: %v", len(errs), err)
	}
	var mf *MissingFieldError
	if !errors.As(errs[0], &mf) || mf.Field != FieldMass || mf.Row != 2 {
		t.Errorf("expected missing mass on row 2, got %v", errs[0])
	}
	if !errors.Is(errs[1], ErrMissingField) {
		t.Errorf("expected unparseable grip_ref to be a missing field, got %v", errs[1])
	}
}

func TestLoad_NonFinite(t *testing.T) {
	data := header +
		"A,800,100,130,95,900,140,NaN,80,170,\n" +
		"B,NaN,100,130,95,900,140,,,,\n" +
		"C,800,100,130,-inf,900,140,,,,\n" +
		"D,800,100,130,95,900,140,110,Inf,,\n"

	coll, err := Load(strings.NewReader(data), DefaultOptions())
	if coll.Len() != 2 {
		t.Fatalf("expected A and D to load, got %v", coll.Names())
	}

	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("expected 2 row errors, got %d: %v", len(errs), err)
	}
	for i, field := range []string{FieldMass, FieldHiltExt} {
		var mf *MissingFieldError
		if !errors.As(errs[i], &mf) || mf.Field != field {
			t.Errorf("error %d: expected missing %s, got %v", i, field, errs[i])
		}
	}

	a, selErr := coll.Select("A")
	if selErr != nil {
		t.Fatal(selErr)
	}
	// NaN is skipped, so 80 pairs with 170.
	if diff := cmp.Diff([]balance.Pair{{Near: -20, Far: 70}}, a.Pairs()); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}
	rog, ok := a.ROG()
	if !ok || math.Abs(rog-math.Sqrt(50*40)) > 1e-9 {
		t.Errorf("expected rog %v, got %v (ok=%v)", math.Sqrt(50*40), rog, ok)
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	data := "name,grip_ref,cog_ref,hilt_ext,blade_ext,lever_ref\nX,100,130,95,900,140\n"
	coll, err := Load(strings.NewReader(data), DefaultOptions())
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if coll.Len() != 0 {
		t.Errorf("expected empty collection, got %d", coll.Len())
	}
}

func TestLoad_DomainError(t *testing.T) {
	data := header + "Bad,800,100,130,95,900,140,140,170,,\n"

	coll, err := Load(strings.NewReader(data), DefaultOptions())
	if !errors.Is(err, balance.ErrDomain) {
		t.Fatalf("expected ErrDomain, got %v", err)
	}
	var re *RowError
	if !errors.As(err, &re) || re.Name != "Bad" {
		t.Errorf("expected row error for Bad, got %v", err)
	}
	if coll.Len() != 0 {
		t.Errorf("rejected specimen entered the collection")
	}

	opts := DefaultOptions()
	opts.Specimen.PairPolicy = balance.PolicyDrop
	coll, err = Load(strings.NewReader(data), opts)
	if err != nil {
		t.Fatalf("drop policy should load the specimen: %v", err)
	}
	if len(coll.All()[0].DroppedPairs()) != 1 {
		t.Error("expected the dropped pair to be recorded")
	}
}

func TestLoad_DefaultNames(t *testing.T) {
	data := "mass,grip_ref,cog_ref,hilt_ext,blade_ext,lever_ref\n" +
		"1,100,130,95,900,140\n" +
		",100,130,95,900,140\n" +
		"1,100,130,95,900,140\n"

	coll, _ := Load(strings.NewReader(data), DefaultOptions())
	if diff := cmp.Diff([]string{"Specimen_1", "Specimen_2"}, coll.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	opts := DefaultOptions()
	opts.Logger = zap.New(core)

	data := header + "A,800,100,130,95,900,140,110,170,,\n" + "B,,100,130,95,900,140,,,,\n"
	_, _ = Load(strings.NewReader(data), opts)

	if n := logs.FilterMessage("loaded specimen").Len(); n != 1 {
		t.Errorf("expected 1 loaded log, got %d", n)
	}
	if n := logs.FilterMessage("skipping row").Len(); n != 1 {
		t.Errorf("expected 1 skip log, got %d", n)
	}
}

func TestCollection_Select(t *testing.T) {
	data := header + "Alpha,800,100,130,95,900,140,,,,\n" + "Beta,800,100,130,95,900,140,,,,\n"
	coll, err := Load(strings.NewReader(data), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	s, err := coll.Select("Beta")
	if err != nil || s.Name() != "Beta" {
		t.Fatalf("Select(Beta) = %v, %v", s, err)
	}

	_, err = coll.Select("Gamma")
	var se *SelectionError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SelectionError, got %v", err)
	}
	if diff := cmp.Diff([]string{"Alpha", "Beta"}, se.Available); diff != "" {
		t.Errorf("available mismatch:\n%s", diff)
	}
	if !errors.Is(err, ErrUnknownSpecimen) {
		t.Error("expected ErrUnknownSpecimen")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swords.csv")
	if err := os.WriteFile(path, []byte(header+"F,800,100,130,95,900,140,,,,\n"), 0644); err != nil {
		t.Fatal(err)
	}
	coll, err := LoadFile(path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if coll.Len() != 1 {
		t.Errorf("expected 1 specimen, got %d", coll.Len())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions()); err == nil {
		t.Error("expected error for missing file")
	}
}
