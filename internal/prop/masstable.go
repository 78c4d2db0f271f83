package prop

import (
	"errors"
	"fmt"
	"sync"
)

// The nuclear mass table is loaded once from nuclear_mass.txt (rows of
// "Z N mass", mass in kg) and shared read-only afterwards. Entries are laid
// out as a dense Z-major grid with maxNeutronNumber+1 neutron slots per
// charge number.
const maxNeutronNumber = 30

// ErrNucleusNotFound is returned when a requested nucleus has no entry in
// the loaded mass table.
var ErrNucleusNotFound = errors.New("nucleus not in mass table")

type nuclearMassTable struct {
	masses []float64
}

var (
	massTableOnce sync.Once
	massTable     *nuclearMassTable
	massTableErr  error
)

// loadNuclearMasses reads a mass table file. Rows may appear in any order;
// missing entries stay zero and surface as ErrNucleusNotFound on lookup.
func loadNuclearMasses(path string) (*nuclearMassTable, error) {
	rows, err := readTable(path, 3)
	if err != nil {
		return nil, fmt.Errorf("nuclear mass table: %w", err)
	}
	t := &nuclearMassTable{}
	for _, row := range rows {
		z, n := int(row[0]), int(row[1])
		if z < 0 || n < 0 || n > maxNeutronNumber {
			return nil, fmt.Errorf("nuclear mass table: entry out of range: Z=%d N=%d", z, n)
		}
		idx := z*(maxNeutronNumber+1) + n
		if idx >= len(t.masses) {
			grown := make([]float64, idx+1)
			copy(grown, t.masses)
			t.masses = grown
		}
		t.masses[idx] = row[2]
	}
	return t, nil
}

func (t *nuclearMassTable) mass(z, n int) (float64, error) {
	if z < 0 || n < 0 || n > maxNeutronNumber {
		return 0, fmt.Errorf("%w: Z=%d N=%d", ErrNucleusNotFound, z, n)
	}
	idx := z*(maxNeutronNumber+1) + n
	if idx >= len(t.masses) || t.masses[idx] == 0 {
		return 0, fmt.Errorf("%w: Z=%d N=%d", ErrNucleusNotFound, z, n)
	}
	return t.masses[idx], nil
}

// NucleusMass returns the rest mass [kg] of the nucleus with the given
// identity. The table is loaded on first use; a missing entry is reported,
// never silently defaulted to zero.
func NucleusMass(id int) (float64, error) {
	massTableOnce.Do(func() {
		massTable, massTableErr = loadNuclearMasses(DataPath("nuclear_mass.txt"))
	})
	if massTableErr != nil {
		return 0, massTableErr
	}
	z := ChargeNumber(id)
	n := MassNumber(id) - z
	m, err := massTable.mass(z, n)
	if err != nil {
		return 0, fmt.Errorf("nucleus %d: %w", id, err)
	}
	return m, nil
}
