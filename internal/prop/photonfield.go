package prop

import (
	"fmt"
	"math"
)

// PhotonField models the spectral number density of an ambient photon
// background. PhotonDensity returns the comoving density per unit photon
// energy [1/(m^3 J)]; it is non-negative everywhere and zero outside a
// tabulated field's domain. RedshiftScaling is the overall comoving scaling
// factor of an evolving field, 1 at z = 0 by convention and identically 1
// for non-evolving fields.
//
// Fields are immutable after construction and safe to share across any
// number of concurrently stepped candidates.
type PhotonField interface {
	PhotonDensity(ePhoton, z float64) float64
	RedshiftScaling(z float64) float64
	Name() string
	RedshiftDependent() bool

	// MaxPhotonEnergy is the upper edge of the field's support [J], used
	// by samplers to bound the accessible photon-energy range.
	MaxPhotonEnergy() float64
}

// TabularPhotonField interpolates a photon field from tabulated data:
// a strictly increasing photon energy grid paired with densities, and
// optionally a redshift grid paired with scaling factors.
type TabularPhotonField struct {
	name              string
	redshiftDependent bool
	energies          []float64 // J, strictly increasing
	densities         []float64 // 1/(m^3 J)
	redshifts         []float64
	scalings          []float64
}

// NewTabularPhotonField loads a tabulated field from the data directory.
// It expects <name>_photonEnergy.txt and <name>_photonDensity.txt, plus
// <name>_redshift.txt (redshift and scaling columns) for redshift-dependent
// fields. Construction fails on missing or malformed data; no partially
// initialized field is ever returned.
func NewTabularPhotonField(name string, redshiftDependent bool) (*TabularPhotonField, error) {
	energies, err := readColumn(DataPath(name + "_photonEnergy.txt"))
	if err != nil {
		return nil, fmt.Errorf("photon field %s: %w", name, err)
	}
	densities, err := readColumn(DataPath(name + "_photonDensity.txt"))
	if err != nil {
		return nil, fmt.Errorf("photon field %s: %w", name, err)
	}

	var redshifts, scalings []float64
	if redshiftDependent {
		rows, err := readTable(DataPath(name+"_redshift.txt"), 2)
		if err != nil {
			return nil, fmt.Errorf("photon field %s: %w", name, err)
		}
		redshifts = make([]float64, len(rows))
		scalings = make([]float64, len(rows))
		for i, row := range rows {
			redshifts[i] = row[0]
			scalings[i] = row[1]
		}
	}

	return NewTabularPhotonFieldFromTables(name, energies, densities, redshifts, scalings)
}

// NewTabularPhotonFieldFromTables builds a tabulated field from in-memory
// tables, validating the grids.
func NewTabularPhotonFieldFromTables(name string, energies, densities, redshifts, scalings []float64) (*TabularPhotonField, error) {
	if len(energies) != len(densities) {
		return nil, fmt.Errorf("photon field %s: %d energies vs %d densities", name, len(energies), len(densities))
	}
	if len(energies) < 2 {
		return nil, fmt.Errorf("photon field %s: need at least 2 grid points", name)
	}
	if !strictlyIncreasing(energies) {
		return nil, fmt.Errorf("photon field %s: photon energy grid not strictly increasing", name)
	}
	for i, d := range densities {
		if d < 0 || math.IsNaN(d) {
			return nil, fmt.Errorf("photon field %s: invalid density %g at index %d", name, d, i)
		}
	}
	redshiftDependent := len(redshifts) > 0
	if redshiftDependent {
		if len(redshifts) != len(scalings) {
			return nil, fmt.Errorf("photon field %s: %d redshifts vs %d scalings", name, len(redshifts), len(scalings))
		}
		if !strictlyIncreasing(redshifts) {
			return nil, fmt.Errorf("photon field %s: redshift grid not strictly increasing", name)
		}
	}
	return &TabularPhotonField{
		name:              name,
		redshiftDependent: redshiftDependent,
		energies:          energies,
		densities:         densities,
		redshifts:         redshifts,
		scalings:          scalings,
	}, nil
}

func (f *TabularPhotonField) Name() string {
	return f.name
}

func (f *TabularPhotonField) RedshiftDependent() bool {
	return f.redshiftDependent
}

func (f *TabularPhotonField) PhotonDensity(ePhoton, z float64) float64 {
	return interpolate(ePhoton, f.energies, f.densities) * f.RedshiftScaling(z)
}

// RedshiftScaling interpolates the tabulated scaling, clamped to the edge
// values of the redshift grid.
func (f *TabularPhotonField) RedshiftScaling(z float64) float64 {
	if !f.redshiftDependent {
		return 1
	}
	return interpolateClamped(z, f.redshifts, f.scalings)
}

func (f *TabularPhotonField) MaxPhotonEnergy() float64 {
	return f.energies[len(f.energies)-1]
}

// BlackbodyPhotonField is a Planck spectrum at a fixed temperature.
type BlackbodyPhotonField struct {
	name        string
	temperature float64 // K
}

func NewBlackbodyPhotonField(name string, temperature float64) *BlackbodyPhotonField {
	return &BlackbodyPhotonField{name: name, temperature: temperature}
}

// NewCMB returns the cosmic microwave background, a 2.73 K blackbody.
func NewCMB() *BlackbodyPhotonField {
	return NewBlackbodyPhotonField("CMB", cmbTemperature)
}

const cmbTemperature = 2.73 // K

func (f *BlackbodyPhotonField) Name() string {
	return f.name
}

// RedshiftDependent is false: the comoving CMB spectrum does not evolve;
// consumers apply the (1+z)^3 physical-density factor themselves.
func (f *BlackbodyPhotonField) RedshiftDependent() bool {
	return false
}

// PhotonDensity is the Planck spectral number density
// 8 pi e^2 / (h c)^3 / (exp(e/kT) - 1).
func (f *BlackbodyPhotonField) PhotonDensity(ePhoton, z float64) float64 {
	if ePhoton <= 0 {
		return 0
	}
	hc := HPlanck * CLight
	x := ePhoton / (KBoltzmann * f.temperature)
	if x > 700 {
		return 0
	}
	return 8 * math.Pi * ePhoton * ePhoton / (hc * hc * hc) / math.Expm1(x)
}

func (f *BlackbodyPhotonField) RedshiftScaling(z float64) float64 {
	return 1
}

// MaxPhotonEnergy cuts the Wien tail where the occupation has dropped to
// e^-50 of the peak scale.
func (f *BlackbodyPhotonField) MaxPhotonEnergy() float64 {
	return 50 * KBoltzmann * f.temperature
}
