package prop

import (
	"fmt"
	"math"
	"strings"
)

// ElectronPairProduction applies electron-pair production on background
// photons as a continuous, deterministic energy loss: the per-step number of
// interactions is large enough that the discrete process averages out.
//
// At construction the module integrates the Blumenthal pair-production
// integrand, in the Chodorowski et al. (1992) parameterization, against each
// photon field's spectral density on a log-spaced grid of per-nucleon
// energies. Multiple fields (e.g. CMB + infrared background) sum their
// tabulated loss rates. The table is immutable afterwards and shared
// read-only.
type ElectronPairProduction struct {
	fields    []PhotonField
	energies  []float64 // per-nucleon energy grid [J], strictly increasing
	lossRates []float64 // dE/dx for protons [J/m]
}

const (
	pairProdEnergyMin = 1e15 * ElectronVolt
	pairProdEnergyMax = 1e23 * ElectronVolt
	pairProdGridSize  = 81
)

// NewElectronPairProduction builds the loss-rate table for the given photon
// fields. At least one field is required.
func NewElectronPairProduction(fields ...PhotonField) (*ElectronPairProduction, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("pair production: at least one photon field required")
	}
	m := &ElectronPairProduction{
		fields:   fields,
		energies: logspace(pairProdEnergyMin, pairProdEnergyMax, pairProdGridSize),
	}
	m.lossRates = make([]float64, len(m.energies))
	for i, e := range m.energies {
		gamma := e / (protonMassGeV * GeV)
		rate := 0.0
		for _, f := range fields {
			rate += pairProductionLossRate(gamma, f)
		}
		m.lossRates[i] = clampNonNegative(rate)
	}
	return m, nil
}

// pairProductionLossRate returns -dE/dx [J/m] for a proton of Lorentz
// factor gamma in the given photon field at z = 0:
//
//	dE/dx = alpha r0^2 (me c^2)^2 Int_2^inf dk phi(k)/k^2 n(k me c^2 / 2 gamma)
func pairProductionLossRate(gamma float64, field PhotonField) float64 {
	if gamma <= 1 {
		return 0
	}
	// photon energies above the field support contribute nothing
	kappaMax := 2 * gamma * field.MaxPhotonEnergy() / ElectronRestEnergy
	if kappaMax <= 2 {
		return 0
	}
	integrand := func(kappa float64) float64 {
		eps := kappa * ElectronRestEnergy / (2 * gamma)
		return chodorowskiPhi(kappa) / (kappa * kappa) * field.PhotonDensity(eps, 0)
	}
	integral := gaussIntLog(integrand, 2, kappaMax, 64)
	return AlphaFine * ElectronRadius * ElectronRadius *
		ElectronRestEnergy * ElectronRestEnergy * integral
}

// chodorowskiPhi is the phi(kappa) parameterization of the pair-production
// energy-loss integrand (Chodorowski, Zdziarski & Sikora 1992).
func chodorowskiPhi(kappa float64) float64 {
	if kappa <= 2 {
		return 0
	}
	if kappa < 25 {
		c := [4]float64{0.8048, 0.1459, 1.137e-3, -3.879e-6}
		d := kappa - 2
		denom := 1.0
		pow := 1.0
		for i := 0; i < 4; i++ {
			pow *= d
			denom += c[i] * pow
		}
		return math.Pi / 12 * d * d * d * d / denom
	}
	lk := math.Log(kappa)
	num := -86.07 + 50.96*lk - 14.45*lk*lk + (8.0/3.0)*lk*lk*lk
	f := [3]float64{2.910, 78.35, 1837}
	denom := 1 - f[0]/kappa - f[1]/(kappa*kappa) - f[2]/(kappa*kappa*kappa)
	return kappa * num / denom
}

// Process looks up the interpolated proton loss rate at the candidate's
// per-nucleon energy and applies it scaled by charge, redshift and step
// length:
//
//	dE = Z^2 rate(E/A (1+z)) (1+z)^3 step
//
// Below the table floor the loss is negligible and clamped to zero; above
// the ceiling the rate is conservatively clamped to the highest tabulated
// value.
func (m *ElectronPairProduction) Process(c *Candidate) {
	a := c.Current.MassNumber()
	z := c.Current.ChargeNumber()
	if a == 0 || z == 0 {
		return
	}

	energy := c.Current.Energy()
	zs := c.Redshift()
	epa := energy / float64(a) * (1 + zs)
	if epa < m.energies[0] {
		return
	}
	rate := interpolateClamped(epa, m.energies, m.lossRates)

	dE := float64(z*z) * rate * math.Pow(1+zs, 3) * c.CurrentStep()
	c.Current.SetEnergy(energy - dE)
}

// LossRate returns the tabulated proton loss rate [J/m] at per-nucleon
// energy epa [J], with the same edge policy as Process.
func (m *ElectronPairProduction) LossRate(epa float64) float64 {
	if epa < m.energies[0] {
		return 0
	}
	return interpolateClamped(epa, m.energies, m.lossRates)
}

func (m *ElectronPairProduction) Description() string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name()
	}
	return fmt.Sprintf("Electron pair production on %s", strings.Join(names, "+"))
}
