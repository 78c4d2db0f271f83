package prop

import "math"

// SI base units: meter, second, kilogram, joule. All physical quantities in
// the engine are stored in SI; the named constants below are conversion
// factors, e.g. 100 * Mpc is a length in meters.
const (
	ElectronVolt = 1.602176634e-19 // J
	KeV          = 1e3 * ElectronVolt
	MeV          = 1e6 * ElectronVolt
	GeV          = 1e9 * ElectronVolt
	TeV          = 1e12 * ElectronVolt
	PeV          = 1e15 * ElectronVolt
	EeV          = 1e18 * ElectronVolt

	Parsec = 3.0856775814913673e16 // m
	Kpc    = 1e3 * Parsec
	Mpc    = 1e6 * Parsec
	Gpc    = 1e9 * Parsec

	CLight         = 2.99792458e8      // m/s
	HPlanck        = 6.62607015e-34    // J s
	KBoltzmann     = 1.380649e-23      // J/K
	AlphaFine      = 7.2973525693e-3   // fine-structure constant
	ElectronRadius = 2.8179403262e-15  // classical electron radius, m
	MassElectron   = 9.1093837015e-31  // kg
	AMU            = 1.66053906660e-27 // kg

	// electron rest energy, J
	ElectronRestEnergy = MassElectron * CLight * CLight
)

// NoLimit marks an unconstrained next-step proposal.
var NoLimit = math.Inf(1)
