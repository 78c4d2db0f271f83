package prop

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// PhotonFieldSampling draws the energy of the background photon involved in
// a discrete nucleon-photon interaction. The target density at photon energy
// eps is the product of the field's spectral density, boosted into the
// nucleon frame, and the total photo-hadronic cross-section: Breit-Wigner
// baryon resonances on top of a power-law threshold rise plus the multipion
// and diffractive high-energy continuum. Naming and unit conventions follow
// SOPHIA (photon energies in eV, invariants in GeV^2) to ease comparisons.
//
// A sample is drawn by rejection against a flat envelope at the scanned
// density maximum; the maximum is found once per (target, energy, redshift)
// and memoized, so the expensive normalization integral is not recomputed
// across repeated samples at the same kinematics.

// nucleon rest masses [GeV]
const (
	protonMassGeV  = 0.93827
	neutronMassGeV = 0.93947
)

// pion production threshold in the invariant s [GeV^2]
const sThreshold = 1.1646

// ErrSampleExhausted is returned when the rejection loop hits its retry
// budget without accepting a trial, which indicates pathological kinematics
// rather than bad luck.
var ErrSampleExhausted = errors.New("photon sampling: rejection retries exhausted")

// Background selects one of the built-in photon backgrounds.
type Background int

const (
	BackgroundCMB Background = iota + 1
	BackgroundIRB
)

// DefaultSampleMaxTrials bounds the rejection loop.
const DefaultSampleMaxTrials = 100000

type samplingKey struct {
	onProton bool
	energy   float64
	redshift float64
}

type samplingEnvelope struct {
	epsMin float64 // eV
	epsMax float64 // eV
	pMax   float64
}

// PhotonFieldSampling is safe for use from a single goroutine; share one per
// worker, not across workers.
type PhotonFieldSampling struct {
	field     PhotonField // nil for the built-in CMB closed form
	name      string
	maxTrials int
	rng       *rand.Rand

	mu        sync.Mutex
	envelopes map[samplingKey]samplingEnvelope
}

// NewPhotonFieldSampling selects a built-in background. The CMB uses a
// closed-form Planck density; the infrared background loads its tabulated
// field from the default registry.
func NewPhotonFieldSampling(bg Background, rng *rand.Rand) (*PhotonFieldSampling, error) {
	switch bg {
	case BackgroundCMB:
		return newSampling(nil, "CMB", rng), nil
	case BackgroundIRB:
		field, err := DefaultFieldRegistry().Field("IRB_Kneiske04")
		if err != nil {
			return nil, fmt.Errorf("photon sampling: %w", err)
		}
		return newSampling(field, field.Name(), rng), nil
	default:
		return nil, fmt.Errorf("photon sampling: unknown background flag %d", bg)
	}
}

// NewPhotonFieldSamplingField samples against an explicit photon field.
func NewPhotonFieldSamplingField(field PhotonField, rng *rand.Rand) *PhotonFieldSampling {
	return newSampling(field, field.Name(), rng)
}

func newSampling(field PhotonField, name string, rng *rand.Rand) *PhotonFieldSampling {
	return &PhotonFieldSampling{
		field:     field,
		name:      name,
		maxTrials: DefaultSampleMaxTrials,
		rng:       rng,
		envelopes: make(map[samplingKey]samplingEnvelope),
	}
}

// SetMaxTrials overrides the rejection retry budget.
func (s *PhotonFieldSampling) SetMaxTrials(n int) {
	if n > 0 {
		s.maxTrials = n
	}
}

func (s *PhotonFieldSampling) Description() string {
	return fmt.Sprintf("Photon field sampling on %s", s.name)
}

// SampleEps draws the energy [J] of a background photon interacting with a
// nucleon of the given energy [J] at redshift z. onProton selects the proton
// or neutron cross-section.
func (s *PhotonFieldSampling) SampleEps(onProton bool, energy, z float64) (float64, error) {
	mass := nucleonMassGeV(onProton)
	eIn := energy / GeV
	if eIn <= mass {
		return 0, fmt.Errorf("photon sampling: nucleon energy %g GeV at or below rest mass", eIn)
	}

	env, err := s.envelope(onProton, eIn, z)
	if err != nil {
		return 0, err
	}

	for trial := 0; trial < s.maxTrials; trial++ {
		eps := env.epsMin + s.rng.Float64()*(env.epsMax-env.epsMin)
		if s.rng.Float64()*env.pMax < s.probEps(eps, onProton, eIn, z) {
			return eps * ElectronVolt, nil
		}
	}
	return 0, fmt.Errorf("%w after %d trials (E=%g GeV, z=%g)", ErrSampleExhausted, s.maxTrials, eIn, z)
}

// envelope returns the sampling range and density maximum for the given
// kinematics, scanning roughly ten bins per e-fold on first use.
func (s *PhotonFieldSampling) envelope(onProton bool, eIn, z float64) (samplingEnvelope, error) {
	key := samplingKey{onProton: onProton, energy: eIn, redshift: z}
	s.mu.Lock()
	env, ok := s.envelopes[key]
	s.mu.Unlock()
	if ok {
		return env, nil
	}

	mass := nucleonMassGeV(onProton)
	pIn := math.Sqrt(eIn*eIn - mass*mass)

	// head-on threshold photon energy, boosted to the lab [eV]
	epsMin := 1e9 * (sThreshold - mass*mass) / (2 * (eIn + pIn))
	epsMax := s.maxPhotonEnergyEV()
	if epsMin >= epsMax {
		return samplingEnvelope{}, fmt.Errorf("photon sampling: no accessible photons (threshold %g eV above field support %g eV)", epsMin, epsMax)
	}

	bins := int(10*math.Log(epsMax/epsMin)) + 1
	pMax := 0.0
	for _, eps := range logspace(epsMin, epsMax, bins) {
		if p := s.probEps(eps, onProton, eIn, z); p > pMax {
			pMax = p
		}
	}
	if pMax <= 0 {
		return samplingEnvelope{}, fmt.Errorf("photon sampling: vanishing interaction probability (E=%g GeV, z=%g)", eIn, z)
	}

	env = samplingEnvelope{epsMin: epsMin, epsMax: epsMax, pMax: pMax}
	s.mu.Lock()
	s.envelopes[key] = env
	s.mu.Unlock()
	return env, nil
}

func (s *PhotonFieldSampling) maxPhotonEnergyEV() float64 {
	if s.field == nil {
		// Wien tail cutoff of the CMB
		return 0.1
	}
	return s.field.MaxPhotonEnergy() / ElectronVolt
}

// photonDensity returns the photon spectral density in SOPHIA units,
// photons/(eV cm^3), at photon energy eps [eV].
func (s *PhotonFieldSampling) photonDensity(eps, z float64) float64 {
	if eps <= 0 {
		return 0
	}
	if s.field == nil {
		// closed-form CMB, 8 pi / (hc)^3 in eV/cm^3 units
		x := eps / (8.619e-5 * cmbTemperature)
		if x > 700 {
			return 0
		}
		return 1.318e13 * eps * eps / math.Expm1(x)
	}
	// field density is per m^3 per J; convert to per cm^3 per eV
	return s.field.PhotonDensity(eps*ElectronVolt, z) * ElectronVolt * 1e-6
}

// probEps is the differential probability of encountering a photon of
// energy eps [eV]: the photon density weighted by the s-integral of
// (s - m^2) sigma over the accessible invariant-mass range.
func (s *PhotonFieldSampling) probEps(eps float64, onProton bool, eIn, z float64) float64 {
	density := s.photonDensity(eps, z)
	if density == 0 {
		return 0
	}
	mass := nucleonMassGeV(onProton)
	gamma := eIn / mass
	beta := math.Sqrt(1 - 1/(gamma*gamma))

	sMin := sThreshold
	sMax := mass*mass + 2*eps*1e-9*eIn*(1+beta)
	if sMax <= sMin {
		return 0
	}
	sIntegral := gaussInt(func(sInv float64) float64 {
		return functs(sInv, onProton)
	}, sMin, sMax)
	return density / (eps * eps) * sIntegral / (8 * beta * eIn * eIn) * 1e18 * 1e6
}

func nucleonMassGeV(onProton bool) float64 {
	if onProton {
		return protonMassGeV
	}
	return neutronMassGeV
}

// functs is the integrand (s - m^2) sigma_(nucleon gamma) of the
// normalization integral [GeV^2 mubarn].
func functs(sInv float64, onProton bool) float64 {
	mass := nucleonMassGeV(onProton)
	factor := sInv - mass*mass
	if factor <= 0 {
		return 0
	}
	epsPrime := factor / (2 * mass)
	return factor * crossSection(epsPrime, onProton)
}

// Baryon resonance tables, SOPHIA conventions: the first nine entries
// parameterize the proton resonances, the second nine the neutron ones.
var (
	resMass   = [18]float64{1.231, 1.440, 1.515, 1.525, 1.675, 1.680, 1.690, 1.895, 1.950, 1.231, 1.440, 1.515, 1.525, 1.675, 1.675, 1.690, 1.895, 1.950}
	resBGamma = [18]float64{5.6, 0.5, 4.6, 2.5, 1.0, 2.1, 2.0, 0.2, 1.0, 6.1, 0.3, 4.0, 2.5, 0.0, 0.2, 2.0, 0.2, 1.0}
	resWidth  = [18]float64{0.11, 0.35, 0.11, 0.1, 0.16, 0.125, 0.29, 0.35, 0.3, 0.11, 0.35, 0.11, 0.1, 0.16, 0.15, 0.29, 0.35, 0.3}
	resRatioJ = [18]float64{1, 0.5, 1, 0.5, 0.5, 1.5, 1, 1.5, 2, 1, 0.5, 1, 0.5, 0.5, 1.5, 1, 1.5, 2}
)

// crossSection is the total cross-section [mubarn] of the nucleon-photon
// interaction at rest-frame photon energy epsPrime [GeV]: the resonance sum,
// the direct single/double pion channels with their threshold rise, and the
// multipion, diffractive and fragmentation continua.
func crossSection(epsPrime float64, onProton bool) float64 {
	mass := nucleonMassGeV(onProton)
	sInv := mass*mass + 2*mass*epsPrime
	if sInv < sThreshold {
		return 0
	}

	idx := 0
	if !onProton {
		idx = 9
	}

	var crossRes, crossDir float64
	if epsPrime <= 10 {
		// Breit-Wigner resonances; the Delta(1232) has its own turn-on shape
		sig0 := func(i int) float64 {
			return 4.893089117 / (mass * mass) * resRatioJ[i+idx] * resBGamma[i+idx]
		}
		crossRes = breitWigner(sig0(0), resWidth[idx], resMass[idx], epsPrime, onProton) * quickRise(epsPrime, 0.152, 0.17)
		for i := 1; i < 9; i++ {
			crossRes += breitWigner(sig0(i), resWidth[i+idx], resMass[i+idx], epsPrime, onProton) * quickRise(epsPrime, 0.15, 0.38)
		}

		// direct channels
		crossDir1 := 92.7 * powerLawRise(epsPrime, 0.152, 0.25, 2.0) // single pion
		if epsPrime > 0.1 && epsPrime < 0.6 {
			crossDir1 += 40*math.Exp(-(epsPrime-0.29)*(epsPrime-0.29)/0.002) -
				15*math.Exp(-(epsPrime-0.37)*(epsPrime-0.37)/0.002)
		}
		crossDir2 := 37.7 * powerLawRise(epsPrime, 0.4, 0.6, 2.0) // double pion
		crossDir = crossDir1 + crossDir2
	}

	// fragmentation
	crossFrag2 := 80.3
	if !onProton {
		crossFrag2 = 60.2
	}
	crossFrag2 *= math.Pow(sInv, -0.34) * powerLawRise(epsPrime, 0.5, 0.634, 1.09)

	// multipion production and diffractive scattering
	var csMultidiff float64
	if epsPrime > 0.85 {
		ss1 := (epsPrime - 0.85) / 0.69
		ss2 := 29.3
		if !onProton {
			ss2 = 26.4
		}
		ss2 = ss2*math.Pow(sInv, -0.34) + 59.3*math.Pow(sInv, 0.095)
		csMultidiff = (1 - math.Exp(-ss1)) * ss2
		csMulti := 0.89 * csMultidiff

		// rescale the diffractive share against fragmentation
		ss1 = math.Pow(epsPrime-0.85, 0.75) / 0.64
		ss2 = 74.1*math.Pow(epsPrime, -0.44) + 62*math.Pow(sInv, 0.08)
		csTmp := 0.96 * (1 - math.Exp(-ss1)) * ss2
		crossDiffr1 := 0.14 * csTmp
		crossDiffr2 := 0.013 * csTmp
		crossDiffr := 0.11 * csMultidiff
		csDelta := crossFrag2 - (crossDiffr1 + crossDiffr2 - crossDiffr)
		if csDelta < 0 {
			crossFrag2 = 0
			csMulti += csDelta
		} else {
			crossFrag2 = csDelta
		}
		crossDiffr = crossDiffr1 + crossDiffr2
		csMultidiff = csMulti + crossDiffr
	}

	return clampNonNegative(crossRes + crossDir + csMultidiff + crossFrag2)
}

// powerLawRise is the threshold-rise shape of the direct channels: zero
// below xth, peaking at xmax with slope parameter alpha.
func powerLawRise(x, xth, xmax, alpha float64) float64 {
	if x <= xth {
		return 0
	}
	a := alpha * xmax / xth
	return math.Pow((x-xth)/(xmax-xth), a-alpha) * math.Pow(x/xmax, -a)
}

// quickRise ramps linearly from 0 at th to 1 at th+w.
func quickRise(x, th, w float64) float64 {
	switch {
	case x <= th:
		return 0
	case x >= th+w:
		return 1
	default:
		return (x - th) / w
	}
}

// breitWigner is the relativistic Breit-Wigner profile of a resonance of
// peak cross-section sigma0 [mubarn], width gamma and mass dmm [GeV] at
// rest-frame photon energy epsPrime [GeV].
func breitWigner(sigma0, gamma, dmm, epsPrime float64, onProton bool) float64 {
	mass := nucleonMassGeV(onProton)
	sInv := mass*mass + 2*mass*epsPrime
	gam2s := gamma * gamma * sInv
	return sigma0 * (sInv / (epsPrime * epsPrime)) * gam2s /
		((sInv-dmm*dmm)*(sInv-dmm*dmm) + gam2s)
}
