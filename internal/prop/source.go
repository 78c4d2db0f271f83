package prop

import (
	"math"
	"math/rand"
)

// SourceProperty sets one aspect of a freshly emitted particle state:
// identity, energy, position or direction. Properties compose; a Source
// applies them in registration order.
type SourceProperty interface {
	Prepare(state *ParticleState)
}

// Source emits candidates whose initial state is shaped by its properties.
type Source struct {
	properties []SourceProperty
	redshift   float64
}

func NewSource(properties ...SourceProperty) *Source {
	return &Source{properties: properties}
}

func (s *Source) Add(p SourceProperty) {
	s.properties = append(s.properties, p)
}

// Prepare builds a particle state by applying every property to a proton
// default at the origin.
func (s *Source) Prepare() ParticleState {
	state := NewParticleState(NucleusID(1, 1), 1*EeV)
	for _, p := range s.properties {
		p.Prepare(&state)
	}
	return state
}

// SetRedshift sets the starting redshift of emitted candidates.
func (s *Source) SetRedshift(z float64) {
	s.redshift = z
}

// Emit creates an active candidate at trajectory start.
func (s *Source) Emit() *Candidate {
	c := NewCandidate(s.Prepare())
	c.SetRedshift(s.redshift)
	return c
}

// SourceParticleType fixes the emitted particle identity.
type SourceParticleType struct {
	id int
}

func NewSourceParticleType(id int) *SourceParticleType {
	return &SourceParticleType{id: id}
}

func (p *SourceParticleType) Prepare(state *ParticleState) {
	state.SetID(p.id)
}

// SourceEnergy fixes the emitted energy.
type SourceEnergy struct {
	energy float64
}

func NewSourceEnergy(energy float64) *SourceEnergy {
	return &SourceEnergy{energy: energy}
}

func (p *SourceEnergy) Prepare(state *ParticleState) {
	state.SetEnergy(p.energy)
}

// SourcePowerLawSpectrum draws the emitted energy from a power-law spectrum
// dN/dE ~ E^index between emin and emax, by inverse-CDF sampling.
type SourcePowerLawSpectrum struct {
	emin, emax float64
	index      float64
	rng        *rand.Rand
}

func NewSourcePowerLawSpectrum(emin, emax, index float64, rng *rand.Rand) *SourcePowerLawSpectrum {
	return &SourcePowerLawSpectrum{emin: emin, emax: emax, index: index, rng: rng}
}

func (p *SourcePowerLawSpectrum) Prepare(state *ParticleState) {
	u := p.rng.Float64()
	var e float64
	if p.index == -1 {
		e = p.emin * math.Exp(u*math.Log(p.emax/p.emin))
	} else {
		a := p.index + 1
		lo := math.Pow(p.emin, a)
		hi := math.Pow(p.emax, a)
		e = math.Pow(lo+u*(hi-lo), 1/a)
	}
	state.SetEnergy(e)
}

// SourcePosition emits from a fixed point.
type SourcePosition struct {
	position Vector3
}

func NewSourcePosition(position Vector3) *SourcePosition {
	return &SourcePosition{position: position}
}

func (p *SourcePosition) Prepare(state *ParticleState) {
	state.SetPosition(p.position)
}

// SourceDirection emits in a fixed direction.
type SourceDirection struct {
	direction Vector3
}

func NewSourceDirection(direction Vector3) *SourceDirection {
	return &SourceDirection{direction: direction}
}

func (p *SourceDirection) Prepare(state *ParticleState) {
	state.SetDirection(p.direction)
}

// SourceIsotropicEmission draws a uniformly random emission direction.
type SourceIsotropicEmission struct {
	rng *rand.Rand
}

func NewSourceIsotropicEmission(rng *rand.Rand) *SourceIsotropicEmission {
	return &SourceIsotropicEmission{rng: rng}
}

func (p *SourceIsotropicEmission) Prepare(state *ParticleState) {
	z := 2*p.rng.Float64() - 1
	phi := 2 * math.Pi * p.rng.Float64()
	r := math.Sqrt(1 - z*z)
	state.SetDirection(Vector3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z})
}
