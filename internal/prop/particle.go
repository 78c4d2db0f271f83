package prop

// Particle identities follow the PDG 2006 Monte Carlo numbering scheme for
// nuclei, 10LZZZAAAI: a nucleus with charge number Z and mass number A is
// encoded as 1e9 + Z*1e4 + A*10. Non-nuclear identities (photons, leptons)
// keep their plain PDG codes and decode to Z = 0, A = 0.

// NucleusID encodes a nucleus with mass number a and charge number z.
func NucleusID(a, z int) int {
	return 1000000000 + z*10000 + a*10
}

// ChargeNumber decodes the charge number Z from a particle identity.
func ChargeNumber(id int) int {
	if id < 0 {
		id = -id
	}
	if id < 1000000000 {
		return 0
	}
	return (id % 1000000000) / 10000
}

// MassNumber decodes the mass number A from a particle identity.
func MassNumber(id int) int {
	if id < 0 {
		id = -id
	}
	if id < 1000000000 {
		return 0
	}
	return (id % 10000) / 10
}

// ParticleState is the physical state of a particle at one point of its
// trajectory: identity, energy, position and direction of flight.
type ParticleState struct {
	id        int
	energy    float64 // J
	position  Vector3 // m
	direction Vector3 // unit vector
}

// NewParticleState returns a state with the given identity and energy,
// at the origin, moving along +x.
func NewParticleState(id int, energy float64) ParticleState {
	s := ParticleState{direction: Vector3{X: 1}}
	s.SetID(id)
	s.SetEnergy(energy)
	return s
}

func (s *ParticleState) ID() int {
	return s.id
}

func (s *ParticleState) SetID(id int) {
	s.id = id
}

func (s *ParticleState) Energy() float64 {
	return s.energy
}

// SetEnergy sets the particle energy, clamped to be non-negative.
func (s *ParticleState) SetEnergy(e float64) {
	if e < 0 {
		e = 0
	}
	s.energy = e
}

func (s *ParticleState) Position() Vector3 {
	return s.position
}

func (s *ParticleState) SetPosition(p Vector3) {
	s.position = p
}

func (s *ParticleState) Direction() Vector3 {
	return s.direction
}

// SetDirection sets the direction of flight. The vector is renormalized so
// the stored direction is always unit length.
func (s *ParticleState) SetDirection(d Vector3) {
	s.direction = d.Normalized()
}

func (s *ParticleState) ChargeNumber() int {
	return ChargeNumber(s.id)
}

func (s *ParticleState) MassNumber() int {
	return MassNumber(s.id)
}

// Rigidity returns the particle energy divided by its charge number.
// A chargeless particle has infinite rigidity by convention.
func (s *ParticleState) Rigidity() float64 {
	z := s.ChargeNumber()
	if z == 0 {
		return NoLimit
	}
	return s.energy / float64(z)
}

// Mass returns the rest mass of the nucleus from the nuclear mass table.
func (s *ParticleState) Mass() (float64, error) {
	return NucleusMass(s.id)
}

// LorentzFactor returns E / (m c^2) for the nucleus.
func (s *ParticleState) LorentzFactor() (float64, error) {
	m, err := s.Mass()
	if err != nil {
		return 0, err
	}
	return s.energy / (m * CLight * CLight), nil
}
