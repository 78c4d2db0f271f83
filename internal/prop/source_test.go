package prop

import (
	"math"
	"math/rand"
	"testing"
)

func TestSourceFixedProperties(t *testing.T) {
	source := NewSource(
		NewSourceParticleType(NucleusID(56, 26)),
		NewSourceEnergy(10*EeV),
		NewSourcePosition(Vector3{X: 50 * Mpc}),
		NewSourceDirection(Vector3{X: 0, Y: 0, Z: 2}),
	)
	source.SetRedshift(0.3)

	c := source.Emit()
	if !c.IsActive() {
		t.Errorf("emitted candidate should be active")
	}
	if got := c.Current.ID(); got != NucleusID(56, 26) {
		t.Errorf("particle id = %d", got)
	}
	if got := c.Current.Energy(); got != 10*EeV {
		t.Errorf("energy = %g EeV, want 10", got/EeV)
	}
	if got := c.Current.Position().X; got != 50*Mpc {
		t.Errorf("position x = %g Mpc, want 50", got/Mpc)
	}
	if got := c.Current.Direction(); got != (Vector3{Z: 1}) {
		t.Errorf("direction = %v, want unit +z", got)
	}
	if got := c.Redshift(); got != 0.3 {
		t.Errorf("redshift = %g, want 0.3", got)
	}
	if c.Initial != c.Current {
		t.Errorf("emitted candidate should start with initial == current")
	}
}

func TestSourceDefaultsToProton(t *testing.T) {
	c := NewSource().Emit()
	if got := c.Current.ID(); got != NucleusID(1, 1) {
		t.Errorf("default particle id = %d, want proton", got)
	}
	if got := c.Current.Energy(); got != 1*EeV {
		t.Errorf("default energy = %g EeV, want 1", got/EeV)
	}
}

func TestSourcePowerLawSpectrumRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	spec := NewSourcePowerLawSpectrum(1*EeV, 100*EeV, -2, rng)

	for i := 0; i < 1000; i++ {
		var state ParticleState
		spec.Prepare(&state)
		e := state.Energy()
		if e < 1*EeV || e > 100*EeV {
			t.Fatalf("sampled energy %g EeV outside [1, 100]", e/EeV)
		}
	}
}

func TestSourcePowerLawSpectrumSlope(t *testing.T) {
	// for dN/dE ~ E^-2 on [1, 100] the fraction below 10 EeV is
	// (1 - 1/10) / (1 - 1/100) = 10/11
	rng := rand.New(rand.NewSource(13))
	spec := NewSourcePowerLawSpectrum(1*EeV, 100*EeV, -2, rng)

	const n = 20000
	below := 0
	for i := 0; i < n; i++ {
		var state ParticleState
		spec.Prepare(&state)
		if state.Energy() < 10*EeV {
			below++
		}
	}
	got := float64(below) / n
	want := 10.0 / 11.0
	if math.Abs(got-want) > 0.01 {
		t.Errorf("fraction below 10 EeV = %.3f, want %.3f", got, want)
	}
}

func TestSourcePowerLawSpectrumLogUniform(t *testing.T) {
	// index -1 is the special inverse-CDF case: log-uniform sampling, so
	// half the draws land below the geometric mean
	rng := rand.New(rand.NewSource(17))
	spec := NewSourcePowerLawSpectrum(1*EeV, 100*EeV, -1, rng)

	const n = 20000
	below := 0
	for i := 0; i < n; i++ {
		var state ParticleState
		spec.Prepare(&state)
		if state.Energy() < 10*EeV {
			below++
		}
	}
	got := float64(below) / n
	if math.Abs(got-0.5) > 0.02 {
		t.Errorf("fraction below the geometric mean = %.3f, want 0.5", got)
	}
}

func TestSourceIsotropicEmission(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	iso := NewSourceIsotropicEmission(rng)

	var sum Vector3
	const n = 5000
	for i := 0; i < n; i++ {
		var state ParticleState
		iso.Prepare(&state)
		d := state.Direction()
		if math.Abs(d.Length()-1) > 1e-12 {
			t.Fatalf("direction %v is not unit length", d)
		}
		sum = sum.Add(d)
	}
	// directions average out for an isotropic distribution
	if got := sum.Scale(1.0 / n).Length(); got > 0.05 {
		t.Errorf("mean direction length = %g, isotropy violated", got)
	}
}
