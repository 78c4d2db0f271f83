package prop

import (
	"math"
	"testing"
)

func TestNewCandidateDefaults(t *testing.T) {
	state := NewParticleState(NucleusID(1, 1), 10*EeV)
	c := NewCandidate(state)

	if !c.IsActive() {
		t.Errorf("new candidate should be active")
	}
	if c.TrajectoryLength() != 0 {
		t.Errorf("trajectory length = %g, want 0", c.TrajectoryLength())
	}
	if c.Weight() != 1 {
		t.Errorf("weight = %g, want 1", c.Weight())
	}
	if !math.IsInf(c.NextStep(), 1) {
		t.Errorf("next step = %g, want +Inf", c.NextStep())
	}
	if c.Serial() == "" {
		t.Errorf("serial should not be empty")
	}
	if c.Current != c.Initial {
		t.Errorf("current and initial state should match at emission")
	}
}

func TestCandidateSerialsDistinct(t *testing.T) {
	state := NewParticleState(NucleusID(1, 1), EeV)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := NewCandidate(state).Serial()
		if seen[s] {
			t.Fatalf("duplicate serial %s", s)
		}
		seen[s] = true
	}
}

func TestLimitNextStepKeepsMinimum(t *testing.T) {
	c := NewCandidate(NewParticleState(NucleusID(1, 1), EeV))

	c.LimitNextStep(5 * Mpc)
	c.LimitNextStep(10 * Mpc) // larger proposal must not widen the limit
	if got := c.NextStep(); got != 5*Mpc {
		t.Errorf("next step = %g Mpc, want 5", got/Mpc)
	}
	c.LimitNextStep(2 * Mpc)
	if got := c.NextStep(); got != 2*Mpc {
		t.Errorf("next step = %g Mpc, want 2", got/Mpc)
	}
}

func TestLimitNextStepIgnoresInvalid(t *testing.T) {
	c := NewCandidate(NewParticleState(NucleusID(1, 1), EeV))
	c.LimitNextStep(3 * Mpc)

	for _, bad := range []float64{0, -1 * Mpc, math.NaN()} {
		c.LimitNextStep(bad)
		if got := c.NextStep(); got != 3*Mpc {
			t.Errorf("after LimitNextStep(%g): next step = %g Mpc, want 3", bad, got/Mpc)
		}
	}
}

func TestAdvanceAccumulates(t *testing.T) {
	c := NewCandidate(NewParticleState(NucleusID(1, 1), EeV))
	c.Current.SetDirection(Vector3{X: 1})

	c.advance(2 * Mpc)
	c.advance(3 * Mpc)

	if got := c.TrajectoryLength(); got != 5*Mpc {
		t.Errorf("trajectory length = %g Mpc, want 5", got/Mpc)
	}
	if got := c.CurrentStep(); got != 3*Mpc {
		t.Errorf("current step = %g Mpc, want 3", got/Mpc)
	}
	if got := c.Current.Position().X; got != 5*Mpc {
		t.Errorf("position x = %g Mpc, want 5", got/Mpc)
	}
	if c.Initial.Position().X != 0 {
		t.Errorf("initial state must not move with the candidate")
	}
}

func TestTagsCopied(t *testing.T) {
	c := NewCandidate(NewParticleState(NucleusID(1, 1), EeV))
	c.SetTag("Rejected", "MinimumEnergy")

	tags := c.Tags()
	tags["Rejected"] = "tampered"

	if v, _ := c.Tag("Rejected"); v != "MinimumEnergy" {
		t.Errorf("Tags() must return a copy; candidate tag changed to %q", v)
	}
	if !c.HasTag("Rejected") {
		t.Errorf("HasTag should see the set tag")
	}
	if c.HasTag("Detected") {
		t.Errorf("HasTag should not see an unset tag")
	}
}
