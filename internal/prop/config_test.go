package prop

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func energyEeV(v float64) *float64 { return &v }

func validConfig() RunConfig {
	return RunConfig{
		Name:       "test-run",
		Candidates: 1,
		Source: SourceConfig{
			Particle:  ParticleConfig{A: 1, Z: 1},
			EnergyEeV: energyEeV(10),
			Direction: &[3]float64{1, 0, 0},
		},
		Conditions: []ConditionConfig{
			{Type: "max_trajectory_length", ValueMpc: 100},
		},
	}
}

func TestConfigBuildAndRun(t *testing.T) {
	cfg := validConfig()
	run, err := cfg.Build(nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	c := run.Source.Emit()
	run.Modules.Run(c)

	if c.IsActive() {
		t.Fatalf("candidate should have been rejected at 100 Mpc")
	}
	if v, _ := c.Tag("Rejected"); v != "MaximumTrajectoryLength" {
		t.Errorf("rejection tag = %q", v)
	}
	if got := c.TrajectoryLength(); got > 100*Mpc*(1+1e-12) {
		t.Errorf("trajectory overshot: %g Mpc", got/Mpc)
	}
}

func TestConfigBuildModuleOrder(t *testing.T) {
	cfg := validConfig()
	cfg.RedshiftEvolution = true
	cfg.PairProduction = true
	cfg.PhotonField = "CMB"
	cfg.Conditions = append(cfg.Conditions, ConditionConfig{Type: "min_energy", ValueEeV: 1})

	run, err := cfg.Build(nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// physics first, then break conditions in configuration order
	mods := run.Modules.Modules()
	if len(mods) != 4 {
		t.Fatalf("module count = %d, want 4", len(mods))
	}
	if _, ok := mods[0].(*Redshift); !ok {
		t.Errorf("module 0 = %T, want *Redshift", mods[0])
	}
	if _, ok := mods[1].(*ElectronPairProduction); !ok {
		t.Errorf("module 1 = %T, want *ElectronPairProduction", mods[1])
	}
	if _, ok := mods[2].(*MaximumTrajectoryLength); !ok {
		t.Errorf("module 2 = %T, want *MaximumTrajectoryLength", mods[2])
	}
	if _, ok := mods[3].(*MinimumEnergy); !ok {
		t.Errorf("module 3 = %T, want *MinimumEnergy", mods[3])
	}
}

func TestConfigBuildDeterministicSeed(t *testing.T) {
	cfg := validConfig()
	cfg.Seed = 99
	cfg.Source.EnergyEeV = nil
	cfg.Source.Spectrum = &SpectrumConfig{MinEeV: 1, MaxEeV: 100, Index: -2}

	emit := func() float64 {
		run, err := cfg.Build(nil, nil)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return run.Source.Emit().Current.Energy()
	}
	if a, b := emit(), emit(); a != b {
		t.Errorf("same seed emitted different energies: %g vs %g", a, b)
	}
}

func TestConfigBuildConditionOverrides(t *testing.T) {
	bus := NewEventBus(nil)
	n := &captureNotifier{id: "det"}
	if err := bus.Register(n); err != nil {
		t.Fatalf("Register: %v", err)
	}

	keep := false
	cfg := validConfig()
	cfg.Conditions = []ConditionConfig{
		{Type: "detection_length", ValueMpc: 50, Flag: "Detected", Deactivate: &keep, Record: true},
		{Type: "max_trajectory_length", ValueMpc: 100},
	}

	run, err := cfg.Build(bus, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	c := run.Source.Emit()
	run.Modules.Run(c)
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// the detection window tagged and recorded without terminating; the
	// length budget finished the trajectory afterwards
	events := n.delivered()
	if len(events) != 1 {
		t.Fatalf("detection recorded %d events, want 1", len(events))
	}
	if events[0].Tags["Rejected"] != "Detected" {
		t.Errorf("recorded tag = %q, want Detected", events[0].Tags["Rejected"])
	}
	if !events[0].Active {
		t.Errorf("detection with deactivate=false should record a live candidate")
	}
	if got := c.TrajectoryLength(); got < 100*Mpc*(1-1e-12) || got > 100*Mpc*(1+1e-12) {
		t.Errorf("trajectory should run the full 100 Mpc budget, got %g Mpc", got/Mpc)
	}
	if v, _ := c.Tag("Rejected"); v != "MaximumTrajectoryLength" {
		t.Errorf("final rejection tag = %q (later rejection wins)", v)
	}
}

func TestConfigBuildRecordNeedsBus(t *testing.T) {
	cfg := validConfig()
	cfg.Conditions[0].Record = true

	if _, err := cfg.Build(nil, nil); err == nil {
		t.Fatalf("record without a bus should fail")
	}

	bus := NewEventBus(nil)
	defer bus.Close()
	if _, err := cfg.Build(bus, nil); err != nil {
		t.Fatalf("record with a bus should build: %v", err)
	}
}

func TestConfigBuildRecordedRejection(t *testing.T) {
	bus := NewEventBus(nil)
	n := &captureNotifier{id: "sink"}
	if err := bus.Register(n); err != nil {
		t.Fatalf("Register: %v", err)
	}

	cfg := validConfig()
	cfg.Conditions[0].Record = true

	run, err := cfg.Build(bus, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c := run.Source.Emit()
	run.Modules.Run(c)

	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events := n.delivered()
	if len(events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events))
	}
	if events[0].Tags["Rejected"] != "MaximumTrajectoryLength" {
		t.Errorf("recorded tags = %v", events[0].Tags)
	}
}

func TestConfigBuildRejectsInvalid(t *testing.T) {
	cfg := validConfig()
	cfg.Conditions[0].Type = "bogus"
	if _, err := cfg.Build(nil, nil); err == nil {
		t.Fatalf("unknown condition type should fail Build")
	}
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	const doc = `
name: proton-horizon
seed: 42
candidates: 50
max_step_mpc: 5
photon_field: CMB
pair_production: true
redshift_evolution: true
source:
  particle: {a: 1, z: 1}
  spectrum: {min_eev: 1, max_eev: 100, index: -2}
  isotropic: true
  redshift: 0.5
conditions:
  - type: max_trajectory_length
    value_mpc: 1000
    observers_mpc: [[100, 0, 0]]
  - type: min_energy
    value_eev: 1
    flag: BelowThreshold
`
	var cfg RunConfig
	if err := yaml.Unmarshal([]byte(doc), &cfg); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Name != "proton-horizon" || cfg.Seed != 42 || cfg.Candidates != 50 {
		t.Errorf("header fields: %+v", cfg)
	}
	if cfg.Source.Spectrum == nil || cfg.Source.Spectrum.Index != -2 {
		t.Errorf("spectrum: %+v", cfg.Source.Spectrum)
	}
	if len(cfg.Conditions) != 2 || cfg.Conditions[0].ObserversMpc[0] != [3]float64{100, 0, 0} {
		t.Errorf("conditions: %+v", cfg.Conditions)
	}

	if _, err := cfg.Build(nil, nil); err != nil {
		t.Fatalf("Build from YAML: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	mutate := func(f func(*RunConfig)) RunConfig {
		cfg := validConfig()
		f(&cfg)
		return cfg
	}

	tests := []struct {
		name string
		cfg  RunConfig
		want string
	}{
		{"missing name", mutate(func(c *RunConfig) { c.Name = "" }), "name is required"},
		{"no candidates", mutate(func(c *RunConfig) { c.Candidates = 0 }), "candidates"},
		{"inverted steps", mutate(func(c *RunConfig) { c.MinStepKpc = 2000; c.MaxStepMpc = 1 }), "min step exceeds"},
		{"negative max steps", mutate(func(c *RunConfig) { c.MaxSteps = -1 }), "max_steps"},
		{"pair production without field", mutate(func(c *RunConfig) { c.PairProduction = true }), "photon_field"},
		{"unknown field", mutate(func(c *RunConfig) { c.PhotonField = "EBL_nope" }), "unknown photon field"},
		{"bad particle", mutate(func(c *RunConfig) { c.Source.Particle = ParticleConfig{A: 1, Z: 5} }), "invalid particle"},
		{"no energy", mutate(func(c *RunConfig) { c.Source.EnergyEeV = nil }), "energy_eev or spectrum"},
		{"both energies", mutate(func(c *RunConfig) {
			c.Source.Spectrum = &SpectrumConfig{MinEeV: 1, MaxEeV: 10, Index: -2}
		}), "mutually exclusive"},
		{"bad spectrum", mutate(func(c *RunConfig) {
			c.Source.EnergyEeV = nil
			c.Source.Spectrum = &SpectrumConfig{MinEeV: 10, MaxEeV: 1, Index: -2}
		}), "min_eev < max_eev"},
		{"zero direction", mutate(func(c *RunConfig) { c.Source.Direction = &[3]float64{} }), "zero vector"},
		{"direction and isotropic", mutate(func(c *RunConfig) { c.Source.Isotropic = true }), "mutually exclusive"},
		{"negative redshift", mutate(func(c *RunConfig) { c.Source.Redshift = -1 }), "redshift"},
		{"no conditions", mutate(func(c *RunConfig) { c.Conditions = nil }), "at least one break condition"},
		{"zero length", mutate(func(c *RunConfig) { c.Conditions[0].ValueMpc = 0 }), "value_mpc"},
		{"unknown condition", mutate(func(c *RunConfig) { c.Conditions[0].Type = "bogus" }), "unknown type"},
		{"missing condition type", mutate(func(c *RunConfig) { c.Conditions[0].Type = "" }), "type is required"},
		{"observers on wrong type", mutate(func(c *RunConfig) {
			c.Conditions = []ConditionConfig{{Type: "min_energy", ValueEeV: 1, ObserversMpc: [][3]float64{{1, 0, 0}}}}
		}), "observers_mpc"},
		{"per id without default", mutate(func(c *RunConfig) {
			c.Conditions = []ConditionConfig{{Type: "min_energy_per_id"}}
		}), "default_eev"},
		{"per id bad entry", mutate(func(c *RunConfig) {
			c.Conditions = []ConditionConfig{{
				Type: "min_energy_per_id", DefaultEeV: 1,
				PerID: []PerIDThreshold{{Particle: ParticleConfig{A: 0, Z: 0}, ValueEeV: 1}},
			}}
		}), "invalid particle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatalf("invalid config passed validation")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config failed validation: %v", err)
	}
}

func TestValidationErrorAggregates(t *testing.T) {
	cfg := RunConfig{} // everything wrong at once
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("empty config should fail")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(verr.Issues) < 3 {
		t.Errorf("expected several aggregated issues, got %v", verr.Issues)
	}
}
