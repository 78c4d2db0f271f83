package prop

import (
	"fmt"
	"math/rand"
)

// RunConfig describes one simulation run: how candidates are emitted, which
// physics modules run, and the break conditions that end trajectories.
// It is the YAML surface consumed by the CLI.
type RunConfig struct {
	Name       string `yaml:"name"`
	Seed       int64  `yaml:"seed"`
	Candidates int    `yaml:"candidates"`

	MinStepKpc float64 `yaml:"min_step_kpc"`
	MaxStepMpc float64 `yaml:"max_step_mpc"`
	MaxSteps   int     `yaml:"max_steps"`

	PhotonField       string `yaml:"photon_field"`
	PairProduction    bool   `yaml:"pair_production"`
	RedshiftEvolution bool   `yaml:"redshift_evolution"`

	Source     SourceConfig      `yaml:"source"`
	Conditions []ConditionConfig `yaml:"conditions"`
}

// ParticleConfig names a nucleus by mass and charge number.
type ParticleConfig struct {
	A int `yaml:"a"`
	Z int `yaml:"z"`
}

// SpectrumConfig is a power-law energy spectrum.
type SpectrumConfig struct {
	MinEeV float64 `yaml:"min_eev"`
	MaxEeV float64 `yaml:"max_eev"`
	Index  float64 `yaml:"index"`
}

// SourceConfig describes the emitted candidates. Exactly one of EnergyEeV
// and Spectrum must be set; Direction and Isotropic are likewise exclusive,
// with Isotropic as the default when neither is given.
type SourceConfig struct {
	Particle    ParticleConfig  `yaml:"particle"`
	EnergyEeV   *float64        `yaml:"energy_eev,omitempty"`
	Spectrum    *SpectrumConfig `yaml:"spectrum,omitempty"`
	PositionMpc [3]float64      `yaml:"position_mpc"`
	Direction   *[3]float64     `yaml:"direction,omitempty"`
	Isotropic   bool            `yaml:"isotropic,omitempty"`
	Redshift    float64         `yaml:"redshift,omitempty"`
}

// PerIDThreshold is one per-identity entry of a min_energy_per_id condition.
type PerIDThreshold struct {
	Particle ParticleConfig `yaml:"particle"`
	ValueEeV float64        `yaml:"value_eev"`
}

// ConditionConfig describes one break condition. Which value field applies
// depends on Type.
type ConditionConfig struct {
	Type string `yaml:"type"`

	ValueMpc float64 `yaml:"value_mpc,omitempty"` // max_trajectory_length, detection_length
	ValueEeV float64 `yaml:"value_eev,omitempty"` // min_energy, min_rigidity
	Value    float64 `yaml:"value,omitempty"`     // min_redshift, min_charge_number

	DefaultEeV   float64          `yaml:"default_eev,omitempty"` // min_energy_per_id
	PerID        []PerIDThreshold `yaml:"per_id,omitempty"`
	ObserversMpc [][3]float64     `yaml:"observers_mpc,omitempty"`

	Flag       string `yaml:"flag,omitempty"`
	Deactivate *bool  `yaml:"deactivate,omitempty"`
	Record     bool   `yaml:"record,omitempty"` // publish the candidate on rejection
}

// BuildRun is the realized form of a validated RunConfig.
type BuildRun struct {
	Modules *ModuleList
	Source  *Source
	Rand    *rand.Rand
}

// Build constructs the module chain and source from the configuration.
// The bus may be nil when no condition asks for recording.
func (cfg RunConfig) Build(bus *EventBus, log Logger) (*BuildRun, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	ml := NewModuleList()
	ml.SetLogger(log)
	if cfg.MaxSteps > 0 {
		ml.SetMaxSteps(cfg.MaxSteps)
	}
	minStep, maxStep := Kpc, 10*Mpc
	if cfg.MinStepKpc > 0 {
		minStep = cfg.MinStepKpc * Kpc
	}
	if cfg.MaxStepMpc > 0 {
		maxStep = cfg.MaxStepMpc * Mpc
	}
	if err := ml.SetStepBounds(minStep, maxStep); err != nil {
		return nil, err
	}

	if cfg.RedshiftEvolution {
		ml.Add(NewRedshift())
	}

	if cfg.PairProduction {
		field, err := DefaultFieldRegistry().Field(cfg.PhotonField)
		if err != nil {
			return nil, err
		}
		pp, err := NewElectronPairProduction(field)
		if err != nil {
			return nil, err
		}
		ml.Add(pp)
	}

	for i, cc := range cfg.Conditions {
		cond, err := buildCondition(cc, bus)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		ml.Add(cond)
	}

	source, err := buildSource(cfg.Source, rng)
	if err != nil {
		return nil, err
	}

	return &BuildRun{Modules: ml, Source: source, Rand: rng}, nil
}

func buildSource(sc SourceConfig, rng *rand.Rand) (*Source, error) {
	source := NewSource(NewSourceParticleType(NucleusID(sc.Particle.A, sc.Particle.Z)))
	switch {
	case sc.EnergyEeV != nil:
		source.Add(NewSourceEnergy(*sc.EnergyEeV * EeV))
	case sc.Spectrum != nil:
		source.Add(NewSourcePowerLawSpectrum(sc.Spectrum.MinEeV*EeV, sc.Spectrum.MaxEeV*EeV, sc.Spectrum.Index, rng))
	}
	source.Add(NewSourcePosition(vectorFromMpc(sc.PositionMpc)))
	if sc.Direction != nil {
		source.Add(NewSourceDirection(Vector3{X: sc.Direction[0], Y: sc.Direction[1], Z: sc.Direction[2]}))
	} else {
		source.Add(NewSourceIsotropicEmission(rng))
	}
	source.SetRedshift(sc.Redshift)
	return source, nil
}

func buildCondition(cc ConditionConfig, bus *EventBus) (Module, error) {
	var cond interface {
		Module
		SetRejectFlag(key, value string)
		SetMakeInactive(inactive bool)
		SetRejectAction(m Module)
	}

	switch cc.Type {
	case "max_trajectory_length":
		c := NewMaximumTrajectoryLength(cc.ValueMpc * Mpc)
		for _, obs := range cc.ObserversMpc {
			c.AddObserverPosition(vectorFromMpc(obs))
		}
		cond = c
	case "min_energy":
		cond = NewMinimumEnergy(cc.ValueEeV * EeV)
	case "min_rigidity":
		cond = NewMinimumRigidity(cc.ValueEeV * EeV)
	case "min_redshift":
		cond = NewMinimumRedshift(cc.Value)
	case "min_charge_number":
		cond = NewMinimumChargeNumber(int(cc.Value))
	case "min_energy_per_id":
		c := NewMinimumEnergyPerParticleID(cc.DefaultEeV * EeV)
		for _, entry := range cc.PerID {
			c.Add(NucleusID(entry.Particle.A, entry.Particle.Z), entry.ValueEeV*EeV)
		}
		cond = c
	case "detection_length":
		cond = NewDetectionLength(cc.ValueMpc * Mpc)
	default:
		return nil, fmt.Errorf("unknown condition type %q", cc.Type)
	}

	if cc.Flag != "" {
		cond.SetRejectFlag("Rejected", cc.Flag)
	}
	if cc.Deactivate != nil {
		cond.SetMakeInactive(*cc.Deactivate)
	}
	if cc.Record {
		if bus == nil {
			return nil, fmt.Errorf("condition asks for recording but no event bus is configured")
		}
		cond.SetRejectAction(NewRecordAction(bus))
	}
	return cond, nil
}

func vectorFromMpc(v [3]float64) Vector3 {
	return Vector3{X: v[0] * Mpc, Y: v[1] * Mpc, Z: v[2] * Mpc}
}
