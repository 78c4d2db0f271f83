package prop

import (
	"fmt"
	"strings"
)

// ValidationError collects every issue found in a configuration so a user
// can fix them in one pass.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid configuration: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "configuration errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) Addf(format string, v ...any) {
	e.Add(fmt.Sprintf(format, v...))
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// Validate performs comprehensive validation of a RunConfig.
func (cfg RunConfig) Validate() error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("run name is required")
	}
	if cfg.Candidates <= 0 {
		err.Add("candidates must be positive")
	}
	if cfg.MinStepKpc < 0 || cfg.MaxStepMpc < 0 {
		err.Add("step bounds must be non-negative")
	}
	if cfg.MinStepKpc > 0 && cfg.MaxStepMpc > 0 && cfg.MinStepKpc*Kpc > cfg.MaxStepMpc*Mpc {
		err.Add("min step exceeds max step")
	}
	if cfg.MaxSteps < 0 {
		err.Add("max_steps must be non-negative")
	}

	if cfg.PairProduction || cfg.PhotonField != "" {
		if cfg.PhotonField == "" {
			err.Add("pair_production requires a photon_field")
		} else if !DefaultFieldRegistry().Has(cfg.PhotonField) {
			err.Addf("unknown photon field %q, known fields: %s",
				cfg.PhotonField, strings.Join(DefaultFieldRegistry().Names(), ", "))
		}
	}

	validateSource(cfg.Source, err)
	for i, cc := range cfg.Conditions {
		validateCondition(i, cc, err)
	}
	if len(cfg.Conditions) == 0 {
		err.Add("at least one break condition is required")
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

func validateSource(sc SourceConfig, err *ValidationError) {
	if sc.Particle.A <= 0 || sc.Particle.Z < 0 || sc.Particle.Z > sc.Particle.A {
		err.Addf("source: invalid particle A=%d Z=%d", sc.Particle.A, sc.Particle.Z)
	}
	switch {
	case sc.EnergyEeV == nil && sc.Spectrum == nil:
		err.Add("source: either energy_eev or spectrum is required")
	case sc.EnergyEeV != nil && sc.Spectrum != nil:
		err.Add("source: energy_eev and spectrum are mutually exclusive")
	case sc.EnergyEeV != nil && *sc.EnergyEeV <= 0:
		err.Add("source: energy_eev must be positive")
	case sc.Spectrum != nil:
		if sc.Spectrum.MinEeV <= 0 || sc.Spectrum.MaxEeV <= sc.Spectrum.MinEeV {
			err.Add("source: spectrum requires 0 < min_eev < max_eev")
		}
	}
	if sc.Direction != nil {
		if sc.Isotropic {
			err.Add("source: direction and isotropic are mutually exclusive")
		}
		d := Vector3{X: sc.Direction[0], Y: sc.Direction[1], Z: sc.Direction[2]}
		if d.Length() == 0 {
			err.Add("source: direction cannot be the zero vector")
		}
	}
	if sc.Redshift < 0 {
		err.Add("source: redshift must be non-negative")
	}
}

func validateCondition(i int, cc ConditionConfig, err *ValidationError) {
	prefix := fmt.Sprintf("condition %d (%s)", i, cc.Type)

	switch cc.Type {
	case "max_trajectory_length", "detection_length":
		if cc.ValueMpc <= 0 {
			err.Addf("%s: value_mpc must be positive", prefix)
		}
	case "min_energy", "min_rigidity":
		if cc.ValueEeV <= 0 {
			err.Addf("%s: value_eev must be positive", prefix)
		}
	case "min_redshift", "min_charge_number":
		if cc.Value < 0 {
			err.Addf("%s: value must be non-negative", prefix)
		}
	case "min_energy_per_id":
		if cc.DefaultEeV <= 0 {
			err.Addf("%s: default_eev must be positive", prefix)
		}
		for j, entry := range cc.PerID {
			if entry.Particle.A <= 0 || entry.Particle.Z < 0 {
				err.Addf("%s: per_id entry %d has invalid particle", prefix, j)
			}
			if entry.ValueEeV <= 0 {
				err.Addf("%s: per_id entry %d: value_eev must be positive", prefix, j)
			}
		}
	case "":
		err.Addf("condition %d: type is required", i)
	default:
		err.Addf("condition %d: unknown type %q, known types: %s",
			i, cc.Type, strings.Join(conditionTypes(), ", "))
	}

	if len(cc.ObserversMpc) > 0 && cc.Type != "max_trajectory_length" {
		err.Addf("%s: observers_mpc only applies to max_trajectory_length", prefix)
	}
}
