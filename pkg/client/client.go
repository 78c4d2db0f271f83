// Package client builds run configurations programmatically and consumes
// event streams from a cosmoray server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
	"gopkg.in/yaml.v3"

	"cosmoray/internal/prop"
)

// RunBuilder provides a fluent API for building run configurations.
// Use it to assemble a source, the physics modules, and the break
// conditions of a simulation run without writing YAML by hand.
type RunBuilder struct {
	cfg prop.RunConfig
}

// NewRun creates a run builder with the given name and sane defaults:
// one candidate, seed 0, and the CMB photon field.
func NewRun(name string) *RunBuilder {
	return &RunBuilder{
		cfg: prop.RunConfig{
			Name:        name,
			Candidates:  1,
			PhotonField: "CMB",
		},
	}
}

// Seed sets the deterministic seed for the run's random source.
func (rb *RunBuilder) Seed(seed int64) *RunBuilder {
	rb.cfg.Seed = seed
	return rb
}

// Candidates sets how many candidates the source emits.
func (rb *RunBuilder) Candidates(n int) *RunBuilder {
	rb.cfg.Candidates = n
	return rb
}

// StepBounds sets the step clamp applied after every iteration.
func (rb *RunBuilder) StepBounds(minKpc, maxMpc float64) *RunBuilder {
	rb.cfg.MinStepKpc = minKpc
	rb.cfg.MaxStepMpc = maxMpc
	return rb
}

// MaxSteps caps the number of iterations per candidate.
func (rb *RunBuilder) MaxSteps(n int) *RunBuilder {
	rb.cfg.MaxSteps = n
	return rb
}

// PhotonField selects the target photon field by registry name,
// e.g. "CMB" or "IRB_Kneiske04".
func (rb *RunBuilder) PhotonField(name string) *RunBuilder {
	rb.cfg.PhotonField = name
	return rb
}

// PairProduction enables the electron pair production loss module.
func (rb *RunBuilder) PairProduction() *RunBuilder {
	rb.cfg.PairProduction = true
	return rb
}

// RedshiftEvolution enables adiabatic redshift evolution along the
// trajectory.
func (rb *RunBuilder) RedshiftEvolution() *RunBuilder {
	rb.cfg.RedshiftEvolution = true
	return rb
}

// Source sets the candidate source for the run.
func (rb *RunBuilder) Source(sb *SourceBuilder) *RunBuilder {
	rb.cfg.Source = sb.Build()
	return rb
}

// Condition appends a break condition to the module chain.
func (rb *RunBuilder) Condition(cb *ConditionBuilder) *RunBuilder {
	rb.cfg.Conditions = append(rb.cfg.Conditions, cb.Build())
	return rb
}

// Build returns the assembled RunConfig. Call Validate (or Build on the
// config) to check it.
func (rb *RunBuilder) Build() prop.RunConfig {
	return rb.cfg
}

// Validate checks the assembled configuration.
func (rb *RunBuilder) Validate() error {
	return rb.cfg.Validate()
}

// WriteYAML validates the configuration and writes it as YAML, ready for
// `cosmoray run --config`.
func (rb *RunBuilder) WriteYAML(path string) error {
	if err := rb.cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(rb.cfg)
	if err != nil {
		return fmt.Errorf("marshaling run config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SourceBuilder provides a fluent API for building source configurations.
// A source defines the particle type, energy assignment, position and
// emission direction of every new candidate.
type SourceBuilder struct {
	cfg prop.SourceConfig
}

// NewSource creates a source builder for a nucleus with mass number a and
// charge number z. Protons are (1, 1).
func NewSource(a, z int) *SourceBuilder {
	return &SourceBuilder{
		cfg: prop.SourceConfig{
			Particle: prop.ParticleConfig{A: a, Z: z},
		},
	}
}

// EnergyEeV assigns every candidate the same energy, in EeV.
// Mutually exclusive with Spectrum.
func (sb *SourceBuilder) EnergyEeV(e float64) *SourceBuilder {
	sb.cfg.EnergyEeV = &e
	sb.cfg.Spectrum = nil
	return sb
}

// Spectrum draws candidate energies from a power law dN/dE ~ E^index
// between minEeV and maxEeV. Mutually exclusive with EnergyEeV.
func (sb *SourceBuilder) Spectrum(minEeV, maxEeV, index float64) *SourceBuilder {
	sb.cfg.Spectrum = &prop.SpectrumConfig{MinEeV: minEeV, MaxEeV: maxEeV, Index: index}
	sb.cfg.EnergyEeV = nil
	return sb
}

// PositionMpc places the source at the given comoving position.
func (sb *SourceBuilder) PositionMpc(x, y, z float64) *SourceBuilder {
	sb.cfg.PositionMpc = [3]float64{x, y, z}
	return sb
}

// Direction emits every candidate along a fixed direction.
func (sb *SourceBuilder) Direction(x, y, z float64) *SourceBuilder {
	sb.cfg.Direction = &[3]float64{x, y, z}
	sb.cfg.Isotropic = false
	return sb
}

// Isotropic emits candidates uniformly over the sphere. This is the
// default when no direction is given.
func (sb *SourceBuilder) Isotropic() *SourceBuilder {
	sb.cfg.Isotropic = true
	sb.cfg.Direction = nil
	return sb
}

// Redshift sets the source redshift applied to every candidate.
func (sb *SourceBuilder) Redshift(z float64) *SourceBuilder {
	sb.cfg.Redshift = z
	return sb
}

// Build converts the builder to a SourceConfig.
func (sb *SourceBuilder) Build() prop.SourceConfig {
	return sb.cfg
}

// ConditionBuilder provides a fluent API for building break conditions.
type ConditionBuilder struct {
	cfg prop.ConditionConfig
}

// MaxTrajectoryLength rejects candidates once their trajectory exceeds
// lengthMpc. Add observers with Observer to keep candidates alive while
// any observer is still reachable within the limit.
func MaxTrajectoryLength(lengthMpc float64) *ConditionBuilder {
	return &ConditionBuilder{cfg: prop.ConditionConfig{
		Type:     "max_trajectory_length",
		ValueMpc: lengthMpc,
	}}
}

// MinEnergy rejects candidates at or below the given energy in EeV.
func MinEnergy(eev float64) *ConditionBuilder {
	return &ConditionBuilder{cfg: prop.ConditionConfig{
		Type:     "min_energy",
		ValueEeV: eev,
	}}
}

// MinRigidity rejects candidates below the given rigidity in EV.
func MinRigidity(ev float64) *ConditionBuilder {
	return &ConditionBuilder{cfg: prop.ConditionConfig{
		Type:     "min_rigidity",
		ValueEeV: ev,
	}}
}

// MinRedshift rejects candidates at or below the given redshift.
func MinRedshift(z float64) *ConditionBuilder {
	return &ConditionBuilder{cfg: prop.ConditionConfig{
		Type:  "min_redshift",
		Value: z,
	}}
}

// MinChargeNumber rejects candidates at or below the given charge number.
func MinChargeNumber(z int) *ConditionBuilder {
	return &ConditionBuilder{cfg: prop.ConditionConfig{
		Type:  "min_charge_number",
		Value: float64(z),
	}}
}

// MinEnergyPerID rejects candidates below a per-species threshold, falling
// back to defaultEeV for species without an entry. Add entries with PerID.
func MinEnergyPerID(defaultEeV float64) *ConditionBuilder {
	return &ConditionBuilder{cfg: prop.ConditionConfig{
		Type:       "min_energy_per_id",
		DefaultEeV: defaultEeV,
	}}
}

// DetectionLength flags candidates the first time their trajectory crosses
// lengthMpc, without deactivating them by default.
func DetectionLength(lengthMpc float64) *ConditionBuilder {
	return &ConditionBuilder{cfg: prop.ConditionConfig{
		Type:     "detection_length",
		ValueMpc: lengthMpc,
	}}
}

// Observer adds an observer position (Mpc) to a max_trajectory_length
// condition.
func (cb *ConditionBuilder) Observer(x, y, z float64) *ConditionBuilder {
	cb.cfg.ObserversMpc = append(cb.cfg.ObserversMpc, [3]float64{x, y, z})
	return cb
}

// PerID adds a per-species threshold to a min_energy_per_id condition.
func (cb *ConditionBuilder) PerID(a, z int, valueEeV float64) *ConditionBuilder {
	cb.cfg.PerID = append(cb.cfg.PerID, prop.PerIDThreshold{
		Particle: prop.ParticleConfig{A: a, Z: z},
		ValueEeV: valueEeV,
	})
	return cb
}

// Flag overrides the rejection tag value written when the condition fires.
func (cb *ConditionBuilder) Flag(value string) *ConditionBuilder {
	cb.cfg.Flag = value
	return cb
}

// KeepActive makes the condition tag candidates without deactivating them.
func (cb *ConditionBuilder) KeepActive() *ConditionBuilder {
	f := false
	cb.cfg.Deactivate = &f
	return cb
}

// Record publishes the candidate to the event bus when the condition fires.
func (cb *ConditionBuilder) Record() *ConditionBuilder {
	cb.cfg.Record = true
	return cb
}

// Build converts the builder to a ConditionConfig.
func (cb *ConditionBuilder) Build() prop.ConditionConfig {
	return cb.cfg
}

// Subscription is a live event stream from a cosmoray server.
type Subscription struct {
	conn   *websocket.Conn
	events chan prop.Event
	errs   chan error
}

// Events returns the channel of decoded candidate events. It is closed
// when the connection ends.
func (s *Subscription) Events() <-chan prop.Event {
	return s.events
}

// Err returns a channel delivering the terminal read error, if any.
func (s *Subscription) Err() <-chan error {
	return s.errs
}

// Close shuts the connection down.
func (s *Subscription) Close() error {
	return s.conn.Close()
}

// Subscribe connects to a server's /events endpoint
// (e.g. "ws://localhost:8080/events") and streams candidate events until
// the context is cancelled or the connection drops.
func Subscribe(ctx context.Context, url string) (*Subscription, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, fmt.Errorf("dialing %s: status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}

	sub := &Subscription{
		conn:   conn,
		events: make(chan prop.Event, 64),
		errs:   make(chan error, 1),
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(sub.events)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				sub.errs <- err
				return
			}
			var event prop.Event
			if err := json.Unmarshal(data, &event); err != nil {
				continue
			}
			select {
			case sub.events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub, nil
}
