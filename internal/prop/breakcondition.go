package prop

import (
	"fmt"
	"sort"
	"strings"
)

// RejectPolicy is the shared terminal-outcome policy of the break
// conditions: the tag written on rejection, whether rejection deactivates
// the candidate, and an optional action invoked with the candidate at the
// moment of rejection (e.g. to record it before it is dropped).
//
// Rejection is not an error; it is a normal end of a candidate's lifecycle,
// surfaced through the tag map.
type RejectPolicy struct {
	FlagKey      string
	FlagValue    string
	MakeInactive bool
	Action       Module
}

// NewRejectPolicy returns the default policy: tag "Rejected" -> value,
// deactivate on rejection, no chained action.
func NewRejectPolicy(value string) RejectPolicy {
	return RejectPolicy{
		FlagKey:      "Rejected",
		FlagValue:    value,
		MakeInactive: true,
	}
}

// SetRejectFlag overrides the tag written on rejection.
func (p *RejectPolicy) SetRejectFlag(key, value string) {
	p.FlagKey = key
	p.FlagValue = value
}

// SetMakeInactive controls whether rejection deactivates the candidate.
// With deactivation disabled a candidate can be rejected repeatedly; the
// last rejection's tag wins.
func (p *RejectPolicy) SetMakeInactive(inactive bool) {
	p.MakeInactive = inactive
}

// SetRejectAction chains a module invoked at rejection time.
func (p *RejectPolicy) SetRejectAction(m Module) {
	p.Action = m
}

func (p *RejectPolicy) reject(c *Candidate) {
	c.SetTag(p.FlagKey, p.FlagValue)
	if p.MakeInactive {
		c.Deactivate()
	}
	if p.Action != nil {
		p.Action.Process(c)
	}
}

func (p *RejectPolicy) describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Flag: '%s' -> '%s', MakeInactive: %s", p.FlagKey, p.FlagValue, yesNo(p.MakeInactive))
	if p.Action != nil {
		fmt.Fprintf(&b, ", Action: %s", p.Action.Description())
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// MaximumTrajectoryLength rejects a candidate once its trajectory length
// reaches the configured maximum; before that it limits the next step to the
// remaining budget so the final step cannot overshoot. With observer
// positions registered it also rejects early when no observer can possibly
// be reached within the remaining budget.
type MaximumTrajectoryLength struct {
	RejectPolicy
	maxLength float64
	observers []Vector3
}

func NewMaximumTrajectoryLength(maxLength float64) *MaximumTrajectoryLength {
	return &MaximumTrajectoryLength{
		RejectPolicy: NewRejectPolicy("MaximumTrajectoryLength"),
		maxLength:    maxLength,
	}
}

func (m *MaximumTrajectoryLength) MaximumLength() float64 {
	return m.maxLength
}

// AddObserverPosition registers an observer. A candidate is kept alive as
// long as at least one observer is still reachable within budget.
func (m *MaximumTrajectoryLength) AddObserverPosition(position Vector3) {
	m.observers = append(m.observers, position)
}

func (m *MaximumTrajectoryLength) Process(c *Candidate) {
	length := c.TrajectoryLength()
	position := c.Current.Position()

	if len(m.observers) > 0 {
		inRange := false
		for _, obs := range m.observers {
			if position.DistanceTo(obs)+length < m.maxLength {
				inRange = true
				break
			}
		}
		if !inRange {
			m.reject(c)
			return
		}
	}

	if length >= m.maxLength {
		m.reject(c)
		return
	}
	c.LimitNextStep(m.maxLength - length)
}

func (m *MaximumTrajectoryLength) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Maximum trajectory length: %g Mpc, %s", m.maxLength/Mpc, m.describe())
	for _, obs := range m.observers {
		fmt.Fprintf(&b, "\n    observer at %s Mpc", obs.Scale(1/Mpc))
	}
	return b.String()
}

// MinimumEnergy rejects a candidate whose current energy has dropped to or
// below the configured minimum.
type MinimumEnergy struct {
	RejectPolicy
	minEnergy float64
}

func NewMinimumEnergy(minEnergy float64) *MinimumEnergy {
	return &MinimumEnergy{
		RejectPolicy: NewRejectPolicy("MinimumEnergy"),
		minEnergy:    minEnergy,
	}
}

func (m *MinimumEnergy) MinimumEnergy() float64 {
	return m.minEnergy
}

func (m *MinimumEnergy) Process(c *Candidate) {
	if c.Current.Energy() > m.minEnergy {
		return
	}
	m.reject(c)
}

func (m *MinimumEnergy) Description() string {
	return fmt.Sprintf("Minimum energy: %g EeV, %s", m.minEnergy/EeV, m.describe())
}

// MinimumRigidity rejects a candidate whose rigidity (energy per charge
// number) falls below the configured minimum.
type MinimumRigidity struct {
	RejectPolicy
	minRigidity float64
}

func NewMinimumRigidity(minRigidity float64) *MinimumRigidity {
	return &MinimumRigidity{
		RejectPolicy: NewRejectPolicy("MinimumRigidity"),
		minRigidity:  minRigidity,
	}
}

func (m *MinimumRigidity) MinimumRigidity() float64 {
	return m.minRigidity
}

func (m *MinimumRigidity) Process(c *Candidate) {
	if c.Current.Rigidity() < m.minRigidity {
		m.reject(c)
	}
}

func (m *MinimumRigidity) Description() string {
	return fmt.Sprintf("Minimum rigidity: %g EeV, %s", m.minRigidity/EeV, m.describe())
}

// MinimumRedshift rejects a candidate once its redshift has dropped to or
// below the configured minimum.
type MinimumRedshift struct {
	RejectPolicy
	zmin float64
}

func NewMinimumRedshift(zmin float64) *MinimumRedshift {
	return &MinimumRedshift{
		RejectPolicy: NewRejectPolicy("MinimumRedshift"),
		zmin:         zmin,
	}
}

func (m *MinimumRedshift) MinimumRedshift() float64 {
	return m.zmin
}

func (m *MinimumRedshift) Process(c *Candidate) {
	if c.Redshift() > m.zmin {
		return
	}
	m.reject(c)
}

func (m *MinimumRedshift) Description() string {
	return fmt.Sprintf("Minimum redshift: %g, %s", m.zmin, m.describe())
}

// MinimumChargeNumber rejects a candidate whose charge number has dropped to
// or below the configured minimum.
type MinimumChargeNumber struct {
	RejectPolicy
	minChargeNumber int
}

func NewMinimumChargeNumber(minChargeNumber int) *MinimumChargeNumber {
	return &MinimumChargeNumber{
		RejectPolicy:    NewRejectPolicy("MinimumChargeNumber"),
		minChargeNumber: minChargeNumber,
	}
}

func (m *MinimumChargeNumber) MinimumChargeNumber() int {
	return m.minChargeNumber
}

func (m *MinimumChargeNumber) Process(c *Candidate) {
	if c.Current.ChargeNumber() > m.minChargeNumber {
		return
	}
	m.reject(c)
}

func (m *MinimumChargeNumber) Description() string {
	return fmt.Sprintf("Minimum charge number: %d, %s", m.minChargeNumber, m.describe())
}

// MinimumEnergyPerParticleID rejects candidates below a per-identity energy
// threshold. An exact identity match governs; identities not listed fall
// back to the default minimum.
type MinimumEnergyPerParticleID struct {
	RejectPolicy
	particleIDs []int
	minEnergies []float64
	minOthers   float64
}

func NewMinimumEnergyPerParticleID(minEnergyOthers float64) *MinimumEnergyPerParticleID {
	return &MinimumEnergyPerParticleID{
		RejectPolicy: NewRejectPolicy("MinimumEnergyPerParticleID"),
		minOthers:    minEnergyOthers,
	}
}

// Add registers a specific minimum energy for a particle identity.
// The first registration of an identity governs.
func (m *MinimumEnergyPerParticleID) Add(id int, minEnergy float64) {
	m.particleIDs = append(m.particleIDs, id)
	m.minEnergies = append(m.minEnergies, minEnergy)
}

func (m *MinimumEnergyPerParticleID) Process(c *Candidate) {
	id := c.Current.ID()
	energy := c.Current.Energy()

	for i, pid := range m.particleIDs {
		if id != pid {
			continue
		}
		if energy < m.minEnergies[i] {
			m.reject(c)
		}
		return
	}

	if energy < m.minOthers {
		m.reject(c)
	}
}

func (m *MinimumEnergyPerParticleID) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Minimum energy for unlisted particles: %g EeV", m.minOthers/EeV)
	for i, pid := range m.particleIDs {
		fmt.Fprintf(&b, ", for particle %d: %g EeV", pid, m.minEnergies[i]/EeV)
	}
	fmt.Fprintf(&b, ", %s", m.describe())
	return b.String()
}

// DetectionLength is a window condition emulating a finite-resolution
// detector plane: it rejects exactly once, on the step that brackets the
// configured detection length, and otherwise limits the next step to the
// remaining distance to the threshold.
type DetectionLength struct {
	RejectPolicy
	detLength float64
}

func NewDetectionLength(detLength float64) *DetectionLength {
	return &DetectionLength{
		RejectPolicy: NewRejectPolicy("DetectionLength"),
		detLength:    detLength,
	}
}

func (m *DetectionLength) DetectionLength() float64 {
	return m.detLength
}

func (m *DetectionLength) Process(c *Candidate) {
	length := c.TrajectoryLength()
	step := c.CurrentStep()

	if length >= m.detLength && length-step < m.detLength {
		m.reject(c)
		return
	}
	c.LimitNextStep(m.detLength - length)
}

func (m *DetectionLength) Description() string {
	return fmt.Sprintf("Detection length: %g kpc, %s", m.detLength/Kpc, m.describe())
}

// conditionTypes lists the break condition kinds understood by the run
// configuration, in a stable order for error messages.
func conditionTypes() []string {
	types := []string{
		"max_trajectory_length",
		"min_energy",
		"min_rigidity",
		"min_redshift",
		"min_charge_number",
		"min_energy_per_id",
		"detection_length",
	}
	sort.Strings(types)
	return types
}
