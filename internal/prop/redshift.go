package prop

import (
	"fmt"
	"math"
)

// Redshift derives the candidate's redshift from its traveled path: each
// step lowers z by dz = (1+z) H(z) dl / c toward the observer at z = 0,
// with H(z) of a flat Lambda-CDM cosmology. The redshift floors at zero.
//
// Candidates start at the redshift assigned by their source; a candidate
// emitted at z = 0 stays there.
type Redshift struct {
	h0     float64 // 1/s
	omegaM float64
	omegaL float64
}

// NewRedshift returns the module with Planck-like parameters
// (H0 = 67.3 km/s/Mpc, OmegaM = 0.315).
func NewRedshift() *Redshift {
	return NewRedshiftCosmology(67.3, 0.315)
}

// NewRedshiftCosmology sets H0 [km/s/Mpc] and the matter density; the
// cosmology is flat, OmegaL = 1 - OmegaM.
func NewRedshiftCosmology(h0KmSMpc, omegaM float64) *Redshift {
	return &Redshift{
		h0:     h0KmSMpc * 1e3 / Mpc,
		omegaM: omegaM,
		omegaL: 1 - omegaM,
	}
}

// Hubble returns H(z) [1/s].
func (r *Redshift) Hubble(z float64) float64 {
	zp := 1 + z
	return r.h0 * math.Sqrt(r.omegaM*zp*zp*zp+r.omegaL)
}

func (r *Redshift) Process(c *Candidate) {
	z := c.Redshift()
	if z <= 0 {
		return
	}
	dz := (1 + z) * r.Hubble(z) * c.CurrentStep() / CLight
	c.SetRedshift(math.Max(z-dz, 0))
}

func (r *Redshift) Description() string {
	return fmt.Sprintf("Redshift: H0 = %g km/s/Mpc, OmegaM = %g, OmegaL = %g",
		r.h0*Mpc/1e3, r.omegaM, r.omegaL)
}
