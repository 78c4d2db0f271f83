package client_test

import (
	"fmt"

	"cosmoray/pkg/client"
)

// Build a run configuration for protons propagating until they either
// fall below 1 EeV or travel 1000 Mpc, recording rejected candidates.
func Example() {
	cfg := client.NewRun("proton-horizon").
		Seed(1).
		Candidates(1000).
		PairProduction().
		RedshiftEvolution().
		Source(client.NewSource(1, 1).
			Spectrum(1, 1000, -2).
			Isotropic().
			Redshift(1)).
		Condition(client.MaxTrajectoryLength(1000).Record()).
		Condition(client.MinEnergy(1).Flag("BelowThreshold").Record()).
		Build()

	fmt.Println(cfg.Name, len(cfg.Conditions))
	// Output: proton-horizon 2
}

// Per-species energy thresholds with a fallback default.
func Example_perSpeciesThresholds() {
	cc := client.MinEnergyPerID(0.5).
		PerID(1, 1, 1).   // protons cut at 1 EeV
		PerID(56, 26, 5). // iron cut at 5 EeV
		Build()

	fmt.Println(cc.Type, len(cc.PerID))
	// Output: min_energy_per_id 2
}
