package prop

import (
	"encoding/json"
	"fmt"
)

// CandidateRecord is the serialized form of one candidate.
type CandidateRecord struct {
	Serial           string            `json:"serial"`
	ParticleID       int               `json:"particle_id"`
	Energy           float64           `json:"energy"`
	Position         Vector3           `json:"position"`
	Direction        Vector3           `json:"direction"`
	TrajectoryLength float64           `json:"trajectory_length"`
	Redshift         float64           `json:"redshift"`
	Weight           float64           `json:"weight"`
	Active           bool              `json:"active"`
	Tags             map[string]string `json:"tags,omitempty"`
}

// Snapshot is a point-in-time capture of a candidate set, e.g. the survivors
// of a run.
type Snapshot struct {
	Name       string            `json:"name"`
	Candidates []CandidateRecord `json:"candidates"`
}

// NewSnapshot captures the current state of every candidate.
func NewSnapshot(name string, candidates []*Candidate) Snapshot {
	records := make([]CandidateRecord, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, CandidateRecord{
			Serial:           c.Serial(),
			ParticleID:       c.Current.ID(),
			Energy:           c.Current.Energy(),
			Position:         c.Current.Position(),
			Direction:        c.Current.Direction(),
			TrajectoryLength: c.TrajectoryLength(),
			Redshift:         c.Redshift(),
			Weight:           c.Weight(),
			Active:           c.IsActive(),
			Tags:             c.Tags(),
		})
	}
	return Snapshot{Name: name, Candidates: records}
}

// Validate checks snapshot consistency: non-empty unique serials,
// non-negative energies and trajectory lengths.
func (s Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s.Candidates))
	for i, rec := range s.Candidates {
		if rec.Serial == "" {
			return fmt.Errorf("candidate at index %d has empty serial", i)
		}
		if _, dup := seen[rec.Serial]; dup {
			return fmt.Errorf("duplicate candidate serial: %s", rec.Serial)
		}
		seen[rec.Serial] = struct{}{}
		if rec.Energy < 0 {
			return fmt.Errorf("candidate %s has negative energy", rec.Serial)
		}
		if rec.TrajectoryLength < 0 {
			return fmt.Errorf("candidate %s has negative trajectory length", rec.Serial)
		}
	}
	return nil
}

// EncodeJSON encodes the snapshot to JSON.
func (s Snapshot) EncodeJSON() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
