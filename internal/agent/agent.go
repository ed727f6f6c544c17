// Package agent defines the decision-making collaborator that maps a sensor
// snapshot to an actuator command, and ships a reference heuristic driver.
// Learned policies (neural controllers, exploration noise) plug in behind the
// same interface; their internals are not this repository's concern.
package agent

import "github.com/banshee-data/trackpilot/internal/scrproto"

// Agent consumes one telemetry snapshot and produces the next actuator
// command. Implementations may keep internal state across steps but must not
// retain or mutate the snapshot.
type Agent interface {
	Decide(s *scrproto.Snapshot) *scrproto.Action
}
