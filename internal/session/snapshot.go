package session

import (
	"slices"

	"github.com/tomz197/orbitclicker/internal/decision"
	"github.com/tomz197/orbitclicker/internal/economy"
	"github.com/tomz197/orbitclicker/internal/object"
	"github.com/tomz197/orbitclicker/internal/progression"
	"github.com/tomz197/orbitclicker/internal/weapon"
)

// Point is a world position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snapshot is the full renderable state of one frame. It shares no memory
// with the session and may be read from any goroutine.
type Snapshot struct {
	SessionID string `json:"sessionId"`
	Frame     uint64 `json:"frame"`
	Phase     Phase  `json:"phase"`

	World            object.Bounds `json:"world"`
	PlanetCenter     Point         `json:"planetCenter"`
	PlanetRadius     float64       `json:"planetRadius"`
	PlanetGeneration int           `json:"planetGeneration"`
	OrbitRadius      float64       `json:"orbitRadius"`
	OrbitAngle       float64       `json:"orbitAngle"`

	Blocks      []object.Block      `json:"blocks"`
	Projectiles []object.Projectile `json:"projectiles"`
	Debris      []object.Particle   `json:"debris"`
	Trail       []object.Particle   `json:"trail"`
	Satellite   object.Satellite    `json:"satellite"`
	Companions  []object.Companion  `json:"companions"`

	Currency        economy.Currency     `json:"currency"`
	Score           int                  `json:"score"`
	BlocksDestroyed int                  `json:"blocksDestroyed"`
	TotalClicks     int                  `json:"totalClicks"`
	Stats           progression.Stats    `json:"stats"`
	Weapon          weapon.Status        `json:"weapon"`
	Decisions       decision.PlayerState `json:"decisions"`
	Ship            string               `json:"ship"`
}

// snapshotLocked copies the current state. Callers hold s.mu.
func (s *Session) snapshotLocked() *Snapshot {
	return &Snapshot{
		SessionID: s.id,
		Frame:     s.frame,
		Phase:     s.phase,

		World:            s.bounds,
		PlanetCenter:     Point{X: s.planet.CenterX, Y: s.planet.CenterY},
		PlanetRadius:     s.planet.Radius,
		PlanetGeneration: s.planet.Generation,
		OrbitRadius:      s.orbit.Radius,
		OrbitAngle:       s.orbit.Angle,

		Blocks:      slices.Clone(s.planet.Blocks),
		Projectiles: slices.Clone(s.projectiles),
		Debris:      slices.Clone(s.debris),
		Trail:       slices.Clone(s.trail.Particles()),
		Satellite:   s.orbit.Satellite,
		Companions:  slices.Clone(s.orbit.Companions),

		Currency:        s.wallet,
		Score:           s.score,
		BlocksDestroyed: s.blocksDestroyed,
		TotalClicks:     s.clicks,
		Stats:           s.skills.Stats(),
		Weapon:          s.weapon.Status(),
		Decisions:       s.decisions.State(),
		Ship:            s.loadout.ID,
	}
}

func (s *Session) publish() {
	s.snapshot.Store(s.snapshotLocked())
}

// Snapshot returns the most recently published frame. It never blocks on
// the simulation.
func (s *Session) Snapshot() *Snapshot {
	return s.snapshot.Load()
}
