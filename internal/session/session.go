// Package session owns one player's simulation: the planet, the orbiting
// satellite, projectiles and particles, the skill and decision engines, and
// the timers that drive automatic fire and passive income.
package session

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tomz197/orbitclicker/internal/config"
	"github.com/tomz197/orbitclicker/internal/decision"
	"github.com/tomz197/orbitclicker/internal/economy"
	"github.com/tomz197/orbitclicker/internal/object"
	"github.com/tomz197/orbitclicker/internal/progression"
	"github.com/tomz197/orbitclicker/internal/random"
	"github.com/tomz197/orbitclicker/internal/ship"
	"github.com/tomz197/orbitclicker/internal/weapon"
)

// Phase is the session lifecycle: Idle, then Running, then Ended.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// MarshalText renders the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Timing and effect constants.
const (
	PassivePeriod = time.Second
	// DroneRate is how often each drone satellite fires, per second.
	DroneRate = 1.0
	// ShieldBlastRadius is the radius of the burst left by a destroyed block
	// when the explosion special effect is active.
	ShieldBlastRadius = 2 * object.BlockSize
	// PiercingShotCharges is the pierce count given to bullets of a piercing click.
	PiercingShotCharges = 2
)

// ErrNotRunning is returned by operations that need a running session.
var ErrNotRunning = errors.New("session not running")

// Options configure a new session. Zero fields take defaults.
type Options struct {
	// Player is the account address recorded in the summary.
	Player   string
	Game     config.GameConfig
	Catalogs Catalogs
	Source   random.Source
	Logger   *zap.Logger
	Now      func() time.Time
}

// Session is one player's game. All exported methods are safe for
// concurrent use; they serialise on an internal mutex.
type Session struct {
	id     string
	player string
	cfg    config.GameConfig
	src    random.Source
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	phase Phase

	wallet    economy.Currency
	skills    *progression.Engine
	decisions *decision.Engine
	ships     *ship.Catalog
	loadout   ship.Config
	weapon    *weapon.System

	planet      *object.Planet
	orbit       *object.Orbit
	trail       *object.Trail
	projectiles []object.Projectile
	debris      []object.Particle
	bounds      object.Bounds

	pendingFires    int
	clicks          int
	score           int
	blocksDestroyed int
	frame           uint64

	passive   Interval
	autoClick Interval
	autoFire  Interval
	drones    Interval

	started time.Time
	ended   time.Time

	events       chan Event
	eventsClosed bool
	dropped      int

	snapshot atomic.Pointer[Snapshot]
}

// New builds an idle session with a freshly generated planet.
func New(opts Options) (*Session, error) {
	g := opts.Game
	if g == (config.GameConfig{}) {
		g = config.Default().Game
	}
	cats := opts.Catalogs
	def := DefaultCatalogs()
	if cats.Skills == nil {
		cats.Skills = def.Skills
	}
	if cats.Stages == nil {
		cats.Stages = def.Stages
	}
	if cats.Ships == nil {
		cats.Ships = def.Ships
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	src := opts.Source
	if src == nil {
		seed := g.Seed
		if seed == 0 {
			seed = now().UnixNano()
		}
		src = random.New(seed)
	}

	shipID := g.Ship
	if shipID == "" {
		shipID = ship.DefaultID
	}
	loadout, ok := cats.Ships.Get(shipID)
	if !ok {
		return nil, fmt.Errorf("ship %q not in catalog", shipID)
	}

	id := uuid.NewString()
	logger = logger.With(zap.String("session", id))

	skills, err := progression.NewEngine(cats.Skills, logger)
	if err != nil {
		return nil, fmt.Errorf("building skill engine: %w", err)
	}

	cx, cy := g.WorldWidth/2, g.WorldHeight/2
	s := &Session{
		id:        id,
		player:    opts.Player,
		cfg:       g,
		src:       src,
		logger:    logger,
		now:       now,
		wallet:    g.StartingCurrency,
		skills:    skills,
		decisions: decision.NewEngine(cats.Stages, logger),
		ships:     cats.Ships,
		loadout:   loadout,
		weapon:    weapon.NewSystem(loadout.Weapon, src),
		planet:    object.NewPlanet(cx, cy, g.PlanetRadius, g.BlockSize, src),
		orbit:     object.NewOrbit(cx, cy, g.OrbitRadius, g.OrbitSpeed, g.SatelliteSize),
		trail:     object.NewTrail(loadout.Trail.Length),
		bounds:    object.Bounds{Width: g.WorldWidth, Height: g.WorldHeight},
		events:    make(chan Event, eventBuffer),
	}
	s.publish()
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Player returns the player address given at creation.
func (s *Session) Player() string { return s.player }

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Events returns the delta stream. It is closed when the session ends.
// A consumer that falls behind loses events rather than stalling the game.
func (s *Session) Events() <-chan Event { return s.events }

// Dropped counts events lost to a full channel.
func (s *Session) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Wallet returns the current balances.
func (s *Session) Wallet() economy.Currency {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet
}

// Start moves an idle session to Running and arms its timers.
func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return false
	}
	s.phase = PhaseRunning
	s.started = s.now()
	s.passive.Arm(PassivePeriod)
	s.syncTimers()
	s.logger.Info("session started", zap.String("player", s.player), zap.String("ship", s.loadout.ID))
	s.publish()
	return true
}

// End stops the session, tears down every timer and closes the event
// stream. Calling End again has no effect.
func (s *Session) End() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseEnded {
		return false
	}
	s.emit(Event{Kind: EventSessionEnded})
	s.phase = PhaseEnded
	s.ended = s.now()
	if s.started.IsZero() {
		s.started = s.ended
	}
	s.passive.Disarm()
	s.autoClick.Disarm()
	s.autoFire.Disarm()
	s.drones.Disarm()
	s.pendingFires = 0
	s.eventsClosed = true
	close(s.events)
	s.skills.Close()

	s.logger.Info("session ended",
		zap.Int("blocks_destroyed", s.blocksDestroyed),
		zap.Int("clicks", s.clicks),
		zap.Int("soul", s.wallet.Soul),
	)
	s.publish()
	return true
}

// Fire queues one player click. It is consumed by the next Step.
func (s *Session) Fire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning {
		return false
	}
	s.pendingFires++
	return true
}

// Step advances the simulation by one frame covering dt of simulated time,
// then publishes a snapshot. dt only drives the timers; motion advances a
// fixed amount per frame. Steps on a session that is not running are ignored.
func (s *Session) Step(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning {
		return
	}
	dt = max(0, min(dt, s.cfg.MaxStep))
	s.frame++

	stats := s.skills.Stats()

	// Kinematics.
	s.orbit.Advance(s.loadout.Size, s.loadout.Companions, stats.AutoSatellites)
	s.trail.Push(object.CreateTrail(s.orbit.Satellite, s.orbit.Angle, s.loadout.Trail, s.src)...)

	// Spawn: queued clicks, then each timer independently. Only queued
	// clicks count toward the summary.
	var res weapon.Result
	for ; s.pendingFires > 0; s.pendingFires-- {
		s.click(stats, &res)
	}
	for i, n := 0, s.autoClick.Advance(dt); i < n; i++ {
		s.volley(s.orbit.Satellite, s.planet.CenterX, s.planet.CenterY, stats, false)
	}
	for i, n := 0, s.autoFire.Advance(dt); i < n; i++ {
		s.volley(s.orbit.Satellite, s.planet.CenterX, s.planet.CenterY, stats, false)
	}
	for i, n := 0, s.drones.Advance(dt); i < n; i++ {
		n := min(stats.AutoSatellites, len(s.orbit.Companions))
		for _, c := range s.orbit.Companions[:n] {
			s.volley(object.Satellite{X: c.X, Y: c.Y, Size: c.Size}, s.planet.CenterX, s.planet.CenterY, stats, false)
		}
	}
	for i, n := 0, s.passive.Advance(dt); i < n; i++ {
		s.payPassive()
	}

	// Movement and collisions.
	object.MoveProjectiles(s.projectiles)
	var hit weapon.Result
	s.projectiles, hit = s.weapon.Resolve(s.projectiles, s.planet, s.bounds)
	merge(&res, hit)

	if stats.HasEffect(progression.EffectExplosion) {
		for _, b := range slices.Clone(res.Blocks) {
			cx, cy := b.Center()
			merge(&res, s.weapon.Explode(cx, cy, ShieldBlastRadius, s.planet))
		}
	}

	// Currency and score.
	s.reward(res.Blocks)

	if s.planet.RegenerateIfCleared(s.src) {
		s.wallet.Credit(0, s.cfg.PlanetClearedGods)
		s.emit(Event{Kind: EventPlanetCleared, GodsDelta: s.cfg.PlanetClearedGods})
		s.logger.Debug("planet regenerated", zap.Int("generation", s.planet.Generation))
	}

	// Particles.
	s.debris = append(s.debris, res.Particles...)
	s.debris = object.UpdateParticles(s.debris, object.DebrisDrag, object.DebrisFade)
	s.trail.Update(object.TrailFade(s.loadout.Trail))

	s.publish()
}

func merge(dst *weapon.Result, src weapon.Result) {
	dst.Destroyed += src.Destroyed
	dst.Blocks = append(dst.Blocks, src.Blocks...)
	dst.Particles = append(dst.Particles, src.Particles...)
}

func (s *Session) hookContext() progression.Context {
	return progression.Context{Currency: &s.wallet, ClickCount: s.clicks, Rand: s.src}
}

// click handles one player click: it counts toward the summary and runs
// the skills' click hooks before firing.
func (s *Session) click(stats progression.Stats, res *weapon.Result) {
	s.clicks++
	ctx := s.hookContext()
	eff := s.skills.HandleClick(&ctx)

	tx, ty := s.planet.CenterX, s.planet.CenterY
	if eff.TargetWeakest {
		if i := s.planet.Weakest(); i >= 0 {
			tx, ty = s.planet.Blocks[i].Center()
		}
	}
	s.volley(s.orbit.Satellite, tx, ty, stats, eff.PiercingShot)

	if eff.InstantKill {
		if i := s.planet.RandomLive(s.src); i >= 0 {
			b := &s.planet.Blocks[i]
			cx, cy := b.Center()
			if b.Damage(b.Integrity) {
				res.Destroyed++
				res.Blocks = append(res.Blocks, *b)
			}
			res.Particles = append(res.Particles, object.CreateDebris(cx, cy, b.Color(), s.src)...)
		}
	}
}

func (s *Session) volley(from object.Satellite, tx, ty float64, stats progression.Stats, piercing bool) {
	shots := s.weapon.Spawn(from, s.orbit.Angle, tx, ty, stats.ExtraDamage(), stats.ExtraBullets())
	if piercing {
		for i := range shots {
			shots[i].Piercing = true
			shots[i].PierceRemaining = max(shots[i].PierceRemaining, PiercingShotCharges)
		}
	}
	s.projectiles = append(s.projectiles, shots...)
}

func (s *Session) reward(blocks []object.Block) {
	if len(blocks) == 0 {
		return
	}
	soul := 0
	for _, b := range blocks {
		ctx := s.hookContext()
		info := progression.BlockInfo{BaseReward: s.cfg.BlockReward, Integrity: b.MaxIntegrity}
		soul += s.cfg.BlockReward + s.skills.HandleBlockDestroy(info, &ctx)
	}
	s.wallet.Credit(soul, 0)
	s.score += len(blocks)
	s.blocksDestroyed += len(blocks)
	s.emit(Event{Kind: EventBlocksDestroyed, SoulDelta: soul, ScoreDelta: len(blocks)})
}

func (s *Session) payPassive() {
	ctx := s.hookContext()
	income := s.skills.PassiveIncome(&ctx)
	if income <= 0 {
		return
	}
	s.wallet.Credit(income, 0)
	s.emit(Event{Kind: EventPassiveIncome, SoulDelta: income})
}

// syncTimers re-arms every rate-driven timer whose rate changed.
func (s *Session) syncTimers() {
	stats := s.skills.Stats()
	s.autoClick.SetRate(stats.AutoClickRate)
	if s.weapon.ShouldAutoFire() {
		s.autoFire.SetRate(math.Max(weapon.MinFireRate, s.weapon.AutoFireRate()))
	} else {
		s.autoFire.Disarm()
	}
	if stats.AutoSatellites > 0 {
		s.drones.SetRate(DroneRate)
	} else {
		s.drones.Disarm()
	}
}

// Purchase buys a skill with the session's wallet.
func (s *Session) Purchase(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning {
		return false
	}
	before := s.wallet
	ctx := s.hookContext()
	if !s.skills.Purchase(id, &ctx) {
		return false
	}
	s.emit(Event{
		Kind:      EventSkillPurchased,
		SoulDelta: s.wallet.Soul - before.Soul,
		GodsDelta: s.wallet.Gods - before.Gods,
		Ref:       id,
	})
	s.syncTimers()
	s.publish()
	return true
}

// CheckPurchase reports why a skill cannot be bought right now.
func (s *Session) CheckPurchase(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning {
		return ErrNotRunning
	}
	return s.skills.Check(id, s.wallet)
}

// CanPurchase reports whether a skill can be bought right now.
func (s *Session) CanPurchase(id string) bool { return s.CheckPurchase(id) == nil }

// SkillStatuses lists every skill with its status against the wallet.
func (s *Session) SkillStatuses() []progression.SkillView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skills.Skills(s.wallet)
}

// Choose selects a decision choice. A choice that names a ship switches
// the loadout.
func (s *Session) Choose(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning {
		return false
	}
	before := s.wallet
	ch, ok := s.decisions.Select(id, &s.wallet, s.blocksDestroyed)
	if !ok {
		return false
	}
	s.weapon.SetUpgrades(s.decisions.Upgrades())
	if ch.Effects.ShipConfig != "" {
		s.switchShip(ch.Effects.ShipConfig)
	}
	s.emit(Event{
		Kind:      EventChoiceSelected,
		SoulDelta: s.wallet.Soul - before.Soul,
		GodsDelta: s.wallet.Gods - before.Gods,
		Ref:       id,
	})
	s.syncTimers()
	s.publish()
	return true
}

// CheckChoice reports why a choice cannot be selected right now.
func (s *Session) CheckChoice(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning {
		return ErrNotRunning
	}
	return s.decisions.Check(id, s.wallet, s.blocksDestroyed)
}

// AvailableChoices lists the choices selectable now, ignoring cost.
func (s *Session) AvailableChoices() []decision.Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decisions.Available(s.blocksDestroyed)
}

func (s *Session) switchShip(id string) {
	cfg, ok := s.ships.Get(id)
	if !ok {
		s.logger.Warn("unknown ship in choice", zap.String("ship", id))
		return
	}
	s.loadout = cfg
	s.weapon.SetBase(cfg.Weapon)
	s.trail.SetMax(cfg.Trail.Length)
	s.logger.Info("ship changed", zap.String("ship", id))
}

// Summary returns the session record for the proof service. It does not
// change any state. A running session reports the current time as its end.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.ended
	if s.phase != PhaseEnded {
		end = s.now()
	}
	start := s.started
	if start.IsZero() {
		start = end
	}
	return Summary{
		PlayerAddress:   s.player,
		StartTimestamp:  start.Unix(),
		EndTimestamp:    end.Unix(),
		BlocksDestroyed: s.blocksDestroyed,
		DecisionsMade:   s.decisions.Codes(),
		FinalSoulTokens: s.wallet.Soul,
		TotalClicks:     s.clicks,
		Version:         SummaryVersion,
	}
}
