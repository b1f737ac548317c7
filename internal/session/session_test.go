package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/orbitclicker/internal/config"
	"github.com/tomz197/orbitclicker/internal/decision"
	"github.com/tomz197/orbitclicker/internal/economy"
	"github.com/tomz197/orbitclicker/internal/progression"
	"github.com/tomz197/orbitclicker/internal/random"
)

const frame = 16 * time.Millisecond

// freeSkills is the default skill tree with no prerequisites or costs.
func freeSkills(t *testing.T) *progression.Catalog {
	t.Helper()
	skills := progression.Default().Skills()
	for i := range skills {
		skills[i].Prerequisites = nil
		skills[i].Cost = economy.Cost{}
	}
	c, err := progression.NewCatalog(skills)
	require.NoError(t, err)
	return c
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Source == nil {
		opts.Source = random.New(1)
	}
	if opts.Player == "" {
		opts.Player = testAddress
	}
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func damageDealt(snap *Snapshot) float64 {
	total := 0.0
	for _, b := range snap.Blocks {
		total += b.MaxIntegrity - b.Integrity
	}
	return total
}

func TestLifecycle(t *testing.T) {
	s := newTestSession(t, Options{})
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.False(t, s.Fire(), "idle sessions ignore input")

	s.Step(frame)
	assert.Zero(t, s.Snapshot().Frame, "idle sessions do not step")

	require.True(t, s.Start())
	assert.False(t, s.Start())
	assert.Equal(t, PhaseRunning, s.Phase())

	require.True(t, s.End())
	assert.False(t, s.End())
	assert.Equal(t, PhaseEnded, s.Snapshot().Phase)
	assert.False(t, s.Fire())
	assert.False(t, s.Purchase("packet-injection-1"))
	assert.ErrorIs(t, s.CheckPurchase("packet-injection-1"), ErrNotRunning)

	events := drain(s.Events())
	require.NotEmpty(t, events)
	assert.Equal(t, EventSessionEnded, events[len(events)-1].Kind)
	_, open := <-s.Events()
	assert.False(t, open, "event stream is closed")
}

func TestNew_Defaults(t *testing.T) {
	s := newTestSession(t, Options{})
	snap := s.Snapshot()
	assert.Equal(t, 221, len(snap.Blocks))
	assert.Equal(t, economy.Currency{Soul: 100}, snap.Currency)
	assert.Equal(t, "default", snap.Ship)
	assert.Equal(t, 400.0, snap.PlanetCenter.X)
	assert.Equal(t, 300.0, snap.PlanetCenter.Y)
	assert.NotEmpty(t, s.ID())
}

func TestNew_BlockSizeFromConfig(t *testing.T) {
	g := config.Default().Game
	g.BlockSize = 12
	s := newTestSession(t, Options{Game: g})
	snap := s.Snapshot()
	require.Len(t, snap.Blocks, 85)
	for _, b := range snap.Blocks {
		assert.Equal(t, 12.0, b.EdgeLength())
	}
}

func TestNew_UnknownShip(t *testing.T) {
	g := config.Default().Game
	g.Ship = "zeppelin"
	_, err := New(Options{Game: g})
	assert.Error(t, err)
}

func TestFire_SingleBulletDamagesOnce(t *testing.T) {
	s := newTestSession(t, Options{})
	require.True(t, s.Start())
	require.True(t, s.Fire())

	for i := 0; i < 100; i++ {
		s.Step(frame)
	}
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.TotalClicks)
	assert.Empty(t, snap.Projectiles)
	assert.Equal(t, 1.0, damageDealt(snap))
	assert.Equal(t, 100+snap.BlocksDestroyed, snap.Currency.Soul)
	assert.Equal(t, snap.BlocksDestroyed, snap.Score)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := newTestSession(t, Options{})
	require.True(t, s.Start())
	s.Step(frame)

	snap := s.Snapshot()
	snap.Blocks[0].Integrity = -100
	snap.Blocks[0].Destroyed = true

	s.Step(frame)
	assert.False(t, s.Snapshot().Blocks[0].Destroyed)
}

func TestPurchase_DebitsAndEmits(t *testing.T) {
	s := newTestSession(t, Options{})
	require.True(t, s.Start())

	require.True(t, s.Purchase("packet-injection-1"))
	assert.False(t, s.Purchase("packet-injection-1"))
	assert.Equal(t, 50, s.Wallet().Soul)
	assert.False(t, s.CanPurchase("ssl-bypass"))
	assert.ErrorIs(t, s.CheckPurchase("ssl-bypass"), progression.ErrInsufficientFunds)
	assert.Equal(t, 1.5, s.Snapshot().Stats.ClickDamage)

	events := drain(s.Events())
	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: EventSkillPurchased, SoulDelta: -50, Ref: "packet-injection-1"}, events[0])
}

func TestPassiveIncome_OncePerSecond(t *testing.T) {
	s := newTestSession(t, Options{Catalogs: Catalogs{Skills: freeSkills(t)}})
	require.True(t, s.Start())
	require.True(t, s.Purchase("basic-firewall"))
	drain(s.Events())

	for i := 0; i < 3; i++ {
		s.Step(250 * time.Millisecond)
	}
	assert.Equal(t, 100, s.Wallet().Soul)
	s.Step(250 * time.Millisecond)
	assert.Equal(t, 101, s.Wallet().Soul)

	events := drain(s.Events())
	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: EventPassiveIncome, SoulDelta: 1}, events[0])
}

func TestStep_CapsDelta(t *testing.T) {
	s := newTestSession(t, Options{Catalogs: Catalogs{Skills: freeSkills(t)}})
	require.True(t, s.Start())
	require.True(t, s.Purchase("basic-firewall"))

	s.Step(10 * time.Second)
	assert.Equal(t, 100, s.Wallet().Soul, "a 10s stall counts as one capped step")
}

func TestChoose_AutoFireAndShipSwitch(t *testing.T) {
	stages, err := decision.NewCatalog([]decision.Stage{{
		ID: 1,
		Choices: []decision.Choice{{
			ID:   "automation",
			Code: 1,
			Cost: economy.Cost{Soul: 50},
			Effects: decision.Effects{
				EnableAutoBullets: true,
				FireRateBonus:     1,
				ShipConfig:        "technical",
				EvilPoints:        1,
			},
		}},
	}})
	require.NoError(t, err)

	s := newTestSession(t, Options{Catalogs: Catalogs{Stages: stages}})
	require.True(t, s.Start())
	require.Len(t, s.AvailableChoices(), 1)
	require.True(t, s.Choose("automation"))
	assert.False(t, s.Choose("automation"))
	assert.ErrorIs(t, s.CheckChoice("automation"), decision.ErrAlreadySelected)

	snap := s.Snapshot()
	assert.Equal(t, "technical", snap.Ship)
	assert.Equal(t, 50, snap.Currency.Soul)
	assert.Contains(t, snap.Weapon.SpecialAbilities, "Auto-Fire")
	assert.Equal(t, []string{"automation"}, snap.Decisions.SelectedChoices)

	for i := 0; i < 4; i++ {
		s.Step(250 * time.Millisecond)
	}
	snap = s.Snapshot()
	assert.NotEmpty(t, snap.Projectiles, "auto-fire spawns without input")
	assert.Zero(t, snap.TotalClicks, "timer fire is not a click")
	assert.Equal(t, []int{1}, s.Summary().DecisionsMade)
}

func TestInstantKill(t *testing.T) {
	s := newTestSession(t, Options{
		Catalogs: Catalogs{Skills: freeSkills(t)},
		Source:   random.NewSequence(0.01),
	})
	require.True(t, s.Start())
	require.True(t, s.Purchase("blockchain-destroyer"))

	require.True(t, s.Fire())
	s.Step(frame)

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.BlocksDestroyed)
	assert.Equal(t, 101, snap.Currency.Soul)
	assert.Equal(t, 1, snap.TotalClicks)
}

func TestTotalClicks_CountsOnlyPlayerFire(t *testing.T) {
	s := newTestSession(t, Options{Catalogs: Catalogs{Skills: freeSkills(t)}})
	require.True(t, s.Start())
	require.True(t, s.Purchase("rapid-exploit"))
	require.True(t, s.Purchase("botnet-control"))

	for i := 0; i < 16; i++ {
		s.Step(250 * time.Millisecond)
	}
	snap := s.Snapshot()
	assert.NotEmpty(t, snap.Projectiles, "auto-click and drones fire on their own")
	assert.Zero(t, snap.TotalClicks)

	require.True(t, s.Fire())
	require.True(t, s.Fire())
	s.Step(frame)
	assert.Equal(t, 2, s.Snapshot().TotalClicks)
	assert.Equal(t, 2, s.Summary().TotalClicks)
}

func TestPlanetCleared_RegeneratesAndPaysGods(t *testing.T) {
	s := newTestSession(t, Options{})
	require.True(t, s.Start())

	s.mu.Lock()
	n := len(s.planet.Blocks)
	for i := range s.planet.Blocks {
		s.planet.Blocks[i].MarkDestroyed()
	}
	s.mu.Unlock()

	s.Step(frame)
	snap := s.Snapshot()
	assert.Equal(t, 2, snap.PlanetGeneration)
	assert.Len(t, snap.Blocks, n)
	for _, b := range snap.Blocks {
		assert.False(t, b.Destroyed)
	}
	assert.Equal(t, 1, snap.Currency.Gods)

	events := drain(s.Events())
	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: EventPlanetCleared, GodsDelta: 1}, events[0])
}

func TestShieldBlast_DestroysNeighbours(t *testing.T) {
	s := newTestSession(t, Options{
		Catalogs: Catalogs{Skills: freeSkills(t)},
		Source:   random.NewSequence(0.01),
	})
	require.True(t, s.Start())
	require.True(t, s.Purchase("ddos-shield"))
	require.True(t, s.Purchase("blockchain-destroyer"))

	// Every block has integrity 1, so the burst around the killed block
	// takes out at least one neighbour.
	require.True(t, s.Fire())
	s.Step(frame)
	assert.Greater(t, s.Snapshot().BlocksDestroyed, 1)
}

func TestSummary_ReadOnly(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_000, 0)}
	s := newTestSession(t, Options{Now: clock.Now})
	require.True(t, s.Start())
	for i := 0; i < 3; i++ {
		s.Fire()
	}
	s.Step(frame)

	clock.t = time.Unix(1_100, 0)
	before := s.Snapshot()
	sum := s.Summary()
	assert.Equal(t, before.Frame, s.Snapshot().Frame)
	assert.Equal(t, testAddress, sum.PlayerAddress)
	assert.Equal(t, int64(1_000), sum.StartTimestamp)
	assert.Equal(t, int64(1_100), sum.EndTimestamp)
	assert.Equal(t, 3, sum.TotalClicks)
	assert.Equal(t, []int{}, sum.DecisionsMade)
	assert.Equal(t, SummaryVersion, sum.Version)

	require.True(t, s.End())
	clock.t = time.Unix(2_000, 0)
	assert.Equal(t, int64(1_100), s.Summary().EndTimestamp, "ended sessions keep their end time")
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, PhaseEnded, s.Phase())
	assert.Positive(t, s.Snapshot().Frame)
}
