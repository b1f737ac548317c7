package progression_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tomz197/orbitclicker/internal/economy"
	"github.com/tomz197/orbitclicker/internal/progression"
	"github.com/tomz197/orbitclicker/internal/random"
)

func newEngine(t testing.TB, skills ...progression.Skill) *progression.Engine {
	t.Helper()
	c, err := progression.NewCatalog(skills)
	require.NoError(t, err)
	e, err := progression.NewEngine(c, nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func wallet(soul, gods int) *progression.Context {
	return &progression.Context{Currency: &economy.Currency{Soul: soul, Gods: gods}}
}

func TestBaseline(t *testing.T) {
	s := progression.Baseline()
	assert.Equal(t, 1.0, s.ClickDamage)
	assert.Zero(t, s.PassiveIncome)
	assert.Zero(t, s.AutoClickRate)
	assert.Equal(t, 1, s.BulletCount)
	assert.Equal(t, 1.0, s.CurrencyMultiplier)
	assert.Zero(t, s.AutoSatellites)
	assert.Empty(t, s.SpecialEffects)
}

func TestPurchase_DoublesClickDamage(t *testing.T) {
	e := newEngine(t, progression.Skill{ID: "ssl-bypass", Cost: economy.Cost{Soul: 100}})
	ctx := wallet(100, 0)

	require.True(t, e.CanPurchase("ssl-bypass", *ctx.Currency))
	require.True(t, e.Purchase("ssl-bypass", ctx))
	assert.Equal(t, 0, ctx.Currency.Soul)
	assert.Equal(t, 2.0, e.Stats().ClickDamage)
	assert.Equal(t, progression.Purchased, e.Status("ssl-bypass"))
}

func TestPurchase_IsIdempotent(t *testing.T) {
	e := newEngine(t, progression.Skill{ID: "ssl-bypass", Cost: economy.Cost{Soul: 100}})
	ctx := wallet(500, 0)

	require.True(t, e.Purchase("ssl-bypass", ctx))
	assert.False(t, e.Purchase("ssl-bypass", ctx))
	assert.Equal(t, 400, ctx.Currency.Soul)
	assert.Equal(t, 2.0, e.Stats().ClickDamage)
	assert.ErrorIs(t, e.Check("ssl-bypass", *ctx.Currency), progression.ErrAlreadyPurchased)
}

func TestCheck_Rejections(t *testing.T) {
	e := newEngine(t,
		progression.Skill{ID: "packet-injection-1", Cost: economy.Cost{Soul: 50}},
		progression.Skill{ID: "ssl-bypass", Cost: economy.Cost{Soul: 450}, Prerequisites: []string{"packet-injection-1"}},
		progression.Skill{ID: "quantum-cracker", Cost: economy.Cost{Soul: 10, Gods: 1}},
	)
	rich := economy.Currency{Soul: 1_000_000, Gods: 100}

	assert.ErrorIs(t, e.Check("nope", rich), progression.ErrUnknownSkill)
	assert.ErrorIs(t, e.Check("ssl-bypass", rich), progression.ErrPrerequisiteNotMet)
	assert.ErrorIs(t, e.Check("packet-injection-1", economy.Currency{Soul: 49}), progression.ErrInsufficientFunds)
	assert.ErrorIs(t, e.Check("quantum-cracker", economy.Currency{Soul: 100}), progression.ErrInsufficientFunds)
	assert.NoError(t, e.Check("packet-injection-1", rich))

	assert.Equal(t, progression.Locked, e.Status("ssl-bypass"))
	assert.Equal(t, progression.Available, e.Status("packet-injection-1"))
	assert.Equal(t, progression.Locked, e.Status("nope"))
}

func TestPurchase_RejectionLeavesStateUnchanged(t *testing.T) {
	e := newEngine(t,
		progression.Skill{ID: "packet-injection-1", Cost: economy.Cost{Soul: 50}},
		progression.Skill{ID: "ssl-bypass", Cost: economy.Cost{Soul: 450}, Prerequisites: []string{"packet-injection-1"}},
	)
	ctx := wallet(1000, 0)

	assert.False(t, e.Purchase("ssl-bypass", ctx))
	assert.Equal(t, 1000, ctx.Currency.Soul)
	assert.Empty(t, e.Purchased())
	assert.Equal(t, progression.Baseline(), e.Stats())
	assert.False(t, e.Purchase("packet-injection-1", nil))
}

func TestCanPurchase_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cost := rapid.IntRange(0, 500).Draw(rt, "cost")
		soul := rapid.IntRange(0, 1000).Draw(rt, "soul")
		prereqBought := rapid.Bool().Draw(rt, "prereqBought")

		e := newEngine(t,
			progression.Skill{ID: "a"},
			progression.Skill{ID: "b", Cost: economy.Cost{Soul: cost}, Prerequisites: []string{"a"}},
		)
		if prereqBought {
			require.True(rt, e.Purchase("a", wallet(0, 0)))
		}
		got := e.CanPurchase("b", economy.Currency{Soul: soul})
		assert.Equal(rt, prereqBought && soul >= cost, got)
	})
}

// flatCatalog is the default tree with prerequisites and costs removed so
// any subset can be bought in any order.
func flatCatalog(t testing.TB) []progression.Skill {
	skills := progression.Default().Skills()
	for i := range skills {
		skills[i].Prerequisites = nil
		skills[i].Cost = economy.Cost{}
	}
	return skills
}

func TestStats_FoldIsOrderIndependent(t *testing.T) {
	skills := flatCatalog(t)
	rapid.Check(t, func(rt *rapid.T) {
		picked := rapid.SliceOfDistinct(rapid.IntRange(0, len(skills)-1), rapid.ID[int]).Draw(rt, "picked")
		order := rapid.Permutation(picked).Draw(rt, "order")

		inOrder := newEngine(t, skills...)
		shuffled := newEngine(t, skills...)
		for i := range skills {
			for _, p := range picked {
				if p == i {
					require.True(rt, inOrder.Purchase(skills[i].ID, wallet(0, 0)))
				}
			}
		}
		for _, p := range order {
			require.True(rt, shuffled.Purchase(skills[p].ID, wallet(0, 0)))
		}
		assert.Equal(rt, inOrder.Stats(), shuffled.Stats())
	})
}

func TestStats_StackedModifiers(t *testing.T) {
	e := newEngine(t, flatCatalog(t)...)
	for _, id := range []string{"ssl-bypass", "packet-injection-1", "precise-targeting", "zero-day-arsenal", "botnet-control", "ddos-shield", "rapid-exploit"} {
		require.True(t, e.Purchase(id, wallet(0, 0)), id)
	}
	s := e.Stats()
	assert.Equal(t, 3.0, s.ClickDamage)
	assert.Equal(t, 4, s.BulletCount)
	assert.Equal(t, 1, s.AutoSatellites)
	assert.Equal(t, 0.5, s.AutoClickRate)
	assert.True(t, s.HasEffect(progression.EffectExplosion))
	assert.Equal(t, 2.0, s.ExtraDamage())
	assert.Equal(t, 3, s.ExtraBullets())
}

func TestHandleBlockDestroy_ScaledByMultiplier(t *testing.T) {
	e := newEngine(t, flatCatalog(t)...)
	ctx := wallet(0, 0)
	ctx.Rand = random.NewSequence(0.99)
	block := progression.BlockInfo{BaseReward: 4, Integrity: 3}

	assert.Zero(t, e.HandleBlockDestroy(block, ctx))

	require.True(t, e.Purchase("hash-buffer-1", ctx))
	assert.Equal(t, 1, e.HandleBlockDestroy(block, ctx))

	require.True(t, e.Purchase("crypto-oracle", ctx))
	assert.Equal(t, 9, e.HandleBlockDestroy(block, ctx))

	// floor((1 + 8) * 1.5)
	require.True(t, e.Purchase("hash-cracking", ctx))
	assert.Equal(t, 13, e.HandleBlockDestroy(block, ctx))
}

func TestHandleBlockDestroy_WeakBlocksAndScanner(t *testing.T) {
	e := newEngine(t, flatCatalog(t)...)
	ctx := wallet(0, 0)
	require.True(t, e.Purchase("blockchain-analysis", ctx))
	require.True(t, e.Purchase("network-scanner", ctx))

	ctx.Rand = random.NewSequence(0.05)
	assert.Equal(t, 4+2, e.HandleBlockDestroy(progression.BlockInfo{BaseReward: 4, Integrity: 1}, ctx))

	ctx.Rand = random.NewSequence(0.5)
	assert.Equal(t, 0, e.HandleBlockDestroy(progression.BlockInfo{BaseReward: 4, Integrity: 2}, ctx))
}

func TestPassiveIncome(t *testing.T) {
	e := newEngine(t, flatCatalog(t)...)
	ctx := wallet(0, 0)
	assert.Zero(t, e.PassiveIncome(ctx))

	require.True(t, e.Purchase("basic-firewall", ctx))
	require.True(t, e.Purchase("mining-rig", ctx))
	assert.Equal(t, 6, e.PassiveIncome(ctx))
	assert.Equal(t, 6, e.Stats().PassiveIncome)

	require.True(t, e.Purchase("hash-cracking", ctx))
	assert.Equal(t, 9, e.PassiveIncome(ctx))
}

func TestHandleClick(t *testing.T) {
	e := newEngine(t, flatCatalog(t)...)
	ctx := wallet(0, 0)
	ctx.Rand = random.NewSequence(0.01)
	assert.Equal(t, progression.ClickEffect{}, e.HandleClick(ctx))

	require.True(t, e.Purchase("zero-day-arsenal", ctx))
	require.True(t, e.Purchase("transaction-sniper", ctx))
	require.True(t, e.Purchase("blockchain-destroyer", ctx))

	ctx.ClickCount = 9
	got := e.HandleClick(ctx)
	assert.False(t, got.PiercingShot)
	assert.True(t, got.TargetWeakest)
	assert.True(t, got.InstantKill)

	ctx.ClickCount = 10
	ctx.Rand = random.NewSequence(0.9)
	got = e.HandleClick(ctx)
	assert.True(t, got.PiercingShot)
	assert.False(t, got.InstantKill)
}

func TestScriptedSkill(t *testing.T) {
	e := newEngine(t, flatCatalog(t)...)
	ctx := wallet(0, 0)
	ctx.Rand = random.NewSequence(0.1)
	require.True(t, e.Purchase("entropy-harvester", ctx))

	assert.Equal(t, 2, e.Stats().PassiveIncome)
	ctx.ClickCount = 250
	assert.Equal(t, 4, e.PassiveIncome(ctx))
	assert.Equal(t, 3, e.HandleBlockDestroy(progression.BlockInfo{BaseReward: 3, Integrity: 2}, ctx))
}

func TestScriptedSkill_RuntimeErrorIsNoOp(t *testing.T) {
	e := newEngine(t, progression.Skill{
		ID:     "broken",
		Script: "function passive(ctx) return ctx.missing.field end\nfunction modify_stats(s) error('boom') end",
	})
	ctx := wallet(0, 0)
	require.True(t, e.Purchase("broken", ctx))
	assert.Zero(t, e.PassiveIncome(ctx))
	assert.Equal(t, progression.Baseline(), e.Stats())
}

func TestNewEngine_BadScript(t *testing.T) {
	c, err := progression.NewCatalog([]progression.Skill{{ID: "x", Script: "function ("}})
	require.NoError(t, err)
	_, err = progression.NewEngine(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `skill "x"`)
}

func TestSkills_View(t *testing.T) {
	e := newEngine(t,
		progression.Skill{ID: "packet-injection-1", Cost: economy.Cost{Soul: 50}},
		progression.Skill{ID: "ssl-bypass", Cost: economy.Cost{Soul: 450}, Prerequisites: []string{"packet-injection-1"}},
	)
	views := e.Skills(economy.Currency{Soul: 60})
	require.Len(t, views, 2)
	assert.Equal(t, progression.Available, views[0].Status)
	assert.True(t, views[0].Affordable)
	assert.Equal(t, progression.Locked, views[1].Status)
	assert.False(t, views[1].Affordable)
	assert.Equal(t, "locked", views[1].Status.String())
}

func TestOnPurchaseMessages(t *testing.T) {
	for _, s := range progression.Default().Skills() {
		eff, ok := progression.BuiltinEffect(s.ID)
		if s.Script != "" {
			assert.False(t, ok, "%s is scripted and built in", s.ID)
			continue
		}
		require.True(t, ok, "%s has no effect", s.ID)
		require.NotNil(t, eff.OnPurchase, s.ID)
		assert.False(t, strings.TrimSpace(eff.OnPurchase(nil)) == "", s.ID)
	}
}
