package progression

import "math"

// builtinEffects maps skill ids to their effects.
var builtinEffects = map[string]Effect{
	"packet-injection-1": {
		ModifyStats: func(s Stats) Stats { s.ClickDamage *= 1.5; return s },
		OnPurchase:  announce("Basic packet injection activated: 50% more click damage"),
	},
	"hash-buffer-1": {
		OnBlockDestroy: func(b BlockInfo, _ *Context) int {
			return int(math.Floor(float64(b.BaseReward) * 0.25))
		},
		OnPurchase: announce("Hash buffer initialized: 25% bonus currency from blocks"),
	},
	"basic-firewall": {
		ModifyStats: func(s Stats) Stats { s.PassiveIncome += 1; return s },
		Passive:     func(*Context) int { return 1 },
		OnPurchase:  announce("Basic firewall deployed: +1 soul/sec passive income"),
	},
	"network-scanner": {
		OnBlockDestroy: func(b BlockInfo, ctx *Context) int {
			if ctx.Rand != nil && ctx.Rand.Float64() < 0.1 {
				return b.BaseReward
			}
			return 0
		},
		OnPurchase: announce("Network scanner online: 10% chance for double block rewards"),
	},
	"rapid-exploit": {
		ModifyStats: func(s Stats) Stats { s.AutoClickRate = math.Max(s.AutoClickRate, 0.5); return s },
		OnPurchase:  announce("Rapid exploit deployed: auto-click every 2 seconds"),
	},
	"precise-targeting": {
		ModifyStats: func(s Stats) Stats { s.BulletCount += 1; return s },
		OnPurchase:  announce("Precision targeting activated: +1 bullet per click"),
	},
	"hash-cracking": {
		ModifyStats: func(s Stats) Stats { s.CurrencyMultiplier *= 1.5; return s },
		OnPurchase:  announce("Hash cracking enabled: 50% more bonus currency"),
	},
	"blockchain-analysis": {
		OnBlockDestroy: func(b BlockInfo, _ *Context) int {
			if b.Integrity <= 1 {
				return int(math.Floor(float64(b.BaseReward) * 0.5))
			}
			return 0
		},
		OnPurchase: announce("Blockchain analysis active: bonus currency for weak blocks"),
	},
	"mining-rig": {
		ModifyStats: func(s Stats) Stats { s.PassiveIncome += 5; return s },
		Passive:     func(*Context) int { return 5 },
		OnPurchase:  announce("Mining rig constructed: +5 soul/sec passive income"),
	},
	"ddos-shield": {
		ModifyStats: func(s Stats) Stats { s.SpecialEffects = append(s.SpecialEffects, EffectExplosion); return s },
		OnPurchase:  announce("DDoS shield active: destroyed blocks burst and damage neighbours"),
	},
	"botnet-control": {
		ModifyStats: func(s Stats) Stats { s.AutoSatellites += 1; return s },
		OnPurchase:  announce("Botnet established: +1 auto-firing satellite"),
	},
	"ssl-bypass": {
		ModifyStats: func(s Stats) Stats { s.ClickDamage *= 2; return s },
		OnPurchase:  announce("SSL bypass enabled: double click damage"),
	},
	"zero-day-arsenal": {
		ModifyStats: func(s Stats) Stats { s.BulletCount += 2; return s },
		OnClick: func(ctx *Context) ClickEffect {
			return ClickEffect{PiercingShot: ctx.ClickCount > 0 && ctx.ClickCount%10 == 0}
		},
		OnPurchase: announce("Zero-day arsenal loaded: +2 bullets per click, every 10th click pierces"),
	},
	"transaction-sniper": {
		OnClick:    func(*Context) ClickEffect { return ClickEffect{TargetWeakest: true} },
		OnPurchase: announce("Transaction sniper online: clicks target the weakest block"),
	},
	"quantum-cracker": {
		ModifyStats: func(s Stats) Stats {
			s.ClickDamage *= 3
			s.SpecialEffects = append(s.SpecialEffects, EffectQuantum)
			return s
		},
		OnPurchase: announce("Quantum cracker deployed: triple damage"),
	},
	"asic-farm": {
		ModifyStats: func(s Stats) Stats { s.PassiveIncome += 50; return s },
		Passive:     func(*Context) int { return 50 },
		OnPurchase:  announce("ASIC farm operational: +50 soul/sec passive income"),
	},
	"blockchain-destroyer": {
		ModifyStats: func(s Stats) Stats {
			s.ClickDamage *= 5
			s.SpecialEffects = append(s.SpecialEffects, EffectDestroyer)
			return s
		},
		OnClick: func(ctx *Context) ClickEffect {
			return ClickEffect{InstantKill: ctx.Rand != nil && ctx.Rand.Float64() < 0.05}
		},
		OnPurchase: announce("Blockchain destroyer online: 5x damage, 5% instant kill chance"),
	},
	"crypto-oracle": {
		OnBlockDestroy: func(b BlockInfo, _ *Context) int {
			return int(math.Floor(float64(b.BaseReward) * 2))
		},
		OnPurchase: announce("Crypto oracle awakened: double block rewards"),
	},
}

// BuiltinEffect returns the compiled-in effect for a skill id.
func BuiltinEffect(id string) (Effect, bool) {
	e, ok := builtinEffects[id]
	return e, ok
}
