package progression

import (
	"math"

	"go.uber.org/zap"

	"github.com/tomz197/orbitclicker/internal/scripting"
)

// Lua hook names recognised on scripted skills.
const (
	hookModifyStats    = "modify_stats"
	hookOnClick        = "on_click"
	hookOnBlockDestroy = "on_block_destroy"
	hookPassive        = "passive"
)

// ScriptEffect builds an Effect backed by a compiled Lua script. Only hooks
// the script defines become capabilities. Runtime errors are logged and the
// hook contributes nothing for that call.
func ScriptEffect(s *scripting.Script, logger *zap.Logger) Effect {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("script", s.Name()))
	warn := func(hook string, err error) {
		logger.Warn("skill script failed", zap.String("hook", hook), zap.Error(err))
	}

	var e Effect
	if s.Has(hookModifyStats) {
		e.ModifyStats = func(st Stats) Stats {
			t, err := s.CallTable(hookModifyStats, statsToTable(st))
			if err != nil {
				warn(hookModifyStats, err)
				return st
			}
			if t == nil {
				return st
			}
			return statsFromTable(st, t)
		}
	}
	if s.Has(hookOnClick) {
		e.OnClick = func(ctx *Context) ClickEffect {
			t, err := s.CallTable(hookOnClick, contextTable(ctx))
			if err != nil {
				warn(hookOnClick, err)
				return ClickEffect{}
			}
			return ClickEffect{
				PiercingShot:  boolField(t, "piercing_shot"),
				InstantKill:   boolField(t, "instant_kill"),
				TargetWeakest: boolField(t, "target_weakest"),
			}
		}
	}
	if s.Has(hookOnBlockDestroy) {
		e.OnBlockDestroy = func(b BlockInfo, ctx *Context) int {
			n, err := s.CallNumber(hookOnBlockDestroy, map[string]any{
				"base_reward": b.BaseReward,
				"integrity":   b.Integrity,
			}, contextTable(ctx))
			if err != nil {
				warn(hookOnBlockDestroy, err)
				return 0
			}
			return int(math.Floor(n))
		}
	}
	if s.Has(hookPassive) {
		e.Passive = func(ctx *Context) int {
			n, err := s.CallNumber(hookPassive, contextTable(ctx))
			if err != nil {
				warn(hookPassive, err)
				return 0
			}
			return int(math.Floor(n))
		}
	}
	return e
}

// contextTable exposes a read-only view of ctx. roll is a fresh uniform
// draw so scripts stay deterministic under a seeded source.
func contextTable(ctx *Context) map[string]any {
	t := map[string]any{"click_count": 0, "soul": 0, "gods": 0, "roll": 0.0}
	if ctx == nil {
		return t
	}
	t["click_count"] = ctx.ClickCount
	if ctx.Currency != nil {
		t["soul"] = ctx.Currency.Soul
		t["gods"] = ctx.Currency.Gods
	}
	if ctx.Rand != nil {
		t["roll"] = ctx.Rand.Float64()
	}
	return t
}

func statsToTable(s Stats) map[string]any {
	return map[string]any{
		"click_damage":        s.ClickDamage,
		"passive_income":      s.PassiveIncome,
		"auto_click_rate":     s.AutoClickRate,
		"bullet_count":        s.BulletCount,
		"currency_multiplier": s.CurrencyMultiplier,
		"auto_satellites":     s.AutoSatellites,
		"special_effects":     s.SpecialEffects,
	}
}

// statsFromTable overlays the numeric fields present in t onto base.
func statsFromTable(base Stats, t map[string]any) Stats {
	num := func(key string, dst *float64) {
		if v, ok := t[key].(float64); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := t[key].(float64); ok {
			*dst = int(math.Floor(v))
		}
	}
	num("click_damage", &base.ClickDamage)
	num("auto_click_rate", &base.AutoClickRate)
	num("currency_multiplier", &base.CurrencyMultiplier)
	integer("passive_income", &base.PassiveIncome)
	integer("bullet_count", &base.BulletCount)
	integer("auto_satellites", &base.AutoSatellites)

	if list, ok := t["special_effects"].([]any); ok {
		effects := make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := v.(string); ok {
				effects = append(effects, s)
			}
		}
		base.SpecialEffects = effects
	}
	return base
}

func boolField(t map[string]any, key string) bool {
	b, _ := t[key].(bool)
	return b
}
