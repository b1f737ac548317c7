package progression

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tomz197/orbitclicker/internal/economy"
	"github.com/tomz197/orbitclicker/internal/scripting"
)

// Purchase rejections returned by Check.
var (
	ErrUnknownSkill       = errors.New("unknown skill")
	ErrAlreadyPurchased   = errors.New("skill already purchased")
	ErrPrerequisiteNotMet = errors.New("prerequisite not met")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)

// Status is the per-skill state: Locked, Available, then Purchased.
type Status int

const (
	Locked Status = iota
	Available
	Purchased
)

func (s Status) String() string {
	switch s {
	case Locked:
		return "locked"
	case Available:
		return "available"
	case Purchased:
		return "purchased"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// SkillView is a skill with its current status, for UIs.
type SkillView struct {
	Skill
	Status     Status `json:"status"`
	Affordable bool   `json:"affordable"`
}

// Engine tracks purchased skills and the stats derived from them.
// It is not safe for concurrent use.
type Engine struct {
	catalog   *Catalog
	effects   []Effect
	purchased []bool
	stats     Stats
	scripts   []*scripting.Script
	logger    *zap.Logger
}

// NewEngine binds an effect to every catalog skill. Skills with a script get
// a Lua effect; the rest use the built-in effect for their id, if any.
func NewEngine(c *Catalog, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		catalog:   c,
		effects:   make([]Effect, c.Len()),
		purchased: make([]bool, c.Len()),
		stats:     Baseline(),
		logger:    logger,
	}
	for i, s := range c.skills {
		if s.Script != "" {
			sc, err := scripting.Compile(s.ID, s.Script, scripting.DefaultInstructionLimit)
			if err != nil {
				e.Close()
				return nil, fmt.Errorf("skill %q: %w", s.ID, err)
			}
			e.scripts = append(e.scripts, sc)
			e.effects[i] = ScriptEffect(sc, logger)
			continue
		}
		if eff, ok := BuiltinEffect(s.ID); ok {
			e.effects[i] = eff
		} else {
			logger.Debug("skill has no effect", zap.String("skill", s.ID))
		}
	}
	return e, nil
}

// Close releases any Lua VMs held by scripted skills.
func (e *Engine) Close() {
	for _, s := range e.scripts {
		s.Close()
	}
	e.scripts = nil
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Stats returns a copy of the aggregate stats.
func (e *Engine) Stats() Stats { return e.stats.Clone() }

// IsPurchased reports whether id has been bought.
func (e *Engine) IsPurchased(id string) bool {
	i, ok := e.catalog.index[id]
	return ok && e.purchased[i]
}

// Purchased returns the purchased ids in catalog order.
func (e *Engine) Purchased() []string {
	var out []string
	for i, p := range e.purchased {
		if p {
			out = append(out, e.catalog.skills[i].ID)
		}
	}
	return out
}

// Status reports the state of a skill. Unknown ids are Locked.
func (e *Engine) Status(id string) Status {
	i, ok := e.catalog.index[id]
	if !ok {
		return Locked
	}
	if e.purchased[i] {
		return Purchased
	}
	if !e.prerequisitesMet(i) {
		return Locked
	}
	return Available
}

// Skills returns every skill with its status against wallet.
func (e *Engine) Skills(wallet economy.Currency) []SkillView {
	out := make([]SkillView, len(e.catalog.skills))
	for i, s := range e.catalog.skills {
		out[i] = SkillView{
			Skill:      s,
			Status:     e.Status(s.ID),
			Affordable: wallet.CanAfford(s.Cost),
		}
	}
	return out
}

func (e *Engine) prerequisitesMet(i int) bool {
	for _, p := range e.catalog.skills[i].Prerequisites {
		if !e.purchased[e.catalog.index[p]] {
			return false
		}
	}
	return true
}

// Check reports why id cannot be bought with wallet, or nil if it can.
// It has no side effects.
func (e *Engine) Check(id string, wallet economy.Currency) error {
	i, ok := e.catalog.index[id]
	switch {
	case !ok:
		return fmt.Errorf("%w: %q", ErrUnknownSkill, id)
	case e.purchased[i]:
		return fmt.Errorf("%w: %q", ErrAlreadyPurchased, id)
	case !e.prerequisitesMet(i):
		return fmt.Errorf("%w: %q", ErrPrerequisiteNotMet, id)
	case !wallet.CanAfford(e.catalog.skills[i].Cost):
		return fmt.Errorf("%w: %q costs %s", ErrInsufficientFunds, id, e.catalog.skills[i].Cost)
	}
	return nil
}

// CanPurchase reports whether Check passes.
func (e *Engine) CanPurchase(id string, wallet economy.Currency) bool {
	return e.Check(id, wallet) == nil
}

// Purchase debits ctx.Currency, marks the skill bought, runs its OnPurchase
// hook and rebuilds the stats. A rejected purchase changes nothing.
func (e *Engine) Purchase(id string, ctx *Context) bool {
	if ctx == nil || ctx.Currency == nil {
		return false
	}
	if err := e.Check(id, *ctx.Currency); err != nil {
		e.logger.Debug("purchase rejected", zap.String("skill", id), zap.Error(err))
		return false
	}
	i := e.catalog.index[id]
	if !ctx.Currency.Debit(e.catalog.skills[i].Cost) {
		return false
	}
	e.purchased[i] = true

	fields := []zap.Field{zap.String("skill", id), zap.Stringer("cost", e.catalog.skills[i].Cost)}
	if hook := e.effects[i].OnPurchase; hook != nil {
		fields = append(fields, zap.String("effect", hook(ctx)))
	}
	e.logger.Info("skill purchased", fields...)

	e.recalculate()
	return true
}

// recalculate folds ModifyStats over the purchased skills in catalog order.
func (e *Engine) recalculate() {
	s := Baseline()
	for i, p := range e.purchased {
		if !p || e.effects[i].ModifyStats == nil {
			continue
		}
		s = e.effects[i].ModifyStats(s.Clone())
	}
	e.stats = s
}

// HandleClick runs every OnClick hook and merges the results.
func (e *Engine) HandleClick(ctx *Context) ClickEffect {
	var out ClickEffect
	for i, p := range e.purchased {
		if p && e.effects[i].OnClick != nil {
			out = out.Merge(e.effects[i].OnClick(ctx))
		}
	}
	return out
}

// HandleBlockDestroy returns the bonus currency for a destroyed block: the
// sum of every OnBlockDestroy hook scaled by the currency multiplier.
func (e *Engine) HandleBlockDestroy(b BlockInfo, ctx *Context) int {
	sum := 0
	for i, p := range e.purchased {
		if p && e.effects[i].OnBlockDestroy != nil {
			sum += e.effects[i].OnBlockDestroy(b, ctx)
		}
	}
	return e.scale(sum)
}

// PassiveIncome returns the per-second income from Passive hooks, scaled
// like block bonuses.
func (e *Engine) PassiveIncome(ctx *Context) int {
	sum := 0
	for i, p := range e.purchased {
		if p && e.effects[i].Passive != nil {
			sum += e.effects[i].Passive(ctx)
		}
	}
	return e.scale(sum)
}

func (e *Engine) scale(sum int) int {
	return int(math.Floor(float64(sum) * e.stats.CurrencyMultiplier))
}
