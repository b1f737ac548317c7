package progression

import (
	"github.com/tomz197/orbitclicker/internal/economy"
	"github.com/tomz197/orbitclicker/internal/random"
)

// BaseReward is the soul paid for every destroyed block before bonuses.
const BaseReward = 1

// Context is the state a hook may read and write. It is passed explicitly to
// every hook call.
type Context struct {
	Currency   *economy.Currency
	ClickCount int
	Rand       random.Source
}

// BlockInfo describes a destroyed block to OnBlockDestroy hooks.
type BlockInfo struct {
	BaseReward int
	// Integrity is the block's starting integrity; weak blocks have 1.
	Integrity float64
}

// ClickEffect is what OnClick hooks ask the session to do with this click.
type ClickEffect struct {
	PiercingShot  bool `json:"piercingShot,omitempty"`
	InstantKill   bool `json:"instantKill,omitempty"`
	TargetWeakest bool `json:"targetWeakest,omitempty"`
}

// Merge ORs two click effects.
func (c ClickEffect) Merge(o ClickEffect) ClickEffect {
	return ClickEffect{
		PiercingShot:  c.PiercingShot || o.PiercingShot,
		InstantKill:   c.InstantKill || o.InstantKill,
		TargetWeakest: c.TargetWeakest || o.TargetWeakest,
	}
}

// Effect is the behaviour attached to a skill. Each capability is optional;
// a nil function means the skill does not take part in that aggregation.
type Effect struct {
	ModifyStats    func(Stats) Stats
	OnClick        func(*Context) ClickEffect
	OnBlockDestroy func(BlockInfo, *Context) int
	Passive        func(*Context) int
	// OnPurchase returns a message describing what the purchase did.
	OnPurchase func(*Context) string
}

// IsZero reports whether the effect has no capabilities.
func (e Effect) IsZero() bool {
	return e.ModifyStats == nil && e.OnClick == nil && e.OnBlockDestroy == nil &&
		e.Passive == nil && e.OnPurchase == nil
}

func announce(msg string) func(*Context) string {
	return func(*Context) string { return msg }
}
