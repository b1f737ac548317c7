// Package economy models the two in-game currencies.
package economy

import "fmt"

// Currency is a wallet holding soul and gods tokens.
//
// Invariant: Debit never drives either balance below zero.
type Currency struct {
	Soul int `json:"soul" yaml:"soul" mapstructure:"soul"`
	Gods int `json:"gods" yaml:"gods" mapstructure:"gods"`
}

// Cost is a price on both currency axes. A zero axis is free.
type Cost struct {
	Soul int `json:"soul" yaml:"soul"`
	Gods int `json:"gods" yaml:"gods"`
}

// Validate reports an error when either axis is negative.
func (c Cost) Validate() error {
	if c.Soul < 0 || c.Gods < 0 {
		return fmt.Errorf("economy: negative cost %+v", c)
	}
	return nil
}

// IsFree reports whether the cost is zero on both axes.
func (c Cost) IsFree() bool { return c.Soul == 0 && c.Gods == 0 }

func (c Cost) String() string {
	switch {
	case c.Gods == 0:
		return fmt.Sprintf("%d soul", c.Soul)
	case c.Soul == 0:
		return fmt.Sprintf("%d gods", c.Gods)
	default:
		return fmt.Sprintf("%d soul + %d gods", c.Soul, c.Gods)
	}
}

// CanAfford reports whether both balances cover cost.
func (c Currency) CanAfford(cost Cost) bool {
	return c.Soul >= cost.Soul && c.Gods >= cost.Gods
}

// Debit subtracts cost from both balances if and only if both are covered.
//
// Postcondition: on false, the wallet is unchanged.
func (c *Currency) Debit(cost Cost) bool {
	if !c.CanAfford(cost) {
		return false
	}
	c.Soul -= cost.Soul
	c.Gods -= cost.Gods
	return true
}

// Credit adds non-negative amounts. Negative amounts are ignored.
func (c *Currency) Credit(soul, gods int) {
	if soul > 0 {
		c.Soul += soul
	}
	if gods > 0 {
		c.Gods += gods
	}
}
