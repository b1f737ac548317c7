package decision

import (
	"errors"

	"go.uber.org/zap"

	"github.com/tomz197/orbitclicker/internal/economy"
)

var (
	ErrUnknownChoice     = errors.New("unknown choice")
	ErrAlreadySelected   = errors.New("choice already selected")
	ErrUnavailable       = errors.New("choice not available")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Engine tracks one session's decision progress against a catalog.
type Engine struct {
	catalog *Catalog
	state   PlayerState
	logger  *zap.Logger
}

// NewEngine creates an engine at the initial player state.
func NewEngine(c *Catalog, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{catalog: c, state: NewPlayerState(), logger: logger}
}

// State returns a copy of the player state.
func (e *Engine) State() PlayerState { return e.state.Clone() }

// Upgrades returns the current weapon upgrades.
func (e *Engine) Upgrades() WeaponUpgrades { return e.state.WeaponUpgrades }

// Available lists the choices selectable with blocksDestroyed progress.
func (e *Engine) Available(blocksDestroyed int) []Choice {
	return Available(e.catalog.Stages(), e.state, blocksDestroyed)
}

// Check reports why id cannot be selected, or nil if it can. It has no side effects.
func (e *Engine) Check(id string, wallet economy.Currency, blocksDestroyed int) error {
	st, ch, ok := e.catalog.Choice(id)
	if !ok {
		return ErrUnknownChoice
	}
	if e.state.HasSelected(id) {
		return ErrAlreadySelected
	}
	if !IsAvailable(st, ch, e.state, blocksDestroyed) {
		return ErrUnavailable
	}
	if !wallet.CanAfford(ch.Cost) {
		return ErrInsufficientFunds
	}
	return nil
}

// Select debits the choice's cost from wallet and applies its effects.
// On any rejection the wallet and state are unchanged and ok is false.
func (e *Engine) Select(id string, wallet *economy.Currency, blocksDestroyed int) (Choice, bool) {
	if err := e.Check(id, *wallet, blocksDestroyed); err != nil {
		e.logger.Debug("choice rejected", zap.String("choice", id), zap.Error(err))
		return Choice{}, false
	}
	_, ch, _ := e.catalog.Choice(id)
	if !wallet.Debit(ch.Cost) {
		return Choice{}, false
	}
	e.state = ApplyChoice(e.state, ch)
	e.logger.Info("choice selected",
		zap.String("choice", id),
		zap.String("alignment", string(e.state.PathAlignment)),
		zap.Int("stage", e.state.CurrentStage),
	)
	return ch, true
}

// Codes returns the numeric codes of the selected choices in selection order.
func (e *Engine) Codes() []int {
	codes := make([]int, 0, len(e.state.SelectedChoices))
	for _, id := range e.state.SelectedChoices {
		if code, ok := e.catalog.Code(id); ok {
			codes = append(codes, code)
		}
	}
	return codes
}
