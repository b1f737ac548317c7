package session

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/tomz197/orbitclicker/internal/decision"
)

// SummaryVersion is the only summary format version accepted downstream.
const SummaryVersion = 1

// Limits enforced by the proof circuit that consumes summaries.
const (
	MinSessionSeconds = 10
	MaxSessionSeconds = 3600
	MaxClicksPerSec   = 10
	MaxDecisions      = 25
	DecisionBonus     = 10
	MaxTimeBonus      = 60
)

// ErrInvalidSummary wraps every Validate failure.
var ErrInvalidSummary = errors.New("invalid session summary")

// Summary is the read-only record of a session handed to the proof service.
// Field names and types are a fixed wire contract.
type Summary struct {
	PlayerAddress   string `json:"playerAddress"`
	StartTimestamp  int64  `json:"startTimestamp"`
	EndTimestamp    int64  `json:"endTimestamp"`
	BlocksDestroyed int    `json:"blocksDestroyed"`
	DecisionsMade   []int  `json:"decisionsMade"`
	FinalSoulTokens int    `json:"finalSoulTokens"`
	TotalClicks     int    `json:"totalClicks"`
	Version         int    `json:"version"`
}

// Duration is the session length in whole seconds.
func (s Summary) Duration() int64 { return s.EndTimestamp - s.StartTimestamp }

// MaxTokens is the largest soul balance the circuit accepts for s.
func (s Summary) MaxTokens() int {
	minutes := int(s.Duration() / 60)
	return s.BlocksDestroyed + len(s.DecisionsMade)*DecisionBonus + min(minutes, MaxTimeBonus)
}

// Hash returns the hex Keccak-256 digest of the summary's JSON encoding,
// prefixed with 0x.
func (s Summary) Hash() (string, error) {
	if s.DecisionsMade == nil {
		s.DecisionsMade = []int{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}

// Validate runs the circuit's sanity checks before a proof is requested and
// reports every failed rule.
func (s Summary) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if _, err := ParseAddress(s.PlayerAddress); err != nil {
		errs = append(errs, err)
	}
	if s.Version != SummaryVersion {
		fail("version %d, want %d", s.Version, SummaryVersion)
	}
	d := s.Duration()
	if d < MinSessionSeconds || d > MaxSessionSeconds {
		fail("duration %ds outside [%d, %d]", d, MinSessionSeconds, MaxSessionSeconds)
	}
	if s.TotalClicks < 0 || int64(s.TotalClicks) > max(d, 0)*MaxClicksPerSec {
		fail("%d clicks in %ds exceeds %d per second", s.TotalClicks, d, MaxClicksPerSec)
	}
	if len(s.DecisionsMade) > MaxDecisions {
		fail("%d decisions exceeds %d", len(s.DecisionsMade), MaxDecisions)
	}
	for _, id := range s.DecisionsMade {
		if id < 0 || id > decision.MaxChoiceCode {
			fail("decision id %d outside [0, %d]", id, decision.MaxChoiceCode)
		}
	}
	if s.BlocksDestroyed < s.TotalClicks/10 || s.BlocksDestroyed > s.TotalClicks*2 {
		fail("%d blocks outside [%d, %d] for %d clicks", s.BlocksDestroyed, s.TotalClicks/10, s.TotalClicks*2, s.TotalClicks)
	}
	if s.FinalSoulTokens < 0 || s.FinalSoulTokens > s.MaxTokens() {
		fail("%d soul tokens exceeds %d", s.FinalSoulTokens, s.MaxTokens())
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSummary, errors.Join(errs...))
}

// ParseAddress decodes a 0x-prefixed 20-byte hex account address.
func ParseAddress(addr string) ([20]byte, error) {
	var out [20]byte
	raw, ok := strings.CutPrefix(addr, "0x")
	if !ok {
		raw, ok = strings.CutPrefix(addr, "0X")
	}
	if !ok || len(raw) != 40 {
		return out, fmt.Errorf("address %q: want 0x followed by 40 hex digits", addr)
	}
	if _, err := hex.Decode(out[:], []byte(raw)); err != nil {
		return out, fmt.Errorf("address %q: %w", addr, err)
	}
	return out, nil
}
