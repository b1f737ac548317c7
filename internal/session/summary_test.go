package session

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const testAddress = "0x00000000000000000000000000000000000000aB"

func validSummary() Summary {
	return Summary{
		PlayerAddress:   testAddress,
		StartTimestamp:  1_000,
		EndTimestamp:    1_100,
		BlocksDestroyed: 20,
		DecisionsMade:   []int{1, 2},
		FinalSoulTokens: 41,
		TotalClicks:     50,
		Version:         SummaryVersion,
	}
}

func TestSummary_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(validSummary())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"playerAddress", "startTimestamp", "endTimestamp", "blocksDestroyed",
		"decisionsMade", "finalSoulTokens", "totalClicks", "version",
	}, keys)
}

func TestSummary_Hash(t *testing.T) {
	s := validSummary()
	h1, err := s.Hash()
	require.NoError(t, err)
	h2, err := s.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.True(t, strings.HasPrefix(h1, "0x"))
	assert.Len(t, h1, 66)

	s.TotalClicks++
	h3, err := s.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	empty := Summary{}
	withSlice := Summary{DecisionsMade: []int{}}
	he, _ := empty.Hash()
	hs, _ := withSlice.Hash()
	assert.Equal(t, hs, he, "nil and empty decisions encode the same")
}

func TestSummary_Validate(t *testing.T) {
	require.NoError(t, validSummary().Validate())

	cases := map[string]func(*Summary){
		"version":         func(s *Summary) { s.Version = 2 },
		"too short":       func(s *Summary) { s.EndTimestamp = s.StartTimestamp + 5 },
		"too long":        func(s *Summary) { s.EndTimestamp = s.StartTimestamp + 3601 },
		"ends before":     func(s *Summary) { s.EndTimestamp = s.StartTimestamp - 1 },
		"click rate":      func(s *Summary) { s.TotalClicks = 1001; s.BlocksDestroyed = 200 },
		"many decisions":  func(s *Summary) { s.DecisionsMade = make([]int, 26); s.FinalSoulTokens = 0 },
		"decision id":     func(s *Summary) { s.DecisionsMade = []int{51} },
		"too few blocks":  func(s *Summary) { s.BlocksDestroyed = 4; s.FinalSoulTokens = 0 },
		"too many blocks": func(s *Summary) { s.BlocksDestroyed = 101 },
		"too many tokens": func(s *Summary) { s.FinalSoulTokens = 42 },
		"bad address":     func(s *Summary) { s.PlayerAddress = "player1" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := validSummary()
			mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSummary)
		})
	}
}

func TestSummary_TokenBound_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := validSummary()
		s.EndTimestamp = s.StartTimestamp + rapid.Int64Range(MinSessionSeconds, MaxSessionSeconds).Draw(rt, "duration")
		s.FinalSoulTokens = rapid.IntRange(0, 500).Draw(rt, "tokens")
		err := s.Validate()
		if s.FinalSoulTokens > s.MaxTokens() {
			assert.Error(rt, err)
		} else {
			assert.NoError(rt, err)
		}
	})
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(testAddress)
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), addr[19])

	for _, bad := range []string{"", "0x", "00000000000000000000000000000000000000ab", "0x0000000000000000000000000000000000000g00", "0x00"} {
		_, err := ParseAddress(bad)
		assert.Error(t, err, bad)
	}
}
