package progression_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/orbitclicker/internal/progression"
)

func TestDefaultCatalog(t *testing.T) {
	c := progression.Default()
	assert.Equal(t, 19, c.Len())

	s, ok := c.Skill("blockchain-destroyer")
	require.True(t, ok)
	assert.True(t, s.Goal)
	assert.Equal(t, 2, s.Cost.Gods)
	assert.ElementsMatch(t, []string{"quantum-cracker", "zero-day-arsenal"}, s.Prerequisites)

	e, err := progression.NewEngine(c, nil)
	require.NoError(t, err)
	defer e.Close()
	for _, sk := range c.Skills() {
		want := progression.Available
		if len(sk.Prerequisites) > 0 {
			want = progression.Locked
		}
		assert.Equal(t, want, e.Status(sk.ID), sk.ID)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"unknown field": "skills:\n  - id: a\n    colour: red\n",
		"duplicate":     "skills:\n  - id: a\n  - id: a\n",
		"missing prereq": "skills:\n  - id: a\n    prerequisites: [b]\n",
		"negative cost": "skills:\n  - id: a\n    cost: {soul: -1}\n",
		"cycle":          "skills:\n  - id: a\n    prerequisites: [b]\n  - id: b\n    prerequisites: [a]\n",
		"empty id":       "skills:\n  - name: nameless\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := progression.Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_Valid(t *testing.T) {
	c, err := progression.Load(strings.NewReader(`
skills:
  - id: a
    cost: {soul: 5}
  - id: b
    prerequisites: [a]
    cost: {soul: 1, gods: 1}
`))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	b, _ := c.Skill("b")
	assert.Equal(t, 1, b.Cost.Gods)
}
