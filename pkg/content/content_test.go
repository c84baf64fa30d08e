package content_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/socialsphere/guide/pkg/content"
	"github.com/socialsphere/guide/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ReferenceOrder(t *testing.T) {
	table := content.Default()

	assert.Equal(t,
		[]string{"features", "instagram", "scheduling", "analytics", "creator", "help"},
		table.Keys())

	ig, ok := table.Lookup("instagram")
	require.True(t, ok)
	assert.Equal(t, "Instagram", ig.Title)
	assert.Equal(t, "Choose: (Connect | Post Scheduling | Analytics | Engagement)", ig.Clarifying)

	keys := make([]string, 0, len(ig.Answers))
	for _, a := range ig.Answers {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"connect", "post scheduling", "analytics", "engagement"}, keys)

	for _, d := range table.Domains {
		assert.GreaterOrEqual(t, len(d.Answers), 2, d.Key)
		assert.LessOrEqual(t, len(d.Answers), 5, d.Key)
	}
}

func TestParse_PreservesWrittenOrder(t *testing.T) {
	src := `
domains:
  zeta:
    intro: z
    clarifying: pick z
    answers:
      second: "2"
      first: "1"
  alpha:
    intro: a
    clarifying: pick a
    answers:
      only: "x"
`
	table, err := content.Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, table.Keys())
	assert.Equal(t, "second", table.Domains[0].Answers[0].Key)
	assert.Equal(t, "first", table.Domains[0].Answers[1].Key)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"no domains section", "other: 1\n"},
		{"domains not a mapping", "domains: [a, b]\n"},
		{"answer not a string", "domains:\n  a:\n    intro: i\n    clarifying: c\n    answers:\n      k: [1]\n"},
		{"uppercase key", "domains:\n  A:\n    intro: i\n    clarifying: c\n    answers:\n      k: v\n"},
		{"no answers", "domains:\n  a:\n    intro: i\n    clarifying: c\n"},
		{"bad yaml", "domains: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := content.Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}

	_, err := content.Parse([]byte("domains:\n  a:\n    intro: i\n    clarifying: c\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidTable)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, content.DefaultSource(), 0o644))

	table, err := content.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content.Default(), table)

	_, err = content.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
