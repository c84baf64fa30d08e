package domain_test

import (
	"testing"

	"github.com/socialsphere/guide/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() domain.Table {
	return domain.Table{Domains: []domain.Domain{
		{
			Key: "instagram", Title: "Instagram", Intro: "intro", Clarifying: "pick",
			Answers: []domain.Answer{
				{Key: "post scheduling", Text: "queue posts"},
				{Key: "scheduling", Text: "generic"},
			},
		},
		{
			Key: "scheduling", Title: "Scheduling", Intro: "intro", Clarifying: "pick",
			Answers: []domain.Answer{{Key: "how to use", Text: "steps"}},
		},
	}}
}

func TestTable_Match_FirstInOrderWins(t *testing.T) {
	table := sampleTable()

	d, ok := table.Match("instagram scheduling tips")
	require.True(t, ok)
	assert.Equal(t, "instagram", d.Key)

	d, ok = table.Match("just scheduling")
	require.True(t, ok)
	assert.Equal(t, "scheduling", d.Key)

	_, ok = table.Match("")
	assert.False(t, ok)
}

func TestDomain_MatchAnswer_FirstInOrderWins(t *testing.T) {
	d, _ := sampleTable().Lookup("instagram")

	a, ok := d.MatchAnswer("post scheduling please")
	require.True(t, ok)
	assert.Equal(t, "post scheduling", a.Key)

	_, ok = d.MatchAnswer("nothing here")
	assert.False(t, ok)
}

func TestTable_KeysAndTitles(t *testing.T) {
	table := sampleTable()
	table.Domains = append(table.Domains, domain.Domain{Key: "untitled"})

	assert.Equal(t, []string{"instagram", "scheduling", "untitled"}, table.Keys())
	assert.Equal(t, []string{"Instagram", "Scheduling", "untitled"}, table.Titles())
}

func TestTable_Validate(t *testing.T) {
	assert.NoError(t, sampleTable().Validate())

	tests := []struct {
		name   string
		mutate func(*domain.Table)
		want   string
	}{
		{"empty", func(tb *domain.Table) { tb.Domains = nil }, "no domains"},
		{"uppercase key", func(tb *domain.Table) { tb.Domains[0].Key = "Instagram" }, "not lowercase"},
		{"padded answer", func(tb *domain.Table) { tb.Domains[1].Answers[0].Key = " how to use" }, "surrounding whitespace"},
		{"duplicate domain", func(tb *domain.Table) { tb.Domains[1].Key = "instagram" }, "duplicate key"},
		{"duplicate answer", func(tb *domain.Table) { tb.Domains[0].Answers[1].Key = "post scheduling" }, "duplicate answer"},
		{"no answers", func(tb *domain.Table) { tb.Domains[1].Answers = nil }, "no answers"},
		{"no intro", func(tb *domain.Table) { tb.Domains[0].Intro = " " }, "empty intro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := sampleTable()
			tt.mutate(&table)
			err := table.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidTable)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
