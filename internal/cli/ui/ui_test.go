package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "COLLECTION", "DOCUMENTS")
	table.AddRow("people", "2")
	table.AddRow("pets")
	table.AddRow("a-much-longer-name", "10", "ignored")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "COLLECTION          DOCUMENTS", lines[0])
	assert.Equal(t, strings.Repeat("─", 18)+"  "+strings.Repeat("─", 9), lines[1])
	assert.Equal(t, "people              2", lines[2])
	assert.Equal(t, "pets", lines[3])
	assert.Equal(t, "a-much-longer-name  10", lines[4])
	assert.Equal(t, 3, table.Len())
}

func TestTableWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true)
	table.AddRow("x")
	table.Render()

	assert.Empty(t, buf.String())
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"people", "people", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"pepole", "people", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
			assert.Equal(t, tt.want, Distance(tt.b, tt.a))
		})
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"people", "pets", "persons", "orders"}

	assert.Equal(t, []string{"people", "pets"}, Suggest("peple", candidates, 3))
	assert.Equal(t, []string{"pets"}, Suggest("PETS", candidates, 3))
	assert.Equal(t, []string{"pets", "persons"}, Suggest("perso", candidates, 3))
	assert.Equal(t, []string{"pets"}, Suggest("perso", candidates, 1))
	assert.Empty(t, Suggest("invoices", candidates, 3))
	assert.Empty(t, Suggest("people", nil, 3))
}
