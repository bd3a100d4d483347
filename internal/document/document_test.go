// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
settings:
  maxDepth: 10
collections:
  - id: core
    variables:
      kingdom: Eldoria
      ruler: Queen Mab
    shared:
      patron: "{{noble}}"
    tables:
      - id: color
        entries:
          - text: red
          - text: blue
            weight: 3
      - id: noble
        entries:
          - id: hamm
            text: Lord Hamm
            description: A minor noble.
    templates:
      - id: intro
        pattern: "Welcome to {{$kingdom}}"
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 10, doc.MaxDepth())
	assert.Equal(t, DefaultMaxExplodingDice, doc.MaxExplodingDice())
	assert.Equal(t, OverflowStop, doc.UniqueOverflow())

	core := doc.Collection("core")
	require.NotNil(t, core)
	assert.Nil(t, doc.Collection("nope"))

	// Mapping-form variables keep declaration order.
	require.Len(t, core.Variables, 2)
	assert.Equal(t, "kingdom", core.Variables[0].Name)
	assert.Equal(t, "Eldoria", core.Variables[0].Value)
	assert.Equal(t, "ruler", core.Variables[1].Name)

	color := core.TableByID("color")
	require.NotNil(t, color)
	require.Len(t, color.Entries, 2)
	// Entry ids default to table:index.
	assert.Equal(t, "color:0", color.Entries[0].ID)
	assert.Equal(t, 1, color.Entries[0].EffectiveWeight())
	assert.Equal(t, 3, color.Entries[1].EffectiveWeight())

	noble := core.TableByID("noble")
	require.NotNil(t, noble)
	assert.Equal(t, "hamm", noble.Entries[0].ID)

	require.NotNil(t, core.TemplateByID("intro"))
}

func TestVarListSequenceForm(t *testing.T) {
	doc, err := Parse([]byte(`
collections:
  - id: c
    variables:
      - name: first
        value: one
      - name: second
        value: two
`))
	require.NoError(t, err)
	vars := doc.Collection("c").Variables
	require.Len(t, vars, 2)
	assert.Equal(t, VarDef{Name: "first", Value: "one"}, vars[0])
	assert.Equal(t, VarDef{Name: "second", Value: "two"}, vars[1])
}

func TestValidate(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	assert.NoError(t, Validate(doc))
}

func TestValidateProblems(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "duplicate table id",
			yaml: `
collections:
  - id: c
    tables:
      - id: dup
        entries: [{text: a}]
      - id: dup
        entries: [{text: b}]
`,
			want: "duplicate id",
		},
		{
			name: "empty table",
			yaml: `
collections:
  - id: c
    tables:
      - id: hollow
`,
			want: "no entries",
		},
		{
			name: "dangling extends",
			yaml: `
collections:
  - id: c
    tables:
      - id: child
        extends: ghost
        entries: [{text: a}]
`,
			want: "ghost",
		},
		{
			name: "extends cycle",
			yaml: `
collections:
  - id: c
    tables:
      - id: a
        extends: b
        entries: [{text: a}]
      - id: b
        extends: a
        entries: [{text: b}]
`,
			want: "cycle",
		},
		{
			name: "negative weight",
			yaml: `
collections:
  - id: c
    tables:
      - id: t
        entries:
          - text: a
            weight: -2
`,
			want: "weight",
		},
		{
			name: "unknown import",
			yaml: `
collections:
  - id: c
    imports:
      - collection: missing
        alias: m
    tables:
      - id: t
        entries: [{text: a}]
`,
			want: "missing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
