package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
		err  bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"TEXT", ModeText, false},
		{" json ", ModeJSON, false},
		{"md", ModeMarkdown, false},
		{"table", ModeTable, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.err {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown output mode")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	var out bytes.Buffer

	assert.Equal(t, ModeText, NewRendererWithTTY(&out, &out, true, ModeAuto).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRendererWithTTY(&out, &out, false, ModeAuto).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRendererWithTTY(&out, &out, false, "").EffectiveMode())
	assert.Equal(t, ModeJSON, NewRendererWithTTY(&out, &out, true, ModeJSON).EffectiveMode())
	assert.Equal(t, ModeTable, NewRendererWithTTY(&out, &out, false, ModeTable).EffectiveMode())

	// A buffer is never a terminal.
	assert.False(t, NewRenderer(&out, &out, ModeAuto).IsTTY())
}

func TestRenderer_Markdown(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeMarkdown)

	r.Header(2, "Columns")
	r.KeyValue("Report", "weekly-nps")
	r.Warning("row size unknown")

	assert.Contains(t, out.String(), "## Columns\n\n")
	assert.Contains(t, out.String(), "- **Report:** weekly-nps")
	assert.Equal(t, "warning: row size unknown\n", errOut.String())
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &out, false, ModeMarkdown)

	r.Table([]string{"#", "alias"}, [][]string{{"1", "Q1Row1"}, {"2", "Q2Row1"}})

	s := out.String()
	assert.Contains(t, s, "| 1 | Q1Row1 |")
	assert.Contains(t, s, "| 2 | Q2Row1 |")
	assert.Contains(t, s, "| --- | --- |")
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &out, false, ModeJSON)

	require.NoError(t, r.JSON(map[string]int{"columns": 3}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 3, got["columns"])
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "###### Deep", FormatHeader(9, "Deep"))
	assert.Equal(t, "- **a:** b", FormatKeyValue("a", "b"))
	assert.Equal(t, "```sql\nSELECT 1\n```", FormatCodeBlock("sql", "SELECT 1\n"))
}
