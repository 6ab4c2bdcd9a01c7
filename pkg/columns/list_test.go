package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resp = "[9c3bae72-8902-45a5-a520-13f4532eb106]"

func TestColumn_String(t *testing.T) {
	tests := []struct {
		name string
		col  Column
		want string
	}{
		{
			name: "direct",
			col:  Direct(resp, "Q3Row1"),
			want: resp + ".Q3Row1",
		},
		{
			name: "direct trims names",
			col:  Direct(resp, " Q3Row1 "),
			want: resp + ".Q3Row1",
		},
		{
			name: "renamed",
			col:  Renamed("[6ca3871a-2411-4c31-923a-9184ec1d1892]", "Q5Row1", "Q3Row1"),
			want: "[6ca3871a-2411-4c31-923a-9184ec1d1892].Q5Row1 AS Q3Row1",
		},
		{
			name: "renamed keeps AS when names match",
			col:  Renamed(resp, "Q1Row1", "Q1Row1"),
			want: resp + ".Q1Row1 AS Q1Row1",
		},
		{
			name: "placeholder",
			col:  Placeholder("NTEXT", "Q4Row1"),
			want: "CAST (NULL AS NTEXT) AS Q4Row1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.col.String())
		})
	}
}

func TestList_String(t *testing.T) {
	var l List
	assert.Equal(t, "", l.String(), "empty list renders empty")

	l.AppendDirect(resp, "Q3Row1")
	assert.Equal(t, resp+".Q3Row1", l.String(), "single entry has no comma")

	l.AppendPlaceholder("FLOAT", "Q4Row1")
	l.AppendRenamed(resp, "Q9Row1", "Q5Row1")
	assert.Equal(t,
		resp+".Q3Row1,CAST (NULL AS FLOAT) AS Q4Row1,"+resp+".Q9Row1 AS Q5Row1",
		l.String())
	assert.Equal(t, []string{"Q3Row1", "Q4Row1", "Q5Row1"}, l.Aliases())
	assert.Equal(t, 3, l.Len())
}

func TestList_Finalize(t *testing.T) {
	tests := []struct {
		name        string
		build       func(l *List)
		wantPatched int
		want        string
	}{
		{
			name: "replaces earlier placeholder",
			build: func(l *List) {
				l.AppendPlaceholder("FLOAT", "Q7Row1")
				l.AppendDirect(resp, "Q8Row1")
				l.Defer("Q7Row1", Renamed(resp, "Q2Row1", "Q7Row1"))
			},
			wantPatched: 1,
			want:        resp + ".Q2Row1 AS Q7Row1," + resp + ".Q8Row1",
		},
		{
			name: "ignores placeholders appended after the pending",
			build: func(l *List) {
				l.Defer("Q7Row1", Renamed(resp, "Q2Row1", "Q7Row1"))
				l.AppendPlaceholder("FLOAT", "Q7Row1")
			},
			wantPatched: 0,
			want:        "CAST (NULL AS FLOAT) AS Q7Row1",
		},
		{
			name: "ignores non-placeholder with same alias",
			build: func(l *List) {
				l.AppendRenamed(resp, "Q1Row1", "Q7Row1")
				l.Defer("Q7Row1", Renamed(resp, "Q2Row1", "Q7Row1"))
			},
			wantPatched: 0,
			want:        resp + ".Q1Row1 AS Q7Row1",
		},
		{
			name: "drops pending without a match",
			build: func(l *List) {
				l.AppendDirect(resp, "Q1Row1")
				l.Defer("Q7Row1", Renamed(resp, "Q2Row1", "Q7Row1"))
			},
			wantPatched: 0,
			want:        resp + ".Q1Row1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l List
			tt.build(&l)
			assert.Equal(t, tt.wantPatched, l.Finalize())
			assert.Equal(t, tt.want, l.String())
			assert.Empty(t, l.pending, "finalize clears pending entries")
			assert.Equal(t, 0, l.Finalize(), "second finalize is a no-op")
		})
	}
}

func TestList_ColumnsIsCopy(t *testing.T) {
	var l List
	l.AppendPlaceholder("FLOAT", "Q1Row1")

	cols := l.Columns()
	require.Len(t, cols, 1)
	cols[0] = Direct(resp, "Other")

	again := l.Columns()
	assert.True(t, again[0].IsPlaceholder())
	assert.Equal(t, "Q1Row1", again[0].Alias)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "direct", KindDirect.String())
	assert.Equal(t, "renamed", KindRenamed.String())
	assert.Equal(t, "placeholder", KindPlaceholder.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
