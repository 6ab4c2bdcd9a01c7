package schema

import (
	"testing"

	"github.com/leapstack-labs/reportcols/pkg/questionnaire"
	"github.com/leapstack-labs/reportcols/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ resolver.SchemaProvider = Populator{}

func TestPopulator_Fields(t *testing.T) {
	tests := []struct {
		name string
		q    *questionnaire.Question
		want []string
	}{
		{
			name: "nil question",
		},
		{
			name: "section",
			q:    &questionnaire.Question{ID: "S1", Kind: questionnaire.KindSection},
		},
		{
			name: "plain",
			q:    &questionnaire.Question{ID: "Q3", Kind: questionnaire.KindPlain},
			want: []string{"Q3Row1"},
		},
		{
			name: "comment box",
			q:    &questionnaire.Question{ID: "Q4", Kind: questionnaire.KindCommentBox},
			want: []string{"Q4Row1"},
		},
		{
			name: "pinned fields are trimmed",
			q:    &questionnaire.Question{ID: "Q5", Kind: questionnaire.KindPlain, Fields: []string{" Q5Row1 ", "Q5Other"}},
			want: []string{"Q5Row1", "Q5Other"},
		},
		{
			name: "rating",
			q:    &questionnaire.Question{ID: "Q7", Kind: questionnaire.KindRating, Rows: []string{"a", "b"}},
			want: []string{"Q7Row1", "Q7Row2"},
		},
		{
			name: "rating with comments and second rating",
			q: &questionnaire.Question{
				ID: "Q7", Kind: questionnaire.KindRatingCustomized,
				Comments: true, SecondRating: true,
				Rows: []string{"a", "b"},
			},
			want: []string{
				"Q7Row1", "Q7Row2",
				"Q7Row1Comment", "Q7Row2Comment",
				"Q7Row1Rating2", "Q7Row2Rating2",
			},
		},
		{
			name: "plain ignores rating segments",
			q:    &questionnaire.Question{ID: "Q8", Kind: questionnaire.KindPlain, Comments: true},
			want: []string{"Q8Row1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Populator{}.Fields(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPopulator_RatingWithoutRows(t *testing.T) {
	_, err := Populator{}.Fields(&questionnaire.Question{ID: "Q9", Kind: questionnaire.KindRating})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRows)
	assert.Contains(t, err.Error(), "Q9")
}

func TestPopulator_DoesNotAliasPinnedFields(t *testing.T) {
	q := &questionnaire.Question{ID: "Q1", Fields: []string{"Q1Row1"}}

	got, err := Populator{}.Fields(q)
	require.NoError(t, err)
	got[0] = "changed"
	assert.Equal(t, "Q1Row1", q.Fields[0])
}
