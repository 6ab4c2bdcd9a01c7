package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindValid(t *testing.T) {
	for _, k := range Kinds() {
		assert.True(t, k.Valid(), "kind %q", k)
	}
	assert.False(t, Kind("matrix").Valid())
	assert.False(t, Kind("").Valid())
}

func TestQuestionPredicates(t *testing.T) {
	tests := []struct {
		name        string
		q           Question
		rating      bool
		commentType bool
		comments    bool
		second      bool
		segments    int
	}{
		{name: "section", q: Question{Kind: KindSection}},
		{name: "plain ignores rating flags", q: Question{Kind: KindPlain, Comments: true, SecondRating: true}},
		{name: "rating", q: Question{Kind: KindRating}, rating: true, segments: 1},
		{
			name:     "customized rating with comments and second rating",
			q:        Question{Kind: KindRatingCustomized, Comments: true, SecondRating: true},
			rating:   true,
			comments: true,
			second:   true,
			segments: 3,
		},
		{name: "comment box", q: Question{Kind: KindCommentBox}, commentType: true},
		{name: "centralized comment box", q: Question{Kind: KindCommentBoxCentralized}, commentType: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rating, tt.q.IsRating())
			assert.Equal(t, tt.commentType, tt.q.IsCommentType())
			assert.Equal(t, tt.comments, tt.q.HasComments())
			assert.Equal(t, tt.second, tt.q.HasSecondRating())
			assert.Equal(t, tt.segments, tt.q.Segments())
		})
	}
}

func TestIsCommentColumn(t *testing.T) {
	rating := &Question{Kind: KindRating}
	assert.True(t, rating.IsCommentColumn("Q1Row2Comment"))
	assert.False(t, rating.IsCommentColumn("Q1Row2"))

	box := &Question{Kind: KindCommentBoxCustomized}
	assert.True(t, box.IsCommentColumn("Q2Row1"))
}

func TestRowMapping(t *testing.T) {
	q := &Question{RowMappings: []RowMapping{{QuestionID: "Q1", Row: "r1", ProjectID: "p"}, {QuestionID: "Q1"}}}

	rm, ok := q.RowMapping(0)
	assert.True(t, ok)
	assert.True(t, rm.Complete())

	rm, ok = q.RowMapping(1)
	assert.True(t, ok)
	assert.False(t, rm.Complete())

	_, ok = q.RowMapping(2)
	assert.False(t, ok)
	_, ok = q.RowMapping(-1)
	assert.False(t, ok)
}

func TestQuestionnaire(t *testing.T) {
	qn := New(&Question{ID: "Q1"}, nil, &Question{ID: "Q2"})

	assert.Equal(t, 2, qn.Len())
	assert.Equal(t, "Q2", qn.Get("Q2").ID)
	assert.Nil(t, qn.Get("Q3"))

	ids := make([]string, 0, qn.Len())
	for _, q := range qn.Questions() {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"Q1", "Q2"}, ids)

	var empty *Questionnaire
	assert.Nil(t, empty.Get("Q1"))
	assert.Nil(t, empty.Questions())
	assert.Zero(t, empty.Len())
}

func TestProjectTables(t *testing.T) {
	p := &Project{ID: " 9c3bae72-8902-45a5-a520-13f4532eb106 "}

	assert.Equal(t, "[9c3bae72-8902-45a5-a520-13f4532eb106]", p.ResponseTable())
	assert.Equal(t, "[9c3bae72-8902-45a5-a520-13f4532eb106ContextResp]", p.ContextResponseTable())
	assert.Equal(t, p.ID, p.PhysicalID())

	p.RealProjectID = "physical"
	assert.Equal(t, "physical", p.PhysicalID())
}

func TestDefinitionMulti(t *testing.T) {
	assert.False(t, Definition{}.Multi())
	assert.True(t, Definition{MultiSubject: true}.Multi())
	assert.True(t, Definition{MultiContext: true}.Multi())
}

type mapperFunc func(string, string) string

func (f mapperFunc) PreQID(s, m string) string { return f(s, m) }

func TestReportPreQID(t *testing.T) {
	r := &Report{}
	assert.Empty(t, r.PreQID("s", "Q1"))

	r.Mapping = mapperFunc(func(s, m string) string { return s + "/" + m })
	assert.Equal(t, "s/Q1", r.PreQID("s", "Q1"))
}
