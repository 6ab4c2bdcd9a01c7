package questionnaire

import "strings"

// Kind is the closed set of question types the resolver distinguishes.
type Kind string

// Question kinds.
const (
	KindSection               Kind = "section"
	KindPlain                 Kind = "plain"
	KindRating                Kind = "rating"
	KindRatingCustomized      Kind = "rating_customized"
	KindCommentBox            Kind = "comment_box"
	KindCommentBoxCustomized  Kind = "comment_box_customized"
	KindCommentBoxCentralized Kind = "comment_box_centralized"
)

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindSection,
		KindPlain,
		KindRating,
		KindRatingCustomized,
		KindCommentBox,
		KindCommentBoxCustomized,
		KindCommentBoxCentralized,
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// RowMapping tells where a virtual question's row gets its value from.
type RowMapping struct {
	// QuestionID is the real question supplying the value.
	QuestionID string
	// Row identifies the matrix row inside that question.
	Row string
	// ProjectID is the project owning QuestionID.
	ProjectID string
}

// Complete reports whether all three parts of the descriptor are present.
func (m RowMapping) Complete() bool {
	return m.QuestionID != "" && m.Row != "" && m.ProjectID != ""
}

// Question is a single questionnaire entry.
type Question struct {
	// ID is the stable question identifier (e.g. "Q3").
	ID string
	// Kind is the question type.
	Kind Kind

	// Numeric marks rating questions whose values are stored as numbers.
	Numeric bool
	// SingleDisplay questions keep one value per context, stored in the
	// context-response table.
	SingleDisplay bool
	// Virtual questions have no storage of their own.
	Virtual bool
	// Comments adds one comment column per matrix row (rating kinds).
	Comments bool
	// SecondRating adds a second rating column per matrix row (rating kinds).
	SecondRating bool

	// Rows are the matrix rows of a rating question, in display order.
	Rows []string
	// Fields optionally pins the physical field names. When empty the
	// schema provider derives them.
	Fields []string
	// RowMappings holds one descriptor per row for virtual questions.
	RowMappings []RowMapping
}

// IsSection reports whether q is a pure section divider without columns.
func (q *Question) IsSection() bool { return q.Kind == KindSection }

// IsRating reports whether q is a standard or customized rating question.
func (q *Question) IsRating() bool {
	return q.Kind == KindRating || q.Kind == KindRatingCustomized
}

// IsCommentType reports whether q is one of the comment box kinds.
func (q *Question) IsCommentType() bool {
	switch q.Kind {
	case KindCommentBox, KindCommentBoxCustomized, KindCommentBoxCentralized:
		return true
	}
	return false
}

// HasComments reports whether q is a rating question with per-row comments.
func (q *Question) HasComments() bool { return q.IsRating() && q.Comments }

// HasSecondRating reports whether q is a rating question with a second rating.
func (q *Question) HasSecondRating() bool { return q.IsRating() && q.SecondRating }

// IsNumeric reports whether q stores numeric values.
func (q *Question) IsNumeric() bool { return q.Numeric }

// IsSingleDisplay reports whether q is read from the context-response table.
func (q *Question) IsSingleDisplay() bool { return q.SingleDisplay }

// IsVirtual reports whether q is a virtual question.
func (q *Question) IsVirtual() bool { return q.Virtual }

// Segments returns the number of contiguous per-row column segments of a
// rating question: base values, then comments, then the second rating.
func (q *Question) Segments() int {
	if !q.IsRating() {
		return 0
	}
	n := 1
	if q.Comments {
		n++
	}
	if q.SecondRating {
		n++
	}
	return n
}

// RowMapping returns the mapping descriptor for the row at index i.
func (q *Question) RowMapping(i int) (RowMapping, bool) {
	if i < 0 || i >= len(q.RowMappings) {
		return RowMapping{}, false
	}
	return q.RowMappings[i], true
}

// IsCommentColumn reports whether a placeholder for the named column of q
// must use the text type.
func (q *Question) IsCommentColumn(column string) bool {
	return q.IsCommentType() || strings.Contains(column, "Comment")
}
