// Package schema derives the physical field names of questionnaire questions.
//
// Field names follow the response-table layout: "<id>Row<n>" for every
// stored value, with rating questions laid out segment by segment (base
// values, then "<id>Row<n>Comment", then "<id>Row<n>Rating2"). Questions that
// pin their fields explicitly are returned as pinned.
package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/reportcols/pkg/questionnaire"
)

// Column name suffixes of the rating segments.
const (
	CommentSuffix      = "Comment"
	SecondRatingSuffix = "Rating2"
)

// ErrNoRows is returned when the fields of a rating question without matrix
// rows must be derived.
var ErrNoRows = errors.New("rating question has no matrix rows")

// Populator is the default resolver.SchemaProvider.
// The zero value is ready to use and safe for concurrent use.
type Populator struct{}

// Fields returns the ordered physical field names of q.
func (Populator) Fields(q *questionnaire.Question) ([]string, error) {
	if q == nil {
		return nil, nil
	}
	if len(q.Fields) > 0 {
		out := make([]string, len(q.Fields))
		for i, f := range q.Fields {
			out[i] = strings.TrimSpace(f)
		}
		return out, nil
	}

	switch {
	case q.IsSection():
		return nil, nil
	case q.IsRating():
		if len(q.Rows) == 0 {
			return nil, fmt.Errorf("question %s: %w", q.ID, ErrNoRows)
		}
		return ratingFields(q), nil
	default:
		return []string{rowField(q.ID, 1)}, nil
	}
}

func ratingFields(q *questionnaire.Question) []string {
	rows := len(q.Rows)
	out := make([]string, 0, rows*q.Segments())

	for i := 1; i <= rows; i++ {
		out = append(out, rowField(q.ID, i))
	}
	if q.HasComments() {
		for i := 1; i <= rows; i++ {
			out = append(out, rowField(q.ID, i)+CommentSuffix)
		}
	}
	if q.HasSecondRating() {
		for i := 1; i <= rows; i++ {
			out = append(out, rowField(q.ID, i)+SecondRatingSuffix)
		}
	}
	return out
}

func rowField(id string, row int) string {
	return strings.TrimSpace(id) + "Row" + strconv.Itoa(row)
}
