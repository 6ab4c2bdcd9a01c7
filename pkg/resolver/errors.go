package resolver

import (
	"errors"
	"fmt"
)

// ErrNoProject is returned when a report carries no master project or the
// project has no questionnaire.
var ErrNoProject = errors.New("report has no project questionnaire")

// MalformedError reports input that cannot be resolved, such as a rating
// question without matrix rows.
type MalformedError struct {
	Project  string
	Question string
	Reason   string
}

func (e *MalformedError) Error() string {
	if e.Project != "" {
		return fmt.Sprintf("question %s in project %s: %s", e.Question, e.Project, e.Reason)
	}
	return fmt.Sprintf("question %s: %s", e.Question, e.Reason)
}
