package definition

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/reportcols/internal/mapping"
	"github.com/leapstack-labs/reportcols/pkg/questionnaire"
	"github.com/leapstack-labs/reportcols/pkg/resolver"
)

// ErrUnknownProject is returned when a slave project is not defined.
var ErrUnknownProject = errors.New("project is not defined")

// ErrNoUsedQuestions is returned when a used-only resolution is requested
// for a report that lists no used questions.
var ErrNoUsedQuestions = errors.New("report lists no used questions")

// Bundle holds the domain objects built from a definition file.
type Bundle struct {
	Report   *questionnaire.Report
	Projects map[string]*questionnaire.Project
	Mapping  *mapping.Table
	// Used is nil when the report lists no used questions.
	Used map[string]struct{}
}

// Build converts a validated definition into domain objects.
func (f *File) Build() (*Bundle, error) {
	b := &Bundle{
		Projects: make(map[string]*questionnaire.Project, len(f.Projects)),
		Mapping:  mapping.New(),
	}

	for _, ps := range f.Projects {
		b.Projects[ps.ID] = ps.build()
	}

	master, ok := b.Projects[f.Report.Project]
	if !ok {
		return nil, fmt.Errorf("report project %s: %w", f.Report.Project, ErrUnknownProject)
	}

	for _, m := range f.Mappings {
		b.Mapping.Add(mapping.Entry{
			SlaveProjectID:   m.SlaveProject,
			MasterQuestionID: m.MasterQuestion,
			SlaveQuestionID:  m.SlaveQuestion,
		})
	}

	if len(f.Report.UsedQuestions) > 0 {
		b.Used = make(map[string]struct{}, len(f.Report.UsedQuestions))
		for _, id := range f.Report.UsedQuestions {
			b.Used[id] = struct{}{}
		}
	}

	b.Report = &questionnaire.Report{ID: f.Report.ID, Project: master, Mapping: b.Mapping}
	return b, nil
}

func (ps ProjectSpec) build() *questionnaire.Project {
	qn := questionnaire.New()
	for _, qs := range ps.Questions {
		q := &questionnaire.Question{
			ID:            qs.ID,
			Kind:          questionnaire.Kind(qs.Kind),
			Numeric:       qs.Numeric,
			SingleDisplay: qs.SingleDisplay,
			Virtual:       qs.Virtual,
			Comments:      qs.Comments,
			SecondRating:  qs.SecondRating,
			Rows:          qs.Rows,
			Fields:        qs.Fields,
		}
		for _, rm := range qs.RowMappings {
			q.RowMappings = append(q.RowMappings, questionnaire.RowMapping{
				QuestionID: rm.Question,
				Row:        rm.Row,
				ProjectID:  rm.Project,
			})
		}
		qn.Add(q)
	}

	return &questionnaire.Project{
		ID:            ps.ID,
		RealProjectID: ps.RealProjectID,
		Definition: questionnaire.Definition{
			MultiSubject: ps.MultiSubject,
			MultiContext: ps.MultiContext,
		},
		Questionnaire: qn,
	}
}

// Request builds a resolver request. slaveID selects the slave project (""
// for master-only); usedOnly restricts resolution to the used questions.
func (b *Bundle) Request(slaveID string, usedOnly bool) (resolver.Request, error) {
	req := resolver.Request{Report: b.Report}

	if slaveID != "" {
		slave, ok := b.Projects[slaveID]
		if !ok {
			return resolver.Request{}, fmt.Errorf("slave project %s: %w", slaveID, ErrUnknownProject)
		}
		req.Slave = slave
	}

	if usedOnly {
		if b.Used == nil {
			return resolver.Request{}, fmt.Errorf("report %s: %w", b.Report.ID, ErrNoUsedQuestions)
		}
		req.Used = b.Used
	}
	return req, nil
}

// Entries returns the mapping entries of the definition.
func (b *Bundle) Entries() []mapping.Entry {
	return b.Mapping.Entries()
}
