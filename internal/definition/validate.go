package definition

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/leapstack-labs/reportcols/pkg/questionnaire"
)

// ValidationError lists every problem found in a definition.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	prefix := "invalid definition"
	if e.Path != "" {
		prefix = e.Path + ": " + prefix
	}
	return prefix + ":\n  - " + strings.Join(e.Problems, "\n  - ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("guid", func(fl validator.FieldLevel) bool {
			// Only the canonical xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx form.
			s := fl.Field().String()
			if len(s) != 36 {
				return false
			}
			_, err := uuid.Parse(s)
			return err == nil
		})
		_ = validate.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
			return questionnaire.Kind(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Validate checks field constraints and cross references: the report
// project and every mapped slave project must be defined, and project and
// question ids must be unique.
func (f *File) Validate() error {
	var problems []string

	if err := structValidator().Struct(f); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return fmt.Errorf("failed to validate definition: %w", err)
		}
		for _, fe := range ves {
			problems = append(problems, describe(fe))
		}
	}

	projects := make(map[string]*ProjectSpec, len(f.Projects))
	for i := range f.Projects {
		p := &f.Projects[i]
		if _, dup := projects[p.ID]; dup {
			problems = append(problems, fmt.Sprintf("project %s is defined more than once", p.ID))
			continue
		}
		projects[p.ID] = p

		seen := make(map[string]bool, len(p.Questions))
		for _, q := range p.Questions {
			if q.ID == "" {
				continue
			}
			if seen[q.ID] {
				problems = append(problems, fmt.Sprintf("question %s is defined more than once in project %s", q.ID, p.ID))
			}
			seen[q.ID] = true
		}
	}

	if f.Report.Project != "" {
		if master, ok := projects[f.Report.Project]; !ok {
			problems = append(problems, fmt.Sprintf("report project %s is not defined", f.Report.Project))
		} else {
			for _, id := range f.Report.UsedQuestions {
				if !master.hasQuestion(id) {
					problems = append(problems, fmt.Sprintf("used question %s is not in project %s", id, master.ID))
				}
			}
		}
	}

	for _, m := range f.Mappings {
		if m.SlaveProject == "" {
			continue
		}
		if m.SlaveProject == f.Report.Project {
			problems = append(problems, fmt.Sprintf("mapping %s maps the report project onto itself", m.MasterQuestion))
		} else if _, ok := projects[m.SlaveProject]; !ok {
			problems = append(problems, fmt.Sprintf("mapping slave project %s is not defined", m.SlaveProject))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Path: f.Path, Problems: problems}
	}
	return nil
}

func (p *ProjectSpec) hasQuestion(id string) bool {
	for _, q := range p.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "File.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "guid":
		return fmt.Sprintf("%s %q is not a GUID", field, fe.Value())
	case "kind":
		return fmt.Sprintf("%s %q is not a known question kind", field, fe.Value())
	default:
		return fmt.Sprintf("%s fails %s", field, fe.Tag())
	}
}
