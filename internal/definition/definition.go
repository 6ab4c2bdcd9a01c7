// Package definition loads report definition files.
//
// A definition file is a YAML document describing one report, the projects
// it may be resolved against, and the pre/post question mapping between
// them:
//
//	report:
//	  id: weekly-nps
//	  project: 3fd631d8-0b5a-4d75-be1a-5b500cc1c90c
//	  used_questions: [Q1, Q5]
//	projects:
//	  - id: 3fd631d8-0b5a-4d75-be1a-5b500cc1c90c
//	    multi_subject: true
//	    questions:
//	      - {id: Q5, kind: plain, single_display: true}
//	      - {id: Q1, kind: plain}
//	mappings:
//	  - {slave_project: 0ab7516e-f492-4bc6-9bf4-56fb106e1ab8, master_question: Q5, slave_question: Q1}
package definition

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is a parsed definition file.
type File struct {
	Report   ReportSpec    `yaml:"report" validate:"required"`
	Projects []ProjectSpec `yaml:"projects" validate:"required,min=1,dive"`
	Mappings []MappingSpec `yaml:"mappings" validate:"dive"`

	// Path is the file the definition was loaded from, if any.
	Path string `yaml:"-"`
}

// ReportSpec describes the report.
type ReportSpec struct {
	ID            string   `yaml:"id" validate:"required"`
	Project       string   `yaml:"project" validate:"required,guid"`
	UsedQuestions []string `yaml:"used_questions" validate:"dive,required"`
}

// ProjectSpec describes a project and its questionnaire.
type ProjectSpec struct {
	ID            string         `yaml:"id" validate:"required,guid"`
	RealProjectID string         `yaml:"real_project_id" validate:"omitempty,guid"`
	MultiSubject  bool           `yaml:"multi_subject"`
	MultiContext  bool           `yaml:"multi_context"`
	Questions     []QuestionSpec `yaml:"questions" validate:"dive"`
}

// QuestionSpec describes a question.
type QuestionSpec struct {
	ID            string           `yaml:"id" validate:"required"`
	Kind          string           `yaml:"kind" validate:"required,kind"`
	Numeric       bool             `yaml:"numeric"`
	SingleDisplay bool             `yaml:"single_display"`
	Virtual       bool             `yaml:"virtual"`
	Comments      bool             `yaml:"comments"`
	SecondRating  bool             `yaml:"second_rating"`
	Rows          []string         `yaml:"rows" validate:"dive,required"`
	Fields        []string         `yaml:"fields" validate:"dive,required"`
	RowMappings   []RowMappingSpec `yaml:"row_mappings"`
}

// RowMappingSpec points a virtual question row at a real question row.
// Incomplete descriptors are accepted and resolve to placeholders.
type RowMappingSpec struct {
	Question string `yaml:"question"`
	Row      string `yaml:"row"`
	Project  string `yaml:"project"`
}

// MappingSpec maps a master question to a slave question.
type MappingSpec struct {
	SlaveProject   string `yaml:"slave_project" validate:"required,guid"`
	MasterQuestion string `yaml:"master_question" validate:"required"`
	SlaveQuestion  string `yaml:"slave_question" validate:"required"`
}

// ParseError reports a definition that is not valid YAML for File.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: invalid definition: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid definition: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads, parses and validates the definition file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to open definition: %w", err)
	}
	defer func() { _ = f.Close() }()

	def, err := decode(f, path)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Decode parses and validates a definition from r.
func Decode(r io.Reader) (*File, error) {
	def, err := decode(r, "")
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func decode(r io.Reader, path string) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def File
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	def.Path = path
	return &def, nil
}

// Project returns the project spec with the given id.
func (f *File) Project(id string) (*ProjectSpec, bool) {
	for i := range f.Projects {
		if f.Projects[i].ID == id {
			return &f.Projects[i], true
		}
	}
	return nil, false
}
