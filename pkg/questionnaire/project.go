package questionnaire

import "strings"

// Definition holds the storage layout flags of a project.
type Definition struct {
	MultiSubject bool
	MultiContext bool
}

// Multi reports whether responses span the response and context-response
// tables.
func (d Definition) Multi() bool {
	return d.MultiSubject || d.MultiContext
}

// Project is a survey project and its questionnaire.
type Project struct {
	// ID is the project identifier, a GUID that also names the response table.
	ID string
	// RealProjectID identifies the physical project for storage checks.
	// Falls back to ID when empty.
	RealProjectID string
	Definition    Definition
	Questionnaire *Questionnaire
}

// ResponseTable returns the bracket-quoted response table name.
func (p *Project) ResponseTable() string {
	return "[" + strings.TrimSpace(p.ID) + "]"
}

// ContextResponseTable returns the bracket-quoted context-response table name.
func (p *Project) ContextResponseTable() string {
	return "[" + strings.TrimSpace(p.ID) + "ContextResp]"
}

// PhysicalID returns RealProjectID, or ID when it is not set.
func (p *Project) PhysicalID() string {
	if p.RealProjectID != "" {
		return p.RealProjectID
	}
	return p.ID
}

// Mapper resolves the slave question mapped to a master question.
// An empty string means the master question is unmapped in that project.
type Mapper interface {
	PreQID(slaveProjectID, masterQID string) string
}

// Report is a report definition over a master project.
type Report struct {
	ID      string
	Project *Project
	// Mapping is the pre/post question mapping. May be nil when the report
	// is never resolved against a slave project.
	Mapping Mapper
}

// PreQID returns the slave question id mapped to masterQID, or "".
func (r *Report) PreQID(slaveProjectID, masterQID string) string {
	if r.Mapping == nil {
		return ""
	}
	return r.Mapping.PreQID(slaveProjectID, masterQID)
}
