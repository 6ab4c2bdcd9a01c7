// Package questionnaire defines the read-only domain entities the column
// resolver works on.
//
// This package contains:
//   - Question kinds and capability flags (Kind, Question)
//   - Ordered questionnaires with id lookup (Questionnaire)
//   - Projects, their definition flags and physical table names (Project)
//   - Reports and the pre/post question mapping contract (Report, Mapper)
//
// Everything here is plain data. Nothing in this package performs I/O.
package questionnaire
