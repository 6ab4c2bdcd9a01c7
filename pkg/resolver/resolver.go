// Package resolver computes the response-column contract of a report: the
// primary select list, the combined select list used when responses span the
// response and context-response tables, and the alias list.
//
// The resolver walks the master questionnaire in definition order. For each
// question it looks up the mapped slave question (when a slave project is
// given), builds a master-to-slave column index map, and emits one column per
// master field into each applicable list. Columns with no slave source become
// typed NULL placeholders. Virtual questions never add columns; they replace
// placeholders emitted earlier under the same name. Eleven administrative
// columns close the primary list.
//
// Resolve performs no I/O apart from the optional row-size guard, which is
// queried at most once per call. A Resolver holds no per-call state and is
// safe for concurrent use.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/reportcols/pkg/columns"
	"github.com/leapstack-labs/reportcols/pkg/questionnaire"
)

// Placeholder types.
const (
	DefaultTextType   = "NTEXT"
	DefaultNarrowType = "SMALLINT"
	FloatType         = "FLOAT"
)

var administrativeColumns = []string{
	"UserPrincipal",
	"SubjectID",
	"ConditionID",
	"SourceID",
	"FilledBy",
	"Saved",
	"FilloutDate",
	"InvitationDate",
	"Submitted",
	"TaskID",
	"AutoKey",
}

// SchemaProvider returns the ordered physical field names of a question.
// Implementations must not mutate the question.
type SchemaProvider interface {
	Fields(q *questionnaire.Question) ([]string, error)
}

// RowSizeGuard reports whether the response row of a physical project stays
// within the storage budget of its table.
type RowSizeGuard interface {
	RowSizeSafe(ctx context.Context, realProjectID string) (bool, error)
}

// Options configures a Resolver.
type Options struct {
	// TextType is the placeholder type for comment columns. Defaults to NTEXT.
	TextType string
	// NarrowType replaces FLOAT for non-numeric rating placeholders when the
	// row-size guard reports an unsafe row. Defaults to SMALLINT.
	NarrowType string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Resolver computes column lists for reports.
type Resolver struct {
	schema     SchemaProvider
	guard      RowSizeGuard
	textType   string
	narrowType string
	logger     *slog.Logger
}

// New creates a Resolver. guard may be nil, in which case every row is
// treated as safe.
func New(schema SchemaProvider, guard RowSizeGuard, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	textType := opts.TextType
	if textType == "" {
		textType = DefaultTextType
	}
	narrowType := opts.NarrowType
	if narrowType == "" {
		narrowType = DefaultNarrowType
	}
	return &Resolver{
		schema:     schema,
		guard:      guard,
		textType:   textType,
		narrowType: narrowType,
		logger:     logger,
	}
}

// Request is the input of a single resolution.
type Request struct {
	Report *questionnaire.Report
	// Slave is the project whose responses replace the master's. Optional.
	Slave *questionnaire.Project
	// Used restricts resolution to these question ids. Nil means every question.
	Used map[string]struct{}
}

// Result holds the three column lists.
type Result struct {
	// Cols is the primary select list.
	Cols string
	// CombCols is the combined select list. Empty unless the master project
	// is multi-subject or multi-context.
	CombCols string
	// ColAlias lists the output names of Cols.
	ColAlias string

	// Primary and Combined are the structured forms of Cols and CombCols.
	Primary  []columns.Column
	Combined []columns.Column
	// Unmapped lists, in emission order, the columns that received a
	// placeholder in either list.
	Unmapped []string
	// RowSizeSafe is the guard's answer, true when it was not consulted.
	RowSizeSafe bool
}

// Aliases returns ColAlias split into names.
func (r *Result) Aliases() []string {
	if r.ColAlias == "" {
		return nil
	}
	return strings.Split(r.ColAlias, ",")
}

// Resolve computes the column lists for req.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	if req.Report == nil || req.Report.Project == nil || req.Report.Project.Questionnaire == nil {
		return nil, ErrNoProject
	}
	if req.Slave != nil && req.Slave.Questionnaire == nil {
		return nil, fmt.Errorf("slave project %s: %w", req.Slave.ID, ErrNoProject)
	}

	master := req.Report.Project
	current := master
	if req.Slave != nil {
		current = req.Slave
	}

	rs := &resolution{
		r:         r,
		report:    req.Report,
		master:    master,
		slave:     req.Slave,
		used:      req.Used,
		multi:     master.Definition.Multi(),
		rowSafe:   true,
		respTable: current.ResponseTable(),
		ctxTable:  current.ContextResponseTable(),
		unmapped:  make(map[string]struct{}),
		seen:      make(map[string]string),
	}
	for _, name := range administrativeColumns {
		rs.seen[name] = ""
	}

	if rs.multi && r.guard != nil {
		safe, err := r.guard.RowSizeSafe(ctx, current.PhysicalID())
		if err != nil {
			return nil, fmt.Errorf("row size check for project %s: %w", current.PhysicalID(), err)
		}
		rs.rowSafe = safe
	}

	r.logger.Debug("resolving response columns",
		"report", req.Report.ID,
		"master", master.ID,
		"slave", slaveID(req.Slave),
		"multi", rs.multi,
		"row_size_safe", rs.rowSafe,
	)

	for _, q := range master.Questionnaire.Questions() {
		if err := rs.question(q); err != nil {
			return nil, err
		}
	}

	return rs.finish(), nil
}

func slaveID(p *questionnaire.Project) string {
	if p == nil {
		return ""
	}
	return p.ID
}

// resolution carries the accumulators of one Resolve call.
type resolution struct {
	r      *Resolver
	report *questionnaire.Report
	master *questionnaire.Project
	slave  *questionnaire.Project
	used   map[string]struct{}

	multi     bool
	rowSafe   bool
	respTable string
	ctxTable  string

	primary  columns.List
	combined columns.List

	unmapped      map[string]struct{}
	unmappedOrder []string
	// seen maps every alias of the primary list to the question owning it.
	seen map[string]string
}

func (rs *resolution) question(q *questionnaire.Question) error {
	if rs.used != nil {
		if _, ok := rs.used[q.ID]; !ok {
			return nil
		}
	}
	if q.IsSection() {
		return nil
	}
	if q.IsVirtual() && rs.slave == nil {
		return nil
	}
	if q.IsRating() && len(q.Rows) == 0 {
		return &MalformedError{Project: rs.master.ID, Question: q.ID, Reason: "rating question has no matrix rows"}
	}

	var mapped *questionnaire.Question
	var slaveFields []string
	if rs.slave != nil {
		if mappedID := rs.report.PreQID(rs.slave.ID, q.ID); mappedID != "" {
			mapped = rs.slave.Questionnaire.Get(mappedID)
			if mapped == nil {
				rs.r.logger.Debug("mapped question not in slave questionnaire",
					"question", q.ID, "mapped", mappedID, "slave", rs.slave.ID)
			}
		}
		if mapped != nil {
			var err error
			slaveFields, err = rs.r.schema.Fields(mapped)
			if err != nil {
				return fmt.Errorf("fields of slave question %s: %w", mapped.ID, err)
			}
		}
	}

	fields, err := rs.r.schema.Fields(q)
	if err != nil {
		return fmt.Errorf("fields of question %s: %w", q.ID, err)
	}

	idx, err := BuildIndexMap(q, mapped, len(fields), len(slaveFields), rs.slave != nil)
	if err != nil {
		var me *MalformedError
		if errors.As(err, &me) && me.Project == "" {
			me.Project = rs.slave.ID
		}
		return err
	}
	if mapped != nil {
		rs.r.logger.Debug("aligned question",
			"question", q.ID, "mapped", mapped.ID, "columns", len(fields), "aligned", idx.Mapped())
	}

	for n, raw := range fields {
		col := strings.TrimSpace(raw)
		m := idx[n]

		if q.IsVirtual() {
			rs.virtual(q, mapped, slaveFields, col, m)
			continue
		}

		if owner, dup := rs.seen[col]; dup {
			reason := fmt.Sprintf("column %s is already emitted", col)
			if owner != "" {
				reason += " for question " + owner
			}
			return &MalformedError{Project: rs.master.ID, Question: q.ID, Reason: reason}
		}
		rs.seen[col] = q.ID

		rs.emitPrimary(q, slaveFields, col, m)
		if rs.multi {
			rs.emitCombined(q, mapped, slaveFields, col, m)
		}
	}
	return nil
}

func (rs *resolution) emitPrimary(q *questionnaire.Question, slaveFields []string, col string, m int) {
	switch {
	case rs.slave == nil:
		rs.primary.AppendDirect(rs.respTable, col)
	case m == Unmapped:
		rs.placeholder(&rs.primary, q, col)
	default:
		rs.primary.AppendRenamed(rs.respTable, slaveFields[m], col)
	}
}

func (rs *resolution) emitCombined(q, mapped *questionnaire.Question, slaveFields []string, col string, m int) {
	if rs.slave == nil {
		table := rs.respTable
		if q.IsSingleDisplay() {
			table = rs.ctxTable
		}
		rs.combined.AppendRenamed(table, col, col)
		return
	}
	if m == Unmapped {
		rs.placeholder(&rs.combined, q, col)
		return
	}
	table, ok := rs.sourceTable(mapped, m)
	if !ok {
		rs.r.logger.Debug("virtual slave question has no real source row",
			"question", q.ID, "mapped", mapped.ID, "column", col)
		rs.placeholder(&rs.combined, q, col)
		return
	}
	rs.combined.AppendRenamed(table, slaveFields[m], col)
}

// virtual records the replacement of a placeholder emitted earlier under
// col by the value the mapped slave question supplies.
func (rs *resolution) virtual(q, mapped *questionnaire.Question, slaveFields []string, col string, m int) {
	if m == Unmapped {
		return
	}
	if _, ok := rs.unmapped[col]; !ok {
		return
	}

	table := rs.respTable
	list := &rs.primary
	if rs.multi {
		list = &rs.combined
		t, ok := rs.sourceTable(mapped, m)
		if !ok {
			rs.r.logger.Debug("virtual question left unresolved", "question", q.ID, "column", col)
			return
		}
		table = t
	}

	list.Defer(col, columns.Renamed(table, slaveFields[m], col))
	rs.r.logger.Debug("virtual question replaces placeholder",
		"question", q.ID, "mapped", mapped.ID, "column", col, "table", table)
}

// sourceTable picks the table holding the values of a slave question. A
// virtual slave question is followed through its row mappings to the real
// question behind column m.
func (rs *resolution) sourceTable(mapped *questionnaire.Question, m int) (string, bool) {
	src, ok := rs.realQuestion(mapped, m)
	if !ok {
		return "", false
	}
	if src.IsSingleDisplay() {
		return rs.ctxTable, true
	}
	return rs.respTable, true
}

func (rs *resolution) realQuestion(q *questionnaire.Question, i int) (*questionnaire.Question, bool) {
	visited := make(map[string]struct{})
	for q.IsVirtual() {
		if _, loop := visited[q.ID]; loop {
			return nil, false
		}
		visited[q.ID] = struct{}{}

		rm, ok := q.RowMapping(i)
		if !ok || !rm.Complete() {
			return nil, false
		}
		next := rs.slave.Questionnaire.Get(rm.QuestionID)
		if next == nil {
			return nil, false
		}
		if next.IsVirtual() {
			i = rowIndex(next, rm.Row)
			if i < 0 {
				return nil, false
			}
		}
		q = next
	}
	return q, true
}

func rowIndex(q *questionnaire.Question, row string) int {
	for i, r := range q.Rows {
		if r == row {
			return i
		}
	}
	return -1
}

func (rs *resolution) placeholder(list *columns.List, q *questionnaire.Question, col string) {
	typ := FloatType
	switch {
	case q.IsCommentColumn(col):
		typ = rs.r.textType
	case rs.multi && q.IsRating() && !q.IsNumeric() && !rs.rowSafe:
		typ = rs.r.narrowType
	}
	list.AppendPlaceholder(typ, col)

	if _, ok := rs.unmapped[col]; !ok {
		rs.unmapped[col] = struct{}{}
		rs.unmappedOrder = append(rs.unmappedOrder, col)
	}
}

func (rs *resolution) finish() *Result {
	if n := rs.primary.Finalize() + rs.combined.Finalize(); n > 0 {
		rs.r.logger.Debug("placeholders replaced by virtual questions", "count", n)
	}

	for _, name := range administrativeColumns {
		rs.primary.AppendDirect(rs.respTable, name)
	}

	res := &Result{
		Cols:        rs.primary.String(),
		ColAlias:    strings.Join(rs.primary.Aliases(), ","),
		Primary:     rs.primary.Columns(),
		Unmapped:    rs.unmappedOrder,
		RowSizeSafe: rs.rowSafe,
	}
	if rs.multi {
		res.CombCols = rs.combined.String()
		res.Combined = rs.combined.Columns()
	}
	return res
}
