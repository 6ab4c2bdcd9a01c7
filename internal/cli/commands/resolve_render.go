package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/reportcols/internal/cli/output"
	"github.com/leapstack-labs/reportcols/internal/engine"
	"github.com/leapstack-labs/reportcols/pkg/columns"
)

// ResolveOutput is the JSON form of one resolved definition.
type ResolveOutput struct {
	Path        string         `json:"path"`
	ReportID    string         `json:"report_id"`
	Master      string         `json:"master_project"`
	Slave       string         `json:"slave_project,omitempty"`
	Multi       bool           `json:"multi"`
	RowSizeSafe bool           `json:"row_size_safe"`
	Probed      bool           `json:"probed"`
	Cols        string         `json:"cols"`
	CombCols    string         `json:"combCols"`
	ColAlias    string         `json:"colAlias"`
	Unmapped    []string       `json:"unmapped,omitempty"`
	Columns     []ColumnOutput `json:"columns"`
}

// ColumnOutput is one output column with its primary and combined source.
type ColumnOutput struct {
	Index    int    `json:"index"`
	Alias    string `json:"alias"`
	Primary  string `json:"primary"`
	Combined string `json:"combined,omitempty"`
}

func toResolveOutput(fr *engine.FileResult) ResolveOutput {
	return ResolveOutput{
		Path:        fr.Path,
		ReportID:    fr.ReportID,
		Master:      fr.Master,
		Slave:       fr.Slave,
		Multi:       fr.Multi,
		RowSizeSafe: fr.RowSizeSafe,
		Probed:      fr.Probed,
		Cols:        fr.Cols,
		CombCols:    fr.CombCols,
		ColAlias:    fr.ColAlias,
		Unmapped:    fr.Unmapped,
		Columns:     columnRows(fr.Primary, fr.Combined),
	}
}

func columnRows(primary, combined []columns.Column) []ColumnOutput {
	rows := make([]ColumnOutput, len(primary))
	for i, c := range primary {
		rows[i] = ColumnOutput{Index: i + 1, Alias: c.Alias, Primary: c.String()}
		if i < len(combined) {
			rows[i].Combined = combined[i].String()
		}
	}
	return rows
}

func renderResults(r *output.Renderer, results []*engine.FileResult) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := make([]ResolveOutput, 0, len(results))
		for _, fr := range results {
			out = append(out, toResolveOutput(fr))
		}
		return r.JSON(out)
	case output.ModeMarkdown:
		for _, fr := range results {
			resolveMarkdown(r, fr)
		}
	case output.ModeTable:
		for _, fr := range results {
			resolveTable(r, fr)
		}
	default:
		for _, fr := range results {
			resolveText(r, fr)
		}
	}
	return nil
}

func resolveText(r *output.Renderer, fr *engine.FileResult) {
	r.Header(1, fmt.Sprintf("%s (%s)", fr.ReportID, fr.Path))
	resolveSummary(r, fr)
	r.Println("")
	r.KeyValue("cols", fr.Cols)
	if fr.Multi {
		r.KeyValue("combCols", fr.CombCols)
	}
	r.KeyValue("colAlias", fr.ColAlias)
	r.Println("")
}

func resolveMarkdown(r *output.Renderer, fr *engine.FileResult) {
	r.Println(output.FormatHeader(1, fr.ReportID))
	r.Println("")
	r.Println(output.FormatKeyValue("File", fr.Path))
	resolveSummary(r, fr)
	r.Println("")

	r.Println(output.FormatHeader(2, "cols"))
	r.Println("")
	r.Println(output.FormatCodeBlock("sql", fr.Cols))
	r.Println("")
	if fr.Multi {
		r.Println(output.FormatHeader(2, "combCols"))
		r.Println("")
		r.Println(output.FormatCodeBlock("sql", fr.CombCols))
		r.Println("")
	}
	r.Println(output.FormatHeader(2, "colAlias"))
	r.Println("")
	r.Println(output.FormatCodeBlock("", fr.ColAlias))
	r.Println("")
}

func resolveSummary(r *output.Renderer, fr *engine.FileResult) {
	r.KeyValue("Master", fr.Master)
	if fr.Slave != "" {
		r.KeyValue("Slave", fr.Slave)
	}
	r.KeyValue("Multi", strconv.FormatBool(fr.Multi))
	r.KeyValue("Row size safe", strconv.FormatBool(fr.RowSizeSafe))
	r.KeyValue("Placeholders", strconv.Itoa(len(fr.Unmapped)))
	if fr.Probed {
		r.KeyValue("Probe", "ok")
	}
}

func resolveTable(r *output.Renderer, fr *engine.FileResult) {
	r.Println(fmt.Sprintf("%s (%s)", fr.ReportID, fr.Path))

	header := []string{"#", "alias", "primary"}
	if fr.Multi {
		header = append(header, "combined")
	}
	rows := make([][]string, 0, len(fr.Primary))
	for _, c := range columnRows(fr.Primary, fr.Combined) {
		row := []string{strconv.Itoa(c.Index), c.Alias, c.Primary}
		if fr.Multi {
			row = append(row, c.Combined)
		}
		rows = append(rows, row)
	}
	r.Table(header, rows)
	r.Println("")
}
