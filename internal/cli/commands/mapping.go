package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/reportcols/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewMappingCommand creates the mapping command group.
func NewMappingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Manage stored question mappings",
		Long: `Store the master-to-slave question mappings of report definitions in the
state database, list them, and follow a question through a chain of projects.

Stored mappings are used by 'resolve --state-mapping'.`,
	}

	cmd.AddCommand(newMappingImportCommand())
	cmd.AddCommand(newMappingListCommand())
	cmd.AddCommand(newMappingTraceCommand())
	cmd.AddCommand(newMappingDeleteCommand())
	return cmd
}

func newMappingImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <definition>...",
		Short: "Store the mappings of report definitions",
		Example: `  # Replace the stored mappings of a report
  reportcols mapping import reports/weekly.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			r := cmdCtx.Renderer
			type imported struct {
				Path     string `json:"path"`
				ReportID string `json:"report_id"`
				Mappings int    `json:"mappings"`
			}
			var done []imported
			for _, path := range args {
				reportID, n, err := cmdCtx.Engine.ImportMappings(cmd.Context(), path)
				if err != nil {
					return err
				}
				done = append(done, imported{Path: path, ReportID: reportID, Mappings: n})
			}

			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(done)
			}
			for _, d := range done {
				r.Success(fmt.Sprintf("Imported %d mappings for %s from %s", d.Mappings, d.ReportID, d.Path))
			}
			return nil
		},
	}
}

func newMappingListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [report]",
		Short: "List reports with stored mappings, or the mappings of one report",
		Example: `  # Reports with stored mappings
  reportcols mapping list

  # Every stored mapping of a report
  reportcols mapping list weekly-nps`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 1 {
				return listReportMappings(cmd, cmdCtx, args[0])
			}

			reports, err := cmdCtx.Engine.ListReports(cmd.Context())
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(reports)
			}
			r.Header(1, fmt.Sprintf("Stored mappings (%d reports)", len(reports)))

			if len(reports) == 0 {
				r.Println(r.Muted("No mappings stored. Use 'reportcols mapping import' to add some."))
				return nil
			}

			rows := make([][]string, 0, len(reports))
			for _, rep := range reports {
				rows = append(rows, []string{
					rep.ReportID,
					strconv.Itoa(rep.Mappings),
					strconv.Itoa(rep.SlaveProjects),
					rep.UpdatedAt.Format(time.RFC3339),
				})
			}
			r.Table([]string{"report", "mappings", "slave projects", "updated"}, rows)
			return nil
		},
	}
}

func listReportMappings(cmd *cobra.Command, cmdCtx *CommandContext, reportID string) error {
	table, err := cmdCtx.Engine.StoredMapping(cmd.Context(), reportID)
	if err != nil {
		return err
	}
	entries := table.Entries()

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(entries)
	}

	r.Header(1, fmt.Sprintf("%s (%d mappings)", reportID, len(entries)))
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.SlaveProjectID, e.MasterQuestionID, e.SlaveQuestionID})
	}
	r.Table([]string{"slave project", "master question", "slave question"}, rows)
	return nil
}

func newMappingTraceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <report> <question> <project>...",
		Short: "Follow a master question through slave projects",
		Long: `Follow a master question through one or more slave projects using the
stored mappings of a report. Each step maps the previous question onto
the next project.`,
		Example: `  reportcols mapping trace weekly-nps Q5 0ab7516e-f492-4bc6-9bf4-56fb106e1ab8`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			reportID, question, projects := args[0], args[1], args[2:]
			chain, err := cmdCtx.Engine.Trace(cmd.Context(), reportID, question, projects...)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(struct {
					ReportID string   `json:"report_id"`
					Question string   `json:"question"`
					Projects []string `json:"projects"`
					Chain    []string `json:"chain"`
				}{reportID, question, projects, chain})
			}

			if len(chain) == 0 {
				r.Println(r.Muted(fmt.Sprintf("%s has no mapping in %s", question, projects[0])))
				return nil
			}
			steps := append([]string{question}, chain...)
			r.Println(strings.Join(steps, " -> "))
			if len(chain) < len(projects) {
				r.Println(r.Muted(fmt.Sprintf("stopped at %s: no mapping in %s", chain[len(chain)-1], projects[len(chain)])))
			}
			return nil
		},
	}
}

func newMappingDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <report>",
		Short:   "Remove the stored mappings of a report",
		Example: `  reportcols mapping delete weekly-nps`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			reportID := args[0]
			if err := cmdCtx.Engine.DeleteMappings(cmd.Context(), reportID); err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(struct {
					ReportID string `json:"report_id"`
					Deleted  bool   `json:"deleted"`
				}{reportID, true})
			}
			r.Success(fmt.Sprintf("Deleted stored mappings of %s", reportID))
			return nil
		},
	}
}
