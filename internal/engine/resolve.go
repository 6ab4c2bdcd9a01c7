package engine

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/reportcols/internal/definition"
	"github.com/leapstack-labs/reportcols/internal/probe"
	"github.com/leapstack-labs/reportcols/pkg/resolver"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds ResolveFiles when Options.Concurrency is unset.
const DefaultConcurrency = 4

// Options controls a resolution.
type Options struct {
	// Slave selects the slave project ("" resolves the master only).
	Slave string
	// UsedOnly restricts resolution to the report's used questions.
	UsedOnly bool
	// Probe executes the resolved lists against scratch tables.
	Probe bool
	// MappingFromState reads the mapping from the state store instead of
	// the definition file.
	MappingFromState bool
	// Concurrency bounds ResolveFiles.
	Concurrency int
}

// FileResult is the resolution of one definition file.
type FileResult struct {
	Path     string `json:"path"`
	ReportID string `json:"report_id"`
	Master   string `json:"master_project"`
	Slave    string `json:"slave_project,omitempty"`
	Multi    bool   `json:"multi"`
	Probed   bool   `json:"probed"`

	*resolver.Result `json:"-"`
}

// ResolveFile resolves the definition file at path.
func (e *Engine) ResolveFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	def, err := definition.Load(path)
	if err != nil {
		return nil, err
	}
	bundle, err := def.Build()
	if err != nil {
		return nil, err
	}

	if opts.MappingFromState {
		table, err := e.StoredMapping(ctx, bundle.Report.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored mapping: %w", err)
		}
		bundle.Report.Mapping = table
	}

	req, err := bundle.Request(opts.Slave, opts.UsedOnly)
	if err != nil {
		return nil, err
	}

	res, err := e.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	fr := &FileResult{
		Path:     path,
		ReportID: bundle.Report.ID,
		Master:   bundle.Report.Project.ID,
		Slave:    opts.Slave,
		Multi:    bundle.Report.Project.Definition.Multi(),
		Result:   res,
	}

	if opts.Probe {
		current := bundle.Report.Project
		if req.Slave != nil {
			current = req.Slave
		}
		tables := probe.Tables{Response: current.ResponseTable(), Context: current.ContextResponseTable()}
		if err := e.prober.Probe(ctx, res, tables); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		fr.Probed = true
	}

	e.logger.Debug("resolved definition",
		"file", path,
		"report", fr.ReportID,
		"columns", len(res.Primary),
		"placeholders", len(res.Unmapped),
	)
	return fr, nil
}

// ResolveFiles resolves paths concurrently. Results keep the order of paths.
// The first failure cancels the remaining resolutions.
func (e *Engine) ResolveFiles(ctx context.Context, paths []string, opts Options) ([]*FileResult, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]*FileResult, len(paths))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, path := range paths {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			fr, err := e.ResolveFile(egctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = fr
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
