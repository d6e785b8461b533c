package codemod

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

type Config struct {
	// Dir is the directory relative patch paths resolve against. Empty means
	// the working directory.
	Dir string
	// Files restricts the run to these files when non-empty.
	Files  []string
	DryRun bool
	// Writer persists patched files. Nil means write directly to disk.
	Writer Writer
	Logger *zap.Logger
}

type ReportFunc func(FileResult)

// App runs a patch: files are processed one at a time in plan order, and
// the operations of a file are folded over its text in patch order.
type App struct {
	cfg            *Config
	pathResolver   *PathResolver
	writer         Writer
	logger         *zap.Logger
	reportCallback ReportFunc
}

func NewApp(cfg *Config) (*App, error) {
	pr, err := NewPathResolver(cfg.Dir)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var w Writer = NewFileManager()
	switch {
	case cfg.DryRun:
		w = dryRunWriter{}
	case cfg.Writer != nil:
		w = cfg.Writer
	}

	return &App{
		cfg:          cfg,
		pathResolver: pr,
		writer:       w,
		logger:       logger,
	}, nil
}

// SetReportCallback registers cb to be called as soon as each file is done.
func (a *App) SetReportCallback(cb ReportFunc) { a.reportCallback = cb }

// Execute applies patch. The first failing file aborts the run; files
// finished before it stay written and reported.
func (a *App) Execute(ctx context.Context, patch *Patch) (summary Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{Err: fmt.Errorf("panic: %v", r), Stack: debug.Stack()}
		}
	}()

	plan := CreatePlan(patch.Operations, a.pathResolver, a.cfg.Files)
	a.logger.Debug("plan created",
		zap.Int("files", len(plan.Groups)),
		zap.Int("operations", plan.OperationCount()))
	if len(plan.Groups) == 0 {
		return Summary{Message: "Nothing to do"}, nil
	}

	for _, g := range plan.Groups {
		res, err := a.applyGroup(ctx, g)
		if err != nil {
			return summary, err
		}
		if res.Status == StatusPatched {
			summary.Patched = append(summary.Patched, res.Path)
		} else {
			summary.Unchanged = append(summary.Unchanged, res.Path)
		}
		a.report(res)
	}
	return summary, nil
}

func (a *App) applyGroup(ctx context.Context, g FileGroup) (FileResult, error) {
	abs := a.pathResolver.Resolve(g.Path)
	original, err := ReadSourceFile(abs)
	if err != nil {
		return FileResult{}, err
	}

	text := string(original)
	for i, op := range g.Operations {
		if err := ctx.Err(); err != nil {
			return FileResult{}, err
		}
		next, edits, err := applyOperation(ctx, g.Path, text, op)
		if err != nil {
			return FileResult{}, fmt.Errorf("operation %d (%s): %w", i+1, op.Kind(), err)
		}
		a.logger.Debug("operation applied",
			zap.String("file", g.Path),
			zap.String("type", op.Kind()),
			zap.Int("edits", edits))
		text = next
	}

	res := FileResult{Path: g.Path, Applied: len(g.Operations)}
	if text == string(original) {
		return res, nil
	}
	if err := a.writer.WriteFile(abs, []byte(text)); err != nil {
		return FileResult{}, err
	}
	res.Status = StatusPatched
	return res, nil
}

func (a *App) report(res FileResult) {
	if a.reportCallback != nil {
		a.reportCallback(res)
	}
}
