package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"rustidy/internal/ast"
	"rustidy/internal/config"
	"rustidy/internal/diag"
	"rustidy/internal/parser"
	"rustidy/internal/source"
	"rustidy/internal/trace"
)

// ParseResult is a parsed file with its diagnostics. Tree is nil when the
// file did not parse.
type ParseResult struct {
	Path  string
	Files *source.FileSet
	File  *source.File
	Tree  *ast.File
	Bag   *diag.Bag
	Err   error
}

// ParseSource parses an in-memory buffer.
func ParseSource(ctx context.Context, name string, content []byte, maxDepth, maxDiagnostics int) *ParseResult {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, content)
	return parseLoaded(ctx, fs, id, maxDepth, maxDiagnostics)
}

// Parse loads and parses one file from disk.
func Parse(ctx context.Context, filePath string, maxDepth, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}
	return parseLoaded(ctx, fs, id, maxDepth, maxDiagnostics), nil
}

func parseLoaded(ctx context.Context, fs *source.FileSet, id source.FileID, maxDepth, maxDiagnostics int) *ParseResult {
	file := fs.Get(id)
	bag := diag.NewBag(maxDiagnostics)
	res := parser.ParseFile(ctx, file, parser.Options{
		MaxDepth: maxDepth,
		Reporter: diag.BagReporter{Bag: bag},
	})
	out := &ParseResult{Path: file.Path, Files: fs, File: file, Tree: res.File, Bag: bag}
	if res.Err != nil {
		out.Err = res.Err
	}
	return out
}

// CheckOptions configures CheckPaths.
type CheckOptions struct {
	Config         config.Config
	Jobs           int
	MaxDiagnostics int
	Progress       ProgressSink
}

// CheckPaths parses every source file under paths in parallel and collects
// syntax diagnostics. All files share one FileSet so diagnostics can be
// rendered together.
func CheckPaths(ctx context.Context, paths []string, opts CheckOptions) (*source.FileSet, []ParseResult, error) {
	files, err := CollectFiles(ctx, paths, opts.Config)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("check: %w", ErrNoFiles)
	}

	ctx, sp := trace.Start(ctx, trace.ScopePass, "check")
	defer sp.End("")

	// Создаём FileSet и предзагружаем все файлы
	fileSet := source.NewFileSet()
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error, len(files))
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		fileIDs[i] = id
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]ParseResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if loadErr, failed := loadErrors[i]; failed {
				results[i] = ParseResult{Path: path, Files: fileSet, Err: fmt.Errorf("failed to load file: %w", loadErr)}
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}
			emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusWorking})
			r := parseLoaded(gctx, fileSet, fileIDs[i], opts.Config.MaxDepth, opts.MaxDiagnostics)
			r.Path = path
			results[i] = *r
			ev := Event{File: path, Stage: StageParse, Status: StatusDone}
			if r.Err != nil {
				ev.Status, ev.Err = StatusError, r.Err
			}
			emit(opts.Progress, ev)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
