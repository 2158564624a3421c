package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"rustidy/internal/config"
	"rustidy/internal/diag"
	"rustidy/internal/fix"
	"rustidy/internal/format"
	"rustidy/internal/observ"
	"rustidy/internal/source"
	"rustidy/internal/trace"
)

// FormatOptions configures FormatPaths and FormatFiles.
type FormatOptions struct {
	Config config.Config
	// Check reports which files would change; nothing is written.
	Check bool
	// Stdout returns formatted text in the results without touching files on disk.
	Stdout bool
	// Fix applies machine-applicable lint fixes before formatting.
	Fix bool
	// Jobs bounds parallelism; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics limits diagnostics kept per file; 0 is unbounded.
	MaxDiagnostics int
	// Cache, when set, lets files known to be formatted skip parsing.
	Cache    *DiskCache
	Progress ProgressSink
	Timer    *observ.Timer
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path string
	// Changed means formatting produces different bytes. With Check or
	// Stdout set nothing was written.
	Changed bool
	Written bool
	Cached  bool
	// Fixed counts lint fixes applied with Fix.
	Fixed int
	// Formatted is set only with Stdout.
	Formatted []byte
	// Err is a load, parse or write failure. Diagnostics, if any, are in Bag.
	Err   error
	Bag   *diag.Bag
	Files *source.FileSet
}

// FormatPaths formats provided files or directories (recursively collecting
// source files). When opts.Check is true, files are not modified; Changed
// indicates whether formatting would update the file contents. When
// opts.Stdout is true, formatted content is returned in the results.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := opts.Timer.Track("collect")
	files, err := CollectFiles(ctx, paths, opts.Config)
	done("")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("format: %w", ErrNoFiles)
	}
	return FormatFiles(ctx, files, opts)
}

// FormatFiles formats an explicit list of files in parallel. Results keep
// the order of files. The returned error is only set when ctx was cancelled;
// per-file failures are reported through FormatResult.Err.
func FormatFiles(ctx context.Context, files []string, opts FormatOptions) ([]FormatResult, error) {
	ctx, sp := trace.Start(ctx, trace.ScopePass, "format")
	defer sp.End("")
	sp.WithExtra("files", fmt.Sprint(len(files)))

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// Загружаем последовательно: FileSet не потокобезопасен на запись,
	// а чтение из горутин после загрузки безопасно.
	loadIdx := opts.Timer.Begin("load")
	fileSet := source.NewFileSet()
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		fileIDs[i] = id
	}
	opts.Timer.SetItems(loadIdx, len(files)-len(loadErrors))
	opts.Timer.End(loadIdx, "")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	fingerprint := opts.Config.Fingerprint()

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FormatResult, len(files))

	fmtIdx := opts.Timer.Begin("format")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if err, failed := loadErrors[i]; failed {
				results[i] = FormatResult{Path: path, Err: fmt.Errorf("failed to load file: %w", err)}
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
				return nil
			}
			results[i] = formatOne(gctx, fileSet, fileIDs[i], path, fingerprint, opts)
			return nil
		})
	}
	err := g.Wait()

	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
		}
	}
	opts.Timer.SetItems(fmtIdx, len(files))
	opts.Timer.End(fmtIdx, fmt.Sprintf("%d changed", changed))
	emit(opts.Progress, Event{Stage: StageFormat, Status: StatusDone})
	return results, err
}

func formatOne(ctx context.Context, fileSet *source.FileSet, id source.FileID, path, fingerprint string, opts FormatOptions) FormatResult {
	start := time.Now()
	file := fileSet.Get(id)
	res := FormatResult{Path: path, Files: fileSet, Bag: diag.NewBag(opts.MaxDiagnostics)}
	finish := func() FormatResult {
		ev := Event{File: path, Stage: StageFormat, Status: StatusDone, Changed: res.Changed, Cached: res.Cached, Elapsed: time.Since(start)}
		if res.Err != nil {
			ev.Status, ev.Err = StatusError, res.Err
		}
		emit(opts.Progress, ev)
		return res
	}

	if opts.Cache != nil && opts.Cache.Known(file, fingerprint) {
		res.Cached = true
		if opts.Stdout {
			res.Formatted = source.Restore(file.Content, file.Flags)
		}
		return finish()
	}

	emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusWorking})
	out, err := format.FormatFile(ctx, file, opts.Config.FormatOptions(), diag.BagReporter{Bag: res.Bag})
	if err != nil {
		res.Err = err
		return finish()
	}
	if opts.Fix && res.Bag.HasFixes() {
		fx, err := refix(ctx, file, res.Bag, opts)
		if err != nil {
			res.Err = err
			return finish()
		}
		if fx.applied > 0 {
			out, res.Bag, res.Files, res.Fixed = fx.out, fx.bag, fx.files, fx.applied
			out.Changed = true
		}
	}
	res.Changed = out.Changed

	switch {
	case opts.Stdout:
		res.Formatted = out.Output
	case opts.Check:
	case out.Changed:
		emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking})
		if err := writeFile(path, out.Output); err != nil {
			res.Err = err
			return finish()
		}
		res.Written = true
	}

	if opts.Cache != nil && out.Warnings == 0 {
		remember := file
		if res.Written {
			// на диске теперь отформатированный текст
			tmp := source.NewFileSet()
			content, flags := source.Normalize(out.Output)
			remember = tmp.Get(tmp.Add(path, content, flags))
		}
		if !out.Changed || res.Written {
			if err := opts.Cache.Remember(remember, fingerprint); err != nil {
				trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache", err.Error(), 0)
			}
		}
	}
	return finish()
}

type refixed struct {
	out     format.Result
	bag     *diag.Bag
	files   *source.FileSet
	applied int
}

// refix applies the fixes found in bag and formats the fixed text again.
// Diagnostics of the second run point into a fresh FileSet holding the fixed
// text; the old spans are meaningless after the edits.
func refix(ctx context.Context, file *source.File, bag *diag.Bag, opts FormatOptions) (refixed, error) {
	fixes := fix.Apply(file, bag.Items())
	for _, sk := range fixes.Skipped {
		trace.Point(trace.FromContext(ctx), trace.ScopeFile, "fix.skip", sk.Title+": "+sk.Reason, 0)
	}
	if !fixes.Changed() {
		return refixed{}, nil
	}
	files := source.NewFileSet()
	fixedFile := files.Get(files.Add(file.Path, fixes.Content, file.Flags))
	fixedBag := diag.NewBag(opts.MaxDiagnostics)
	out, err := format.FormatFile(ctx, fixedFile, opts.Config.FormatOptions(), diag.BagReporter{Bag: fixedBag})
	if err != nil {
		// исправление сломало разбор: оставляем исходные диагностики
		return refixed{}, fmt.Errorf("applying fixes: %w", err)
	}
	return refixed{out: out, bag: fixedBag, files: files, applied: len(fixes.Applied)}, nil
}

func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, data, mode.Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SourceResult is the outcome of FormatSource.
type SourceResult struct {
	Output  []byte
	Changed bool
	Bag     *diag.Bag
	Files   *source.FileSet
	File    *source.File
}

// FormatSource formats an in-memory buffer (stdin, editor). On a parse or
// verification failure the error is returned together with the diagnostics.
func FormatSource(ctx context.Context, name string, content []byte, cfg config.Config, maxDiagnostics int) (SourceResult, error) {
	fileSet := source.NewFileSet()
	file := fileSet.Get(fileSet.AddVirtual(name, content))
	res := SourceResult{Bag: diag.NewBag(maxDiagnostics), Files: fileSet, File: file}
	out, err := format.FormatFile(ctx, file, cfg.FormatOptions(), diag.BagReporter{Bag: res.Bag})
	if err != nil {
		return res, err
	}
	res.Output = out.Output
	res.Changed = out.Changed
	return res, nil
}
