package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepxperience/imgopt/internal/config"
	"github.com/deepxperience/imgopt/internal/html"
	"github.com/deepxperience/imgopt/internal/imageproc"
	"github.com/deepxperience/imgopt/internal/storage"
	"github.com/deepxperience/imgopt/internal/util"
	"github.com/rs/zerolog"
)

// Transformer is satisfied by *imageproc.Processor.
type Transformer interface {
	Process(job imageproc.Job) imageproc.Result
}

type Options struct {
	// Root is the directory every rule path is relative to.
	Root string

	Rules config.Rules

	// Publisher, when set, receives every successful output.
	Publisher storage.Publisher
	KeyPrefix string

	// RewriteHTML lists root-relative documents whose image references are updated at the end.
	RewriteHTML []string

	Out io.Writer
}

type Summary struct {
	Processed int
	Failed    int
	Skipped   int
	Published int
}

type Runner struct {
	transformer Transformer
	opts        Options
	report      *Reporter
	rewriter    *html.Rewriter
	summary     Summary
	logger      zerolog.Logger
}

func NewRunner(transformer Transformer, opts Options, logger zerolog.Logger) *Runner {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Runner{
		transformer: transformer,
		opts:        opts,
		report:      NewReporter(opts.Out),
		rewriter:    html.NewRewriter(opts.Root, logger),
		logger:      logger,
	}
}

// Run scans every folder rule in order, then the fixed file list, and prints
// the summary. Only invalid rules or a cancelled context produce an error;
// individual image failures are counted and reported.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if err := r.opts.Rules.Validate(); err != nil {
		return Summary{}, fmt.Errorf("invalid rules: %w", err)
	}

	r.summary = Summary{}
	r.rewriter = html.NewRewriter(r.opts.Root, r.logger)
	r.report.Banner()

	total := 0
	for _, f := range r.opts.Rules.Folders {
		if err := ctx.Err(); err != nil {
			return r.summary, err
		}
		total += r.ScanFolder(ctx, f.Dir, f.Category)
	}
	if err := ctx.Err(); err != nil {
		return r.summary, err
	}
	total += r.ProcessFiles(ctx, r.opts.Rules.Files)

	r.summary.Processed = total
	r.report.Summary(r.summary)
	r.report.NextSteps()

	r.rewriteDocuments()

	r.logger.Info().
		Int("processed", r.summary.Processed).
		Int("failed", r.summary.Failed).
		Int("skipped", r.summary.Skipped).
		Int("published", r.summary.Published).
		Msg("run complete")

	return r.summary, ctx.Err()
}

// ScanFolder optimizes the recognised images directly inside dir (not
// recursively) and returns how many succeeded. A missing directory is a
// warning, not an error.
func (r *Runner) ScanFolder(ctx context.Context, dir, category string) int {
	preset, err := r.opts.Rules.Category(category)
	if err != nil {
		r.logger.Error().Err(err).Str("dir", dir).Msg("folder rule skipped")
		return 0
	}

	entries, err := os.ReadDir(filepath.Join(r.opts.Root, dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn().Str("dir", dir).Msg("folder not found")
		} else {
			r.logger.Warn().Err(err).Str("dir", dir).Msg("folder not readable")
		}
		r.report.FolderMissing(dir)
		return 0
	}

	r.report.FolderHeader(dir, category, preset)

	processed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if entry.IsDir() || !util.IsSourceImage(entry.Name()) {
			continue
		}

		source := filepath.Join(dir, entry.Name())
		dest := filepath.Join(dir, util.OptimizedName(entry.Name()))
		if r.optimize(ctx, entry.Name(), source, dest, preset) {
			processed++
		}
	}
	return processed
}

// ProcessFiles optimizes each explicitly listed file whose source exists and
// returns how many succeeded.
func (r *Runner) ProcessFiles(ctx context.Context, files []config.FileRule) int {
	r.report.FilesHeader()

	processed := 0
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}

		preset, err := r.opts.Rules.Category(f.Category)
		if err != nil {
			r.logger.Error().Err(err).Str("source", f.Source).Msg("file rule skipped")
			r.summary.Skipped++
			continue
		}

		if _, err := os.Stat(filepath.Join(r.opts.Root, f.Source)); err != nil {
			r.logger.Warn().Str("source", f.Source).Msg("file not found")
			r.report.FileMissing(f.Source)
			r.summary.Skipped++
			continue
		}

		if r.optimize(ctx, filepath.Base(f.Source), f.Source, f.Dest, preset) {
			processed++
		}
	}
	return processed
}

// optimize runs one job. source and dest are relative to the root.
func (r *Runner) optimize(ctx context.Context, name, source, dest string, preset config.Category) bool {
	res := r.transformer.Process(imageproc.Job{
		Source:  filepath.Join(r.opts.Root, source),
		Dest:    filepath.Join(r.opts.Root, dest),
		Quality: preset.Quality,
		MaxSize: preset.MaxSize,
	})

	if !res.OK {
		r.logger.Error().Err(res.Err).Str("source", source).Msg("failed to optimize image")
		r.report.Result(source, res)
		r.summary.Failed++
		return false
	}
	r.report.Result(name, res)

	target := filepath.ToSlash(dest)
	// Without a public base URL the publisher hands back a bare object key,
	// which pages cannot load, so they keep pointing at the local output.
	if url, ok := r.publish(ctx, dest, res); ok && strings.Contains(url, "://") {
		target = url
	}
	r.rewriter.Add(source, target)
	return true
}

// publish uploads the output (and its JPEG fallback) when a publisher is configured.
func (r *Runner) publish(ctx context.Context, dest string, res imageproc.Result) (string, bool) {
	if r.opts.Publisher == nil {
		return "", false
	}

	url, err := r.upload(ctx, dest, res.Dest)
	if err != nil {
		r.logger.Warn().Err(err).Str("dest", dest).Msg("failed to publish image")
		r.report.PublishFailed(dest, err)
		return "", false
	}
	r.report.Published(url)
	r.summary.Published++

	if res.FallbackPath != "" {
		rel, err := filepath.Rel(r.opts.Root, res.FallbackPath)
		if err != nil {
			rel = filepath.Base(res.FallbackPath)
		}
		if _, err := r.upload(ctx, rel, res.FallbackPath); err != nil {
			r.logger.Warn().Err(err).Str("dest", rel).Msg("failed to publish fallback")
		}
	}
	return url, true
}

func (r *Runner) upload(ctx context.Context, rel, fullPath string) (string, error) {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to read output: %w", err)
	}
	key := storage.ObjectKey(r.opts.KeyPrefix, rel)
	result, err := r.opts.Publisher.Upload(ctx, key, data, util.ContentTypeFor(fullPath))
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

func (r *Runner) rewriteDocuments() {
	if len(r.opts.RewriteHTML) == 0 || r.rewriter.Len() == 0 {
		return
	}
	for _, name := range r.opts.RewriteHTML {
		stats, err := r.rewriter.RewriteFile(name)
		if err != nil {
			r.logger.Warn().Err(err).Str("file", name).Msg("failed to rewrite references")
			continue
		}
		r.report.Rewritten(stats)
	}
}
