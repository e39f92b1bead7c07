package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/deepxperience/imgopt/internal/config"
	"github.com/deepxperience/imgopt/internal/util"
	"github.com/gen2brain/webp"
	"github.com/rs/zerolog"
)

// Encoder turns raw JPEG/PNG bytes into an opaque WebP.
type Encoder interface {
	Name() string
	Encode(data []byte, quality int, maxSize *config.Size) (*Output, error)
}

// Output is an encoded WebP. Image holds the final pixels when the encoder
// has them in memory and is nil otherwise.
type Output struct {
	Data   []byte
	Width  int
	Height int
	Image  image.Image
}

// Job is one source file to be written to Dest.
type Job struct {
	Source  string
	Dest    string
	Quality int
	MaxSize *config.Size
}

// Result is the outcome of a Job. Err is set exactly when OK is false.
type Result struct {
	OK            bool
	Source        string
	Dest          string
	FallbackPath  string
	OriginalSize  int64
	OptimizedSize int64
	Width         int
	Height        int
	ReductionPct  float64
	Digest        string
	Err           error
}

type Processor struct {
	encoder      Encoder
	jpegFallback bool
	jpegQuality  int
	logger       zerolog.Logger
}

func NewProcessor(encoder Encoder, jpegFallback bool, jpegQuality int, logger zerolog.Logger) *Processor {
	return &Processor{
		encoder:      encoder,
		jpegFallback: jpegFallback,
		jpegQuality:  jpegQuality,
		logger:       logger,
	}
}

// Process runs a single job. It never panics; every failure ends up in Result.Err.
func (p *Processor) Process(job Job) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failed(job, fmt.Errorf("panic while processing: %v", r))
		}
	}()

	data, err := os.ReadFile(job.Source)
	if err != nil {
		return failed(job, fmt.Errorf("failed to read source: %w", err))
	}

	if contentType := util.DetectContentType(data); !util.IsImageMIME(contentType) {
		return failed(job, fmt.Errorf("input is not a valid image format, detected: %s", contentType))
	}

	out, err := p.encoder.Encode(data, job.Quality, job.MaxSize)
	if err != nil {
		return failed(job, fmt.Errorf("%s encoder: %w", p.encoder.Name(), err))
	}

	if err := os.WriteFile(job.Dest, out.Data, 0644); err != nil {
		return failed(job, fmt.Errorf("failed to write output: %w", err))
	}

	srcInfo, err := os.Stat(job.Source)
	if err != nil {
		return failed(job, fmt.Errorf("failed to stat source: %w", err))
	}
	dstInfo, err := os.Stat(job.Dest)
	if err != nil {
		return failed(job, fmt.Errorf("failed to stat output: %w", err))
	}

	result = Result{
		OK:            true,
		Source:        job.Source,
		Dest:          job.Dest,
		OriginalSize:  srcInfo.Size(),
		OptimizedSize: dstInfo.Size(),
		Width:         out.Width,
		Height:        out.Height,
		ReductionPct:  Reduction(srcInfo.Size(), dstInfo.Size()),
		Digest:        util.HashBytes(out.Data),
	}

	if p.jpegFallback {
		path, err := p.writeFallback(job, out)
		if err != nil {
			// The WebP is already on disk, so the job still counts.
			p.logger.Warn().Err(err).Str("source", job.Source).Msg("jpeg fallback failed")
		} else {
			result.FallbackPath = path
		}
	}

	p.logger.Debug().
		Str("source", job.Source).
		Str("dest", job.Dest).
		Str("encoder", p.encoder.Name()).
		Int64("original_size", result.OriginalSize).
		Int64("optimized_size", result.OptimizedSize).
		Str("digest", result.Digest[:16]).
		Msg("optimized image")

	return result
}

func (p *Processor) writeFallback(job Job, out *Output) (string, error) {
	img := out.Image
	if img == nil {
		decoded, err := webp.Decode(bytes.NewReader(out.Data))
		if err != nil {
			return "", fmt.Errorf("failed to decode webp for fallback: %w", err)
		}
		img = decoded
	}

	data, err := encodeJPEG(img, p.jpegQuality)
	if err != nil {
		return "", err
	}

	path := util.WithExtension(job.Dest, ".jpg")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write fallback: %w", err)
	}
	return path, nil
}

// Reduction is the percentage saved going from original to optimized bytes.
func Reduction(original, optimized int64) float64 {
	if original <= 0 {
		return 0
	}
	return float64(original-optimized) / float64(original) * 100
}

func failed(job Job, err error) Result {
	return Result{
		Source: job.Source,
		Dest:   job.Dest,
		Err:    err,
	}
}
