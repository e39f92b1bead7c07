package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deepxperience/imgopt/internal/batch"
	"github.com/deepxperience/imgopt/internal/config"
	"github.com/deepxperience/imgopt/internal/imageproc"
	"github.com/deepxperience/imgopt/internal/storage"
	"github.com/deepxperience/imgopt/internal/vipsproc"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "imgopt",
		Short: "Resize and re-encode the site images as WebP",
		Long: `imgopt walks the image folders of the site, resizes every JPEG and PNG to
its category preset and writes a "<name>-optimized.webp" next to it.

It takes no arguments. Settings come from the environment or a .env file:
  IMGOPT_ROOT           directory the image paths are relative to (default ".")
  IMGOPT_ENCODER        "native" or "vips" (default "native")
  IMGOPT_AUTO_ORIENT    apply EXIF orientation before resizing
  IMGOPT_JPEG_FALLBACK  also write a "<name>-optimized.jpg"
  REWRITE_HTML          comma-separated documents to point at the new files
  MIRROR_DIR, R2_*      publish outputs to a directory or an R2 bucket`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func run(ctx context.Context, out io.Writer) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	encoder, err := newEncoder(cfg)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize publisher")
		return err
	}

	logger.Info().
		Str("root", cfg.Root).
		Str("encoder", encoder.Name()).
		Bool("jpeg_fallback", cfg.JPEGFallback).
		Bool("publish", publisher != nil).
		Msg("starting image optimization")

	processor := imageproc.NewProcessor(encoder, cfg.JPEGFallback, cfg.JPEGQuality, logger)

	runner := batch.NewRunner(processor, batch.Options{
		Root:        cfg.Root,
		Rules:       cfg.Rules,
		Publisher:   publisher,
		KeyPrefix:   cfg.R2Prefix,
		RewriteHTML: cfg.RewriteHTML,
		Out:         out,
	}, logger)

	if _, err := runner.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().Msg("interrupted, remaining images were not processed")
			return nil
		}
		logger.Error().Err(err).Msg("run aborted")
		return err
	}
	return nil
}

func newEncoder(cfg *config.Config) (imageproc.Encoder, error) {
	switch cfg.Encoder {
	case "native", "":
		return imageproc.NewNativeEncoder(cfg.AutoOrient), nil
	case "vips":
		return vipsproc.NewEncoder(cfg.AutoOrient), nil
	default:
		return nil, fmt.Errorf("unknown encoder %q (want native or vips)", cfg.Encoder)
	}
}

// newPublisher returns nil when publishing is not configured.
func newPublisher(ctx context.Context, cfg *config.Config) (storage.Publisher, error) {
	switch {
	case cfg.PublishToR2():
		return storage.NewR2Client(
			ctx,
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2SecretAccessKey,
			cfg.R2Bucket,
			cfg.R2S3Endpoint,
			cfg.R2PublicBaseURL,
		)
	case cfg.MirrorDir != "":
		return storage.NewLocalMirror(cfg.MirrorDir, cfg.R2PublicBaseURL)
	default:
		return nil, nil
	}
}
