package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qrgen/internal/engine/pipeline"
	"qrgen/internal/engine/qr"
	"qrgen/internal/engine/shortener"
	"qrgen/internal/pkg/logger"
	"qrgen/internal/platform/config"
)

type generateOptions struct {
	color    string
	size     int
	shorten  bool
	provider string
	output   string
}

func newGenerateCmd(configPath *string) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [url]",
		Short: "Write a QR code PNG for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), *configPath, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.color, "color", "black", "Preset name (black, navy, green, blue, pink, red) or hex colour")
	cmd.Flags().IntVar(&opts.size, "size", qr.DefaultSize, "Output size in pixels (200, 300, 400, 500 or 600)")
	cmd.Flags().BoolVar(&opts.shorten, "shorten", false, "Shorten the URL before encoding")
	cmd.Flags().StringVar(&opts.provider, "provider", "isgd", "Shortening service: isgd, dagd, clckru or tinyurl")
	cmd.Flags().StringVarP(&opts.output, "output", "o", pipeline.DownloadFilename, "Output file")

	return cmd
}

// runGenerate drives the same pipeline as the web form with a throwaway state.
func runGenerate(ctx context.Context, configPath, rawURL string, opts *generateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Logging)

	p := newPipeline(cfg)

	state, render := p.Apply(ctx, pipeline.State{}, pipeline.Submit{
		URL:      rawURL,
		Color:    opts.color,
		Shorten:  opts.shorten,
		Provider: shortener.ParseProvider(opts.provider),
	})
	for _, w := range render.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	for _, e := range render.Errors {
		fmt.Fprintln(os.Stderr, "error:", e)
	}
	if render.Err != nil {
		return render.Err
	}

	state, render = p.Apply(ctx, state, pipeline.SelectSize{Size: opts.size})
	if len(render.Warnings) > 0 {
		return errors.New(render.Warnings[0])
	}

	png, err := state.Export(state.Size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, png, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.output, err)
	}

	if state.ShortURL != "" {
		fmt.Println("Short URL:", state.ShortURL)
	}
	fmt.Printf("Wrote %s (%dx%d px) for %s\n", opts.output, state.Size, state.Size, state.TargetURL)
	return nil
}
