package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"
	"github.com/willbeason/fractal-canopy/internal/config"
	"github.com/willbeason/fractal-canopy/internal/logging"
	"github.com/willbeason/fractal-canopy/pkg/params"
	"github.com/willbeason/fractal-canopy/pkg/render"
)

const jpegQuality = 90

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canopy",
		Short: "Draw a fractal canopy",
		Long: `Draws a recursive fractal canopy: a trunk that splits into two branches,
each of which splits again, for the given number of levels.`,
		Args: cobra.ExactArgs(0),
		RunE: runCmd,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "YAML or JSON config file (default "+config.DefaultPath+" if present)")
	flags.Int("width", 0, "surface width in pixels")
	flags.Int("height", 0, "surface height in pixels")
	flags.Int("max-surface", 0, "largest accepted width or height; 0 or less removes the limit")
	flags.Float64("trunk-height", 0, "length of the trunk")
	flags.Float64("height-factor", 0, "each level of branches is shorter by this factor")
	flags.Int("amount", 0, "number of branching levels")
	flags.Int("max-amount", 0, "largest accepted amount; 0 or less removes the limit")
	flags.Float64("thickness", 0, "line thickness")
	flags.Float64("angle", 0, "branch angle in degrees")
	flags.String("log-level", "", "debug, info, warn, or error")

	cmd.Flags().StringP("out", "o", "", "output file; .png or .jpg, - for PNG on stdout")

	cmd.AddCommand(serveCmd())

	return cmd
}

func runCmd(cmd *cobra.Command, _ []string) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	canvas := render.NewCanvas(cfg.Width, cfg.Height)
	defer canvas.Close()

	store, err := params.NewStore(canvas, cfg.Parameters(),
		params.WithLogger(logger),
		params.WithMaxAmount(cfg.MaxAmount),
		params.WithMaxSurface(cfg.MaxSurface),
	)
	if err != nil {
		return err
	}

	err = store.Redraw()
	if err != nil {
		return err
	}

	err = write(canvas, cfg.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Info("wrote canopy", "path", cfg.Output, "width", cfg.Width, "height", cfg.Height)
	return nil
}

// setup loads the config, applies any flags the user set, and builds the logger.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}

	err = applyFlags(cmd, &cfg)
	if err != nil {
		return cfg, nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}

	logger := logging.New(level)
	if level <= slog.LevelDebug {
		gg.SetLogger(logger)
	}

	return cfg, logger, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Changed(name) {
			err = apply()
		}
	}

	set("width", func() (e error) { cfg.Width, e = flags.GetInt("width"); return })
	set("height", func() (e error) { cfg.Height, e = flags.GetInt("height"); return })
	set("max-surface", func() (e error) { cfg.MaxSurface, e = flags.GetInt("max-surface"); return })
	set("trunk-height", func() (e error) { cfg.TrunkHeight, e = flags.GetFloat64("trunk-height"); return })
	set("height-factor", func() (e error) { cfg.HeightFactor, e = flags.GetFloat64("height-factor"); return })
	set("amount", func() (e error) { cfg.Amount, e = flags.GetInt("amount"); return })
	set("max-amount", func() (e error) { cfg.MaxAmount, e = flags.GetInt("max-amount"); return })
	set("thickness", func() (e error) { cfg.Thickness, e = flags.GetFloat64("thickness"); return })
	set("angle", func() (e error) { cfg.Angle, e = flags.GetFloat64("angle"); return })
	set("log-level", func() (e error) { cfg.LogLevel, e = flags.GetString("log-level"); return })
	set("out", func() (e error) { cfg.Output, e = flags.GetString("out"); return })
	set("addr", func() (e error) { cfg.Addr, e = flags.GetString("addr"); return })

	return err
}

func write(canvas *render.Canvas, path string, stdout io.Writer) error {
	if path == "-" {
		return canvas.EncodePNG(stdout)
	}

	var encode func(io.Writer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = canvas.EncodePNG
	case ".jpg", ".jpeg":
		encode = func(w io.Writer) error { return canvas.EncodeJPEG(w, jpegQuality) }
	default:
		return fmt.Errorf("unsupported output format %q, want .png or .jpg", filepath.Ext(path))
	}

	err := os.MkdirAll(filepath.Dir(path), os.ModePerm)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = encode(f)
	if err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
