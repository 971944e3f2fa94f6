package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind       string
	camera     int
	debug      bool
	fullscreen bool
	height     int
	mute       bool
	port       int
	tuning     string
	verbose    bool
	version    bool
	volume     float64
	width      int
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.camera < -1 {
		return fmt.Errorf("invalid camera index (use -1 to disable): %d", c.camera)
	}
	if c.width < 320 || c.height < 240 {
		return fmt.Errorf("invalid window size (must be at least 320x240): %dx%d", c.width, c.height)
	}
	if c.volume < 0 || c.volume > 1 {
		return errors.New("invalid volume (must be between 0 and 1 inclusive)")
	}
	return nil
}

// loadDotEnv exports the MUNCH_* settings in path, if it exists. Variables already in
// the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MUNCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "munch",
		Short:         "Eat the falling food with your mouth. Every bite makes you fatter.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address the detector bridge binds to (env: MUNCH_BIND)")
	fs.IntVarP(&cfg.camera, "camera", "c", -1, "local camera index for the video backdrop, -1 to use detector frames (env: MUNCH_CAMERA)")
	fs.BoolVar(&cfg.debug, "debug", false, "show the debug windows (env: MUNCH_DEBUG)")
	fs.BoolVarP(&cfg.fullscreen, "fullscreen", "f", false, "start in fullscreen (env: MUNCH_FULLSCREEN)")
	fs.IntVar(&cfg.height, "height", 720, "window height (env: MUNCH_HEIGHT)")
	fs.BoolVarP(&cfg.mute, "mute", "m", false, "start with sound muted (env: MUNCH_MUTE)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port the detector bridge listens on (env: MUNCH_PORT)")
	fs.StringVarP(&cfg.tuning, "tuning", "t", "", "path to a YAML file overriding gameplay tuning (env: MUNCH_TUNING)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: MUNCH_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: MUNCH_VERSION)")
	fs.Float64Var(&cfg.volume, "volume", 0.6, "sound effect volume between 0 and 1 (env: MUNCH_VOLUME)")
	fs.IntVar(&cfg.width, "width", 1280, "window width (env: MUNCH_WIDTH)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("munch v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
