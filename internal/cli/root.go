// Package cli implements the weatherctl command line client.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/i474232898/weather-coordinator/internal/app"
	"github.com/i474232898/weather-coordinator/internal/config"
	"github.com/i474232898/weather-coordinator/internal/coordinator"
	"github.com/i474232898/weather-coordinator/internal/weather"
)

// Factory builds the coordinator used by one command run. The returned func
// releases its resources.
type Factory func(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*coordinator.Coordinator, func() error, error)

func appFactory(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*coordinator.Coordinator, func() error, error) {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a.Coordinator, a.Close, nil
}

type cli struct {
	v       *viper.Viper
	build   Factory
	cfgFile string
	units   string
	asJSON  bool
	home    string

	coord   *coordinator.Coordinator
	release func() error
}

// Execute runs weatherctl. This is called by main.main().
func Execute() {
	if err := NewRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. A nil factory wires the real app.
func NewRootCmd(build Factory) *cobra.Command {
	if build == nil {
		build = appFactory
	}
	c := &cli{v: viper.New(), build: build}

	rootCmd := &cobra.Command{
		Use:   "weatherctl",
		Short: "Current weather and a 5-day forecast from OpenWeatherMap",
		Long: `Shows the weather for your configured position, or for London when no
position is available, and manages favorite cities and the unit system.`,
		SilenceUsage:       true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
		RunE:               c.runCurrent,
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.weatherctl.yaml)")
	rootCmd.PersistentFlags().StringVarP(&c.units, "units", "u", "", "unit system for this run: metric or imperial")
	rootCmd.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print the raw state as JSON")

	rootCmd.AddCommand(
		c.currentCmd(),
		c.cityCmd(),
		c.searchCmd(),
		c.favoritesCmd(),
		c.unitCmd(),
		c.iconCmd(),
	)
	return rootCmd
}

// initConfig reads in config file and ENV variables if set.
func (c *cli) initConfig(cmd *cobra.Command) error {
	home, homeErr := os.UserHomeDir()
	if homeErr == nil {
		c.home = home
	}

	if c.cfgFile != "" {
		// Use config file from the flag.
		c.v.SetConfigFile(c.cfgFile)
	} else {
		if homeErr != nil {
			return homeErr
		}

		// Search config in home directory with name ".weatherctl" (without extension).
		c.v.AddConfigPath(home)
		c.v.SetConfigType("yaml")
		c.v.SetConfigName(".weatherctl")
	}

	c.v.SetEnvPrefix("WEATHERCTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := c.v.ReadInConfig(); err == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", c.v.ConfigFileUsed())
	} else if c.cfgFile != "" {
		return fmt.Errorf("read config %s: %w", c.cfgFile, err)
	}
	return nil
}

// overlay applies viper settings on top of the environment configuration.
func (c *cli) overlay(cfg *config.AppConfig) {
	setString := func(key string, dst *string) {
		if s := c.v.GetString(key); s != "" {
			*dst = s
		}
	}
	setString("api_key", &cfg.OpenWeatherAPIKey)
	setString("base_url", &cfg.OpenWeatherBaseURL)
	setString("geo_url", &cfg.OpenWeatherGeoURL)
	setString("default_city", &cfg.DefaultCity)
	setString("forecast_timezone", &cfg.ForecastTimezone)
	setString("geocoder", &cfg.Geocoder)
	setString("store.driver", &cfg.StoreDriver)
	setString("store.sqlite_path", &cfg.StoreSQLitePath)
	setString("redis.addr", &cfg.RedisAddr)
	setString("redis.password", &cfg.RedisPassword)
	setString("log.level", &cfg.LogLevel)

	if c.v.IsSet("redis.db") {
		cfg.RedisDB = c.v.GetInt("redis.db")
	}
	if c.v.IsSet("location.lat") && c.v.IsSet("location.lon") {
		cfg.Location.Latitude = c.v.GetFloat64("location.lat")
		cfg.Location.Longitude = c.v.GetFloat64("location.lon")
		cfg.Location.Set = true
		cfg.Location.Enabled = true
	}
	if c.v.IsSet("location.enabled") {
		cfg.Location.Enabled = c.v.GetBool("location.enabled")
	}
	if d := c.v.GetDuration("http_timeout"); d > 0 {
		cfg.HTTPTimeout = d
	}
}

// applyStoreDefaults keeps preferences in a database under $HOME unless the
// environment or the config file names a store.
func (c *cli) applyStoreDefaults(cfg *config.AppConfig) {
	if c.home == "" {
		return
	}
	if !c.v.IsSet("store.driver") && os.Getenv("STORE_DRIVER") == "" {
		cfg.StoreDriver = config.StoreSQLite
	}
	if !c.v.IsSet("store.sqlite_path") && os.Getenv("STORE_SQLITE_PATH") == "" {
		cfg.StoreSQLitePath = filepath.Join(c.home, ".weatherctl", "weather.db")
	}
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := c.initConfig(cmd); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// The CLI is quiet unless asked otherwise.
	cfg.LogLevel = "warn"
	cfg.LogFormat = "console"
	c.overlay(cfg)
	c.applyStoreDefaults(cfg)

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	coord, release, err := c.build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	c.coord, c.release = coord, release

	<-coord.Start(ctx)

	if c.units != "" {
		unit, err := weather.ParseUnit(c.units)
		if err != nil {
			return err
		}
		coord.Dispatch(coordinator.SetUnit{Unit: unit})
	}
	return nil
}

func (c *cli) teardown(*cobra.Command, []string) error {
	if c.release == nil {
		return nil
	}
	return c.release()
}
