package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"roombook/api"
	"roombook/booking"
	"roombook/slots"
	"roombook/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

var (
	outputJSON    bool
	outputCompact bool
	assumeYes     bool
	configFile    string
	cfg           Config
	logger        = zap.NewNop()
	client        = api.NewClient()
)

type Config struct {
	BaseURL        string          `mapstructure:"base_url"`
	SessionCookie  string          `mapstructure:"session_cookie"`
	Timeout        time.Duration   `mapstructure:"timeout"`
	RateLimit      float64         `mapstructure:"rate_limit"`
	OpeningHour    int             `mapstructure:"opening_hour"`
	ClosingHour    int             `mapstructure:"closing_hour"`
	Presets        []int           `mapstructure:"presets"`
	DefaultTitle   string          `mapstructure:"default_title"`
	FlashDelay     time.Duration   `mapstructure:"flash_delay"`
	Timezone       string          `mapstructure:"timezone"`
	FavouriteRooms []FavouriteRoom `mapstructure:"favourite_rooms"`
	LogLevel       string          `mapstructure:"log_level"`
	Env            string          `mapstructure:"env"`

	booking.Formats `mapstructure:",squash"`
}

type FavouriteRoom struct {
	ID    int    `mapstructure:"id" json:"id"`
	Alias string `mapstructure:"alias" json:"alias"`
}

var rootCmd = &cobra.Command{
	Use:   "roombook",
	Short: "Book meeting rooms from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputJSON && outputCompact {
			return fmt.Errorf("choose either --json or --compact")
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

func Execute() {
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(bookingsCmd())
	rootCmd.AddCommand(roomsCmd())
	rootCmd.AddCommand(companiesCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(slotsCmd())
	rootCmd.AddCommand(sessionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
	rootCmd.PersistentFlags().BoolVar(&outputCompact, "compact", false, "Output compact text")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to confirmation prompts")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.config/roombook/config.yaml)")
}

func setup() error {
	loaded, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	built, err := newLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = built

	loc, err := cfg.location()
	if err != nil {
		return err
	}
	client.BaseURL = cfg.BaseURL
	client.SessionCookie = cfg.SessionCookie
	client.HTTP = &http.Client{Timeout: cfg.Timeout}
	client.Location = loc
	client.Logger = logger
	if cfg.RateLimit > 0 {
		client.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return nil
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("base_url", "http://localhost:5000")
	v.SetDefault("session_cookie", "")
	v.SetDefault("timeout", "15s")
	v.SetDefault("rate_limit", 5)
	v.SetDefault("opening_hour", slots.DefaultOpeningHour)
	v.SetDefault("closing_hour", slots.DefaultClosingHour)
	v.SetDefault("presets", []int{30, 60, 90, 120})
	v.SetDefault("default_title", booking.DefaultTitle)
	v.SetDefault("flash_delay", "800ms")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")
	v.SetDefault("env", "development")

	def := booking.DefaultFormats()
	v.SetDefault("datetime_layout", def.DateTime)
	v.SetDefault("recurrence_end_layout", def.RecurrenceEnd)
	v.SetDefault("display_layout", def.Display)

	v.SetEnvPrefix("ROOMBOOK")
	v.AutomaticEnv()

	if path == "" {
		var err error
		path, err = storage.ConfigPath()
		if err != nil {
			return nil, err
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return v, nil
}

func loadConfig(path string) (Config, error) {
	v, err := newViper(path)
	if err != nil {
		return Config{}, err
	}
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := conf.validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func (c Config) validate() error {
	if c.OpeningHour < 0 || c.ClosingHour > 24 || c.OpeningHour >= c.ClosingHour {
		return fmt.Errorf("config: opening_hour %d must be before closing_hour %d", c.OpeningHour, c.ClosingHour)
	}
	for _, p := range c.Presets {
		if p <= 0 {
			return fmt.Errorf("config: preset durations must be positive, got %d", p)
		}
	}
	if _, err := c.location(); err != nil {
		return err
	}
	return nil
}

func (c Config) location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func newLogger(env, level string) (*zap.Logger, error) {
	var zc zap.Config
	if env == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("config: log_level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
