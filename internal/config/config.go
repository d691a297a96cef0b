package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Credential store backends
const (
	StoreConfig  = "config"
	StoreKeyring = "keyring"
)

// Config holds application configuration
type Config struct {
	// YouTube Data API key. Empty when the key lives in the keyring.
	APIKey string

	// Where the API key is kept: "config" or "keyring"
	CredentialStore string

	// Number of search results requested
	// Default: 5
	MaxResults int

	// How long cached search results stay valid
	// Default: 5h
	CacheTTL time.Duration

	// Output format template for the status command
	// Default: "{{.Name}} [{{.Elapsed}}/{{.Total}}]"
	OutputFormat string

	// Fixed output width (0 = disabled)
	OutputWidth int

	// Marquee scrolling for the status command
	MarqueeEnabled   bool
	MarqueeSpeed     int
	MarqueeSeparator string

	// Path to the fzf executable
	PickerPath string

	MPV     MPVConfig
	Control ControlConfig
	TUI     TUIConfig
}

// MPVConfig holds player process and control socket settings
type MPVConfig struct {
	Path        string
	Socket      string
	PIDFile     string
	ExtraArgs   []string
	SettleDelay time.Duration
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// ControlConfig tunes how playlist transitions are confirmed
type ControlConfig struct {
	ConfirmAttempts int
	ConfirmDelay    time.Duration
}

// TUIConfig holds terminal UI settings
type TUIConfig struct {
	RefreshRate time.Duration
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables, YTM_MPV_SOCKET for mpv.socket
	v.SetEnvPrefix("YTM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		APIKey:           v.GetString("api_key"),
		CredentialStore:  v.GetString("credential_store"),
		MaxResults:       v.GetInt("max_results"),
		CacheTTL:         v.GetDuration("cache_ttl"),
		OutputFormat:     v.GetString("output_format"),
		OutputWidth:      v.GetInt("output_width"),
		MarqueeEnabled:   v.GetBool("marquee_enabled"),
		MarqueeSpeed:     v.GetInt("marquee_speed"),
		MarqueeSeparator: v.GetString("marquee_separator"),
		PickerPath:       v.GetString("picker_path"),
		MPV: MPVConfig{
			Path:        v.GetString("mpv.path"),
			Socket:      v.GetString("mpv.socket"),
			PIDFile:     v.GetString("mpv.pid_file"),
			ExtraArgs:   v.GetStringSlice("mpv.extra_args"),
			SettleDelay: v.GetDuration("mpv.settle_delay"),
			DialTimeout: v.GetDuration("mpv.dial_timeout"),
			ReadTimeout: v.GetDuration("mpv.read_timeout"),
		},
		Control: ControlConfig{
			ConfirmAttempts: v.GetInt("control.confirm_attempts"),
			ConfirmDelay:    v.GetDuration("control.confirm_delay"),
		},
		TUI: TUIConfig{
			RefreshRate: v.GetDuration("tui.refresh_rate"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	tmp := os.TempDir()

	v.SetDefault("credential_store", StoreConfig)
	v.SetDefault("max_results", 5)
	v.SetDefault("cache_ttl", "5h")
	v.SetDefault("output_format", "{{.Name}} [{{.Elapsed}}/{{.Total}}]")
	v.SetDefault("output_width", 0)
	v.SetDefault("marquee_enabled", false)
	v.SetDefault("marquee_speed", 2)
	v.SetDefault("marquee_separator", " • ")
	v.SetDefault("picker_path", "fzf")
	v.SetDefault("mpv.path", "mpv")
	v.SetDefault("mpv.socket", filepath.Join(tmp, "ytm-mpv.sock"))
	v.SetDefault("mpv.pid_file", filepath.Join(tmp, "ytm-mpv.pid"))
	v.SetDefault("mpv.extra_args", []string{})
	v.SetDefault("mpv.settle_delay", "800ms")
	v.SetDefault("mpv.dial_timeout", "2s")
	v.SetDefault("mpv.read_timeout", "2s")
	v.SetDefault("control.confirm_attempts", 10)
	v.SetDefault("control.confirm_delay", "100ms")
	v.SetDefault("tui.refresh_rate", "500ms")
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "ytm")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// GetDataDir returns the directory holding play history
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "ytm")
}

// GetCacheDir returns the directory holding cached search results
func GetCacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(GetDataDir(), "cache")
	}
	return filepath.Join(cacheDir, "ytm")
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	// Set config file path
	configDir := getConfigDir()
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("api_key", c.APIKey)
	v.Set("credential_store", c.CredentialStore)
	v.Set("max_results", c.MaxResults)
	v.Set("cache_ttl", c.CacheTTL.String())
	v.Set("output_format", c.OutputFormat)
	v.Set("output_width", c.OutputWidth)
	v.Set("marquee_enabled", c.MarqueeEnabled)
	v.Set("marquee_speed", c.MarqueeSpeed)
	v.Set("marquee_separator", c.MarqueeSeparator)
	v.Set("picker_path", c.PickerPath)
	v.Set("mpv.path", c.MPV.Path)
	v.Set("mpv.socket", c.MPV.Socket)
	v.Set("mpv.pid_file", c.MPV.PIDFile)
	v.Set("mpv.extra_args", c.MPV.ExtraArgs)
	v.Set("mpv.settle_delay", c.MPV.SettleDelay.String())
	v.Set("mpv.dial_timeout", c.MPV.DialTimeout.String())
	v.Set("mpv.read_timeout", c.MPV.ReadTimeout.String())
	v.Set("control.confirm_attempts", c.Control.ConfirmAttempts)
	v.Set("control.confirm_delay", c.Control.ConfirmDelay.String())
	v.Set("tui.refresh_rate", c.TUI.RefreshRate.String())

	// Write to file
	return v.WriteConfigAs(configFile)
}
