package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	defaultPollInterval   = time.Second
	defaultBootTimeout    = 90 * time.Second
	defaultStopGrace      = 30 * time.Second
	defaultReconcileTicks = 5
	defaultSpicePort      = 5930
	defaultLogLevel       = "info"

	envPrefix = "QUICKTUI"
	appName   = "quicktui"
)

// Config aggregates everything quicktui needs to find, drive and view VMs.
type Config struct {
	// QuickemuDir holds the *.conf files, one per VM.
	QuickemuDir string `mapstructure:"quickemu_dir"`
	// Launcher is the quickemu executable.
	Launcher string `mapstructure:"launcher"`
	// RemoteApp is the preferred viewer (remmina on Linux).
	RemoteApp string `mapstructure:"remote_app"`
	// DefaultSpicePort is used when a running VM exposes no discoverable port. 0 disables the fallback.
	DefaultSpicePort int `mapstructure:"default_spice_port"`
	// OSType selects viewer conventions: linux, macos or windows.
	OSType string `mapstructure:"os_type"`

	PollInterval   time.Duration `mapstructure:"poll_interval"`
	BootTimeout    time.Duration `mapstructure:"boot_timeout"`
	StopGrace      time.Duration `mapstructure:"stop_grace"`
	ReconcileTicks int           `mapstructure:"reconcile_ticks"`

	// RemminaDir is scanned for *.remmina profiles matching a VM id.
	RemminaDir string `mapstructure:"remmina_dir"`
	// Overrides maps a lowercase VM id to an explicit Remmina profile path.
	Overrides map[string]string `mapstructure:"overrides"`

	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the built-in configuration for the current platform.
func Default() Config {
	home, err := homedir.Dir()
	if err != nil {
		home = os.TempDir()
	}
	osType := hostOSType()

	return Config{
		QuickemuDir:      filepath.Join(home, ".quickemu"),
		Launcher:         defaultLauncher(osType),
		RemoteApp:        defaultRemoteApp(osType),
		DefaultSpicePort: defaultSpicePort,
		OSType:           osType,
		PollInterval:     defaultPollInterval,
		BootTimeout:      defaultBootTimeout,
		StopGrace:        defaultStopGrace,
		ReconcileTicks:   defaultReconcileTicks,
		RemminaDir:       filepath.Join(home, ".local", "share", "remmina"),
		Overrides:        map[string]string{},
		LogFile:          filepath.Join(cacheDir(home), appName+".log"),
		LogLevel:         defaultLogLevel,
	}
}

// Load builds a Config from defaults, an optional YAML file and QUICKTUI_* environment variables.
// An empty path searches the user config directory; a missing file there is not an error.
func Load(path string) (Config, error) {
	defaults := Default()
	cfg := defaults

	v := viper.New()
	v.SetDefault("quickemu_dir", defaults.QuickemuDir)
	v.SetDefault("launcher", defaults.Launcher)
	v.SetDefault("remote_app", defaults.RemoteApp)
	v.SetDefault("default_spice_port", defaults.DefaultSpicePort)
	v.SetDefault("os_type", defaults.OSType)
	v.SetDefault("poll_interval", defaults.PollInterval)
	v.SetDefault("boot_timeout", defaults.BootTimeout)
	v.SetDefault("stop_grace", defaults.StopGrace)
	v.SetDefault("reconcile_ticks", defaults.ReconcileTicks)
	v.SetDefault("remmina_dir", defaults.RemminaDir)
	v.SetDefault("overrides", defaults.Overrides)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("log_level", defaults.LogLevel)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("load config %s: %w", describe(path), err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return cfg, err
	}
	cfg.OSType = strings.ToLower(strings.TrimSpace(cfg.OSType))
	cfg.Overrides = lowerKeys(cfg.Overrides)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.QuickemuDir) == "" {
		return errors.New("quickemu_dir must not be empty")
	}
	if strings.TrimSpace(c.Launcher) == "" {
		return errors.New("launcher must not be empty")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be > 0")
	}
	if c.BootTimeout <= 0 {
		return errors.New("boot_timeout must be > 0")
	}
	if c.StopGrace <= 0 {
		return errors.New("stop_grace must be > 0")
	}
	if c.ReconcileTicks <= 0 {
		return errors.New("reconcile_ticks must be > 0")
	}
	if c.DefaultSpicePort < 0 || c.DefaultSpicePort > 65535 {
		return fmt.Errorf("default_spice_port %d out of range", c.DefaultSpicePort)
	}
	switch c.OSType {
	case "linux", "macos", "windows":
	default:
		return fmt.Errorf("os_type %q is not one of linux, macos, windows", c.OSType)
	}
	return nil
}

// Dir returns the directory searched for config.yaml.
func Dir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	home, _ := homedir.Dir()
	return filepath.Join(home, ".config", appName)
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.QuickemuDir, &c.RemminaDir, &c.LogFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	for id, profile := range c.Overrides {
		expanded, err := homedir.Expand(profile)
		if err != nil {
			return fmt.Errorf("expand override for %s: %w", id, err)
		}
		c.Overrides[id] = expanded
	}
	return nil
}

func hostOSType() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "macos"
	default:
		return "linux"
	}
}

func defaultLauncher(osType string) string {
	if osType == "windows" {
		return "quickemu.exe"
	}
	return "quickemu"
}

func defaultRemoteApp(osType string) string {
	switch osType {
	case "windows":
		return "mstsc.exe"
	case "macos":
		return "open"
	default:
		return "remmina"
	}
}

func cacheDir(home string) string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(home, ".cache", appName)
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

func describe(path string) string {
	if path == "" {
		return filepath.Join(Dir(), "config.yaml")
	}
	return path
}
