package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/vango-dev/routekit/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "routekit.toml"

	// DefaultPort is the default port of the generated backend in dev mode.
	DefaultPort = 8000

	// DefaultReloadPort is the default port of the browser reload server.
	DefaultReloadPort = 35729

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "build"

	// DefaultDebounce is the default watcher poll interval.
	DefaultDebounce = 100 * time.Millisecond
)

// Config represents the complete routekit.toml configuration.
type Config struct {
	// Name is the project name. It becomes the blueprint name of the
	// generated module.
	Name string `toml:"name,omitempty"`

	// Paths contains the locations of the source tree.
	Paths PathsConfig `toml:"paths"`

	// Build contains build output configuration.
	Build BuildConfig `toml:"build"`

	// Dev contains dev loop configuration.
	Dev DevConfig `toml:"dev"`

	// Publish contains static asset publishing configuration.
	Publish PublishConfig `toml:"publish"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains path configuration for project directories.
type PathsConfig struct {
	// Src is the source directory.
	Src string `toml:"src,omitempty"`

	// Routes is the routes root.
	Routes string `toml:"routes,omitempty"`

	// RootTemplate is the root document every layout inherits from.
	RootTemplate string `toml:"root_template,omitempty"`

	// Static is the directory of static assets copied into the build.
	Static string `toml:"static,omitempty"`
}

// BuildConfig contains build settings.
type BuildConfig struct {
	// Output is the output directory for builds.
	Output string `toml:"output,omitempty"`

	// Incremental makes `routekit run` keep the output tree between passes.
	Incremental bool `toml:"incremental,omitempty"`
}

// DevConfig contains dev loop settings.
type DevConfig struct {
	// Host is the host the backend binds to.
	Host string `toml:"host,omitempty"`

	// Port is the backend port.
	Port int `toml:"port,omitempty"`

	// ReloadPort is the port of the reload and metrics listener.
	ReloadPort int `toml:"reload_port,omitempty"`

	// Watch contains paths to watch for changes.
	Watch []string `toml:"watch,omitempty"`

	// Ignore contains glob patterns to skip while watching.
	Ignore []string `toml:"ignore,omitempty"`

	// Debounce is the watcher poll interval (e.g. "100ms").
	Debounce string `toml:"debounce,omitempty"`
}

// PublishConfig describes the S3 destination for static assets.
type PublishConfig struct {
	Bucket    string `toml:"bucket,omitempty"`
	Prefix    string `toml:"prefix,omitempty"`
	Region    string `toml:"region,omitempty"`
	Endpoint  string `toml:"endpoint,omitempty"`
	PathStyle bool   `toml:"path_style,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for routekit.toml in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No routekit.toml found in " + filepath.Dir(path)).
				WithSuggestion("Run 'routekit new' to create a new project or create routekit.toml manually")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		e := errors.New("E120").
			WithDetail("Failed to parse routekit.toml: " + err.Error()).
			WithSuggestion("Check that routekit.toml is valid TOML")
		var de *toml.DecodeError
		if stderrors.As(err, &de) {
			row, col := de.Position()
			e.WithLocation(path, row, col)
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "app"
	}

	// Paths
	if c.Paths.Src == "" {
		c.Paths.Src = "src"
	}
	if c.Paths.Routes == "" {
		c.Paths.Routes = filepath.Join(c.Paths.Src, "routes")
	}
	if c.Paths.RootTemplate == "" {
		c.Paths.RootTemplate = filepath.Join(c.Paths.Src, "index.html")
	}
	if c.Paths.Static == "" {
		c.Paths.Static = "static"
	}

	// Build
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}

	// Dev
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.ReloadPort == 0 {
		c.Dev.ReloadPort = DefaultReloadPort
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{c.Paths.Src, c.Paths.Static}
	}
	if c.Dev.Debounce == "" {
		c.Dev.Debounce = DefaultDebounce.String()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	for _, p := range []struct {
		name string
		port int
	}{{"dev.port", c.Dev.Port}, {"dev.reload_port", c.Dev.ReloadPort}} {
		if p.port < 0 || p.port > 65535 {
			return errors.New("E122").
				WithDetailf("%s must be between 0 and 65535, got %d", p.name, p.port)
		}
	}
	if c.Dev.Port != 0 && c.Dev.Port == c.Dev.ReloadPort {
		return errors.New("E122").
			WithDetail("dev.port and dev.reload_port must differ")
	}
	if _, err := time.ParseDuration(c.Dev.Debounce); err != nil {
		return errors.New("E120").
			WithDetail(fmt.Sprintf("dev.debounce %q is not a duration", c.Dev.Debounce))
	}
	return nil
}

// DebounceInterval returns the parsed watcher interval, falling back to
// DefaultDebounce when the configured value is unusable.
func (c *Config) DebounceInterval() time.Duration {
	d, err := time.ParseDuration(c.Dev.Debounce)
	if err != nil || d <= 0 {
		return DefaultDebounce
	}
	return d
}

// DevAddress returns the address the backend listens on.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL of the backend.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// ReloadAddress returns the address of the reload server.
func (c *Config) ReloadAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.ReloadPort)
}

// ReloadURL returns the websocket URL the backend injects into pages.
func (c *Config) ReloadURL() string {
	return "ws://" + c.ReloadAddress() + "/_routekit/reload"
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// OutputPath returns the absolute path to the build output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Build.Output)
}

// SrcPath returns the absolute path to the source directory.
func (c *Config) SrcPath() string {
	return c.resolve(c.Paths.Src)
}

// RoutesPath returns the absolute path to the routes directory.
func (c *Config) RoutesPath() string {
	return c.resolve(c.Paths.Routes)
}

// RootTemplatePath returns the absolute path to the root template.
func (c *Config) RootTemplatePath() string {
	return c.resolve(c.Paths.RootTemplate)
}

// StaticPath returns the absolute path to the static directory.
func (c *Config) StaticPath() string {
	return c.resolve(c.Paths.Static)
}

// WatchPaths returns the absolute paths the dev watcher polls.
func (c *Config) WatchPaths() []string {
	paths := make([]string, 0, len(c.Dev.Watch))
	for _, p := range c.Dev.Watch {
		paths = append(paths, c.resolve(p))
	}
	return paths
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing routekit.toml, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No routekit.toml found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'routekit new' to create a new project")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
