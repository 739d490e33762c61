package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/livecoll/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "livecoll.json"

	// DefaultPort is the default stream server port.
	DefaultPort = 7070

	// DefaultHost is the default stream server host.
	DefaultHost = "localhost"

	// DefaultSendQueue is the default per-client send queue length.
	DefaultSendQueue = 256

	// DefaultHistorySize is the default number of events kept per
	// collection for resuming clients.
	DefaultHistorySize = 1024

	// DefaultMetricsPath is the default path of the Prometheus endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "livecoll"
)

// Collection kinds.
const (
	KindList    = "list"    // Leaf list
	KindMap     = "map"     // Leaf map
	KindMapList = "mapList" // List mapped through a transform
	KindFilter  = "filter"  // List filtered by a predicate
	KindMapMap  = "mapMap"  // Map with values mapped through a transform
	KindJoin    = "join"    // Union of maps, earlier sources win
	KindApply   = "apply"   // Map running an applier on every entry
	KindSorted  = "sorted"  // List of a map's values ordered by a comparator
)

var listKinds = map[string]bool{KindList: true, KindMapList: true, KindFilter: true, KindSorted: true}
var mapKinds = map[string]bool{KindMap: true, KindMapMap: true, KindJoin: true, KindApply: true}

// IsListKind reports whether collections of kind are lists.
func IsListKind(kind string) bool { return listKinds[kind] }

// IsMapKind reports whether collections of kind are maps.
func IsMapKind(kind string) bool { return mapKinds[kind] }

// Config represents the complete livecoll.json configuration.
type Config struct {
	// Name is the pipeline name.
	Name string `json:"name,omitempty"`

	// Collections declares the live collections in dependency order.
	Collections []CollectionConfig `json:"collections"`

	// Server contains stream server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
	// raw is the file content, kept to locate validation errors.
	raw []byte
}

// CollectionConfig declares one collection.
type CollectionConfig struct {
	Name string `json:"name"`
	Kind string `json:"kind"`

	// Source is the input of single-source kinds.
	Source string `json:"source,omitempty"`

	// Sources are the inputs of a join, in precedence order.
	Sources []string `json:"sources,omitempty"`

	// Transform names the mapper of mapList and mapMap.
	Transform string `json:"transform,omitempty"`

	// Predicate names the filter of a filter collection. Empty keeps
	// every element.
	Predicate string `json:"predicate,omitempty"`

	// Compare names the comparator of a sorted collection.
	Compare string `json:"compare,omitempty"`

	// Apply names the applier of an apply collection.
	Apply string `json:"apply,omitempty"`

	// Items are the initial values of a list.
	Items []any `json:"items,omitempty"`

	// Entries are the initial entries of a map.
	Entries []EntryConfig `json:"entries,omitempty"`
}

// EntryConfig is one initial map entry.
type EntryConfig struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Inputs returns the names of the collections c reads from.
func (c *CollectionConfig) Inputs() []string {
	if c.Kind == KindJoin {
		return c.Sources
	}
	if c.Source != "" {
		return []string{c.Source}
	}
	return nil
}

// ServerConfig contains stream server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int `json:"readBufferSize,omitempty"`
	WriteBufferSize int `json:"writeBufferSize,omitempty"`

	// SendQueue is the number of frames buffered per client. A client
	// whose queue is full is disconnected.
	SendQueue int `json:"sendQueue,omitempty"`

	// HistorySize is the number of recent events kept per collection so
	// reconnecting clients can resume.
	HistorySize int `json:"historySize,omitempty"`

	// AuthSecret enables HS256 bearer tokens for operations when set.
	AuthSecret string `json:"authSecret,omitempty"`

	// AllowedOrigins restricts WebSocket origins. Empty allows same-origin
	// requests only; "*" allows any origin.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g. "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`

	// HeartbeatInterval is the time between pings (e.g. "30s").
	HeartbeatInterval string `json:"heartbeatInterval,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Path      string `json:"path,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values and no collections.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads livecoll.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Create livecoll.json or pass its path with --config")
		}
		return nil, errors.New("E100").Wrap(err)
	}
	return Parse(path, data)
}

// Parse decodes configuration read from path.
func Parse(path string, data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E101").
			WithJSONLocation(path, data, err).
			Wrap(err).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
	}
	cfg.configPath = path
	cfg.raw = data
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
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E113").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E113").Wrap(err)
	}
	c.configPath = path
	c.raw = data
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
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadBufferSize == 0 {
		c.Server.ReadBufferSize = 4096
	}
	if c.Server.WriteBufferSize == 0 {
		c.Server.WriteBufferSize = 4096
	}
	if c.Server.SendQueue == 0 {
		c.Server.SendQueue = DefaultSendQueue
	}
	if c.Server.HistorySize == 0 {
		c.Server.HistorySize = DefaultHistorySize
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Server.HeartbeatInterval == "" {
		c.Server.HeartbeatInterval = "30s"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "github.com/vango-dev/livecoll"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration: collection names are unique, kinds are
// known, every input is declared earlier with a compatible shape, and server
// and log settings are in range. Transform, predicate, comparator and applier
// names are resolved when the pipeline is built.
func (c *Config) Validate() error {
	declared := make(map[string]string, len(c.Collections))
	for _, col := range c.Collections {
		if col.Name == "" {
			return c.locate(errors.New("E112").WithDetail("A collection has no name"), "")
		}
		if _, dup := declared[col.Name]; dup {
			return c.locate(errors.New("E102").WithDetailf("Collection %q is declared twice", col.Name), col.Name)
		}
		if !IsListKind(col.Kind) && !IsMapKind(col.Kind) {
			return c.locate(errors.New("E103").WithDetailf("Collection %q has kind %q", col.Name, col.Kind).
				WithSuggestion("Use one of list, map, mapList, filter, mapMap, join, apply, sorted"), col.Name)
		}
		if err := c.validateInputs(col, declared); err != nil {
			return err
		}
		declared[col.Name] = col.Kind
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E110").WithDetail("Port must be between 0 and 65535")
	}
	if c.Server.SendQueue < 0 || c.Server.HistorySize < 0 {
		return errors.New("E110").WithDetail("sendQueue and historySize must not be negative")
	}
	for name, value := range map[string]string{
		"shutdownTimeout":   c.Server.ShutdownTimeout,
		"heartbeatInterval": c.Server.HeartbeatInterval,
	} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return errors.New("E110").WithDetailf("%s %q is not a positive duration", name, value)
		}
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E110").WithDetailf("metrics path %q must start with /", c.Metrics.Path)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E111").WithDetailf("Log format %q is not text or json", c.Log.Format)
	}
	return nil
}

func (c *Config) validateInputs(col CollectionConfig, declared map[string]string) error {
	switch col.Kind {
	case KindList, KindMap:
		if len(col.Inputs()) > 0 {
			return c.locate(errors.New("E105").WithDetailf("Leaf collection %q cannot have a source", col.Name), col.Name)
		}
		if col.Kind == KindList && len(col.Entries) > 0 || col.Kind == KindMap && len(col.Items) > 0 {
			return c.locate(errors.New("E105").WithDetailf("Collection %q: lists take items, maps take entries", col.Name), col.Name)
		}
		return nil
	case KindJoin:
		if len(col.Sources) == 0 {
			return c.locate(errors.New("E112").WithDetailf("Join %q has no sources", col.Name), col.Name)
		}
	default:
		if col.Source == "" {
			return c.locate(errors.New("E112").WithDetailf("Collection %q has no source", col.Name), col.Name)
		}
	}

	wantList := col.Kind == KindMapList || col.Kind == KindFilter
	for _, input := range col.Inputs() {
		kind, ok := declared[input]
		if !ok {
			return c.locate(errors.New("E104").
				WithDetailf("Collection %q reads from %q, which is not declared before it", col.Name, input).
				WithSuggestion("Declare source collections before the collections that use them"), col.Name)
		}
		if wantList != IsListKind(kind) {
			want := "map"
			if wantList {
				want = "list"
			}
			return c.locate(errors.New("E105").
				WithDetailf("Collection %q of kind %s needs a %s source, but %q is a %s", col.Name, col.Kind, want, input, kind), col.Name)
		}
	}

	switch {
	case (col.Kind == KindMapList || col.Kind == KindMapMap) && col.Transform == "":
		return c.locate(errors.New("E112").WithDetailf("Collection %q has no transform", col.Name), col.Name)
	case col.Kind == KindSorted && col.Compare == "":
		return c.locate(errors.New("E112").WithDetailf("Collection %q has no comparator", col.Name), col.Name)
	}
	return nil
}

// locate points err at the declaration of collection name in the config
// file, when the file content is known.
func (c *Config) locate(err *errors.LivecollError, name string) *errors.LivecollError {
	if c.configPath == "" || len(c.raw) == 0 {
		return err
	}
	needle := `"name": "` + name + `"`
	if name == "" {
		needle = `"collections"`
	}
	for i, line := range strings.Split(string(c.raw), "\n") {
		if col := strings.Index(line, needle); col >= 0 {
			return err.WithLocation(c.configPath, i+1, col+1)
		}
	}
	return err
}

// Collection returns the declaration of the named collection.
func (c *Config) Collection(name string) (*CollectionConfig, bool) {
	for i := range c.Collections {
		if c.Collections[i].Name == name {
			return &c.Collections[i], true
		}
	}
	return nil, false
}

// Address returns the host:port address of the stream server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ShutdownTimeoutDuration returns the parsed shutdown timeout.
func (s *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// HeartbeatIntervalDuration returns the parsed heartbeat interval.
func (s *ServerConfig) HeartbeatIntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.HeartbeatInterval)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SlogLevel returns the configured log level.
func (l *LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.New("E111").WithDetailf("Log level %q is not debug, info, warn or error", l.Level)
	}
	return level, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the one holding
// livecoll.json.
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
			return "", errors.New("E100").
				WithDetail("No livecoll.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
