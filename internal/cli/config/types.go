// Package config provides configuration management for the leapgraph CLI.
package config

// ServerConfig holds configuration for the HTTP query server.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string        `koanf:"state_path"`
	DumpDir      string        `koanf:"dump_dir"`
	DumpFormat   string        `koanf:"dump_format"`
	DefaultGraph string        `koanf:"default_graph"`
	OutputFormat string        `koanf:"output"`
	Verbose      bool          `koanf:"verbose"`
	LogFormat    string        `koanf:"log_format"`
	MaxVertices  int           `koanf:"max_vertices"`
	WatchDir     string        `koanf:"watch_dir"`
	Server       *ServerConfig `koanf:"server"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultStateFile  = ".leapgraph/state.db"
	DefaultDumpDir    = ".leapgraph/dumps"
	DefaultDumpFormat = "graphml"
	DefaultGraph      = "MAIN"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=json
	DefaultLogFormat  = "text"
	DefaultServerAddr = ":8080"
)

// GetServerConfig returns the server config with defaults applied for any unset values.
func (c *Config) GetServerConfig() *ServerConfig {
	if c.Server == nil {
		return &ServerConfig{Addr: DefaultServerAddr}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	return c.Server
}
