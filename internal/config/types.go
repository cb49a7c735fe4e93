package config

// Config is the top-level ecoform configuration, corresponding to .ecoform.yml.
type Config struct {
	BackendURL    string        `yaml:"backend_url" koanf:"backend_url"`
	DataDir       string        `yaml:"data_dir" koanf:"data_dir"`
	Session       string        `yaml:"session" koanf:"session"`
	ReloadDelayMS int           `yaml:"reload_delay_ms" koanf:"reload_delay_ms"`
	MaxDraws      int           `yaml:"max_draws" koanf:"max_draws"`
	Compute       ComputeConfig `yaml:"compute" koanf:"compute"`
	Server        ServerConfig  `yaml:"server" koanf:"server"`
	Images        ImagesConfig  `yaml:"images" koanf:"images"`
}

// ComputeConfig holds settings for the simulation backend client.
type ComputeConfig struct {
	// TimeoutSeconds bounds each request; 0 waits indefinitely.
	TimeoutSeconds int `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	// SessionIdleMinutes is how long a browser session's form stays in
	// memory without requests. Stored values are kept regardless.
	SessionIdleMinutes int `yaml:"session_idle_minutes" koanf:"session_idle_minutes"`
}

// ImagesConfig locates the rendered result images.
type ImagesConfig struct {
	Dir     string `yaml:"dir" koanf:"dir"`
	BaseURL string `yaml:"base_url" koanf:"base_url"`
}
