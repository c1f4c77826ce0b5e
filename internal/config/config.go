package config

import "time"

// Path is the location of the YAML config file, provided by main.
type Path string

type Config struct {
	Server   Server   `yaml:"server"`
	API      API      `yaml:"api"`
	Feedback Feedback `yaml:"feedback"`
	Session  Session  `yaml:"session"`
	Redis    Redis    `yaml:"redis"`
	CSRF     CSRF     `yaml:"csrf"`
	Teacher  Teacher  `yaml:"teacher"`
	Log      Log      `yaml:"log"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

// API is the external service every /api/... call goes to.
type API struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Feedback struct {
	RelayURL string `yaml:"relay_url"`
}

type Session struct {
	Lifetime   time.Duration `yaml:"lifetime"`
	CookieName string        `yaml:"cookie_name"`
	Secure     bool          `yaml:"secure"`
	// Store is either "memory" or "redis".
	Store string `yaml:"store"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CSRF struct {
	Enabled        bool     `yaml:"enabled"`
	Key            string   `yaml:"key"`
	TrustedOrigins []string `yaml:"trusted_origins"`
}

type Teacher struct {
	MaxUploadBytes  int64 `yaml:"max_upload_bytes"`
	// MaxPreviewBytes caps the uploaded bytes kept for playback across all
	// visitors.
	MaxPreviewBytes int64 `yaml:"max_preview_bytes"`
}

type Log struct {
	Production bool `yaml:"production"`
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

func Default() *Config {
	return &Config{
		Server: Server{
			Addr: "localhost:8123",
		},
		API: API{
			URL:     "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		Session: Session{
			Lifetime:   24 * time.Hour,
			CookieName: "growtech_session",
			Store:      StoreMemory,
		},
		Redis: Redis{
			Addr: "127.0.0.1:6379",
		},
		Teacher: Teacher{
			MaxUploadBytes:  64 << 20,
			MaxPreviewBytes: 512 << 20,
		},
	}
}

// New reads the config file at path (if any) over the defaults and then
// applies environment overrides.
func New(path Path) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(string(path)); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
