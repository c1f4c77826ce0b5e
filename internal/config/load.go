package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	errConfigIsDir   = errors.New("config path is a directory")
	errBadAPIURL     = errors.New("api.url must be an absolute http(s) url")
	errBadStore      = errors.New("session.store must be memory or redis")
	errBadCSRFKey    = errors.New("csrf.key must be 32 bytes when csrf is enabled")
	errBadUploadSize = errors.New("teacher.max_upload_bytes must be positive")
	errBadCacheSize  = errors.New("teacher.max_preview_bytes must be at least teacher.max_upload_bytes")
)

func (c *Config) readFile(path string) error {
	filename, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	finfo, err := os.Stat(filename)
	if err != nil {
		return err
	}
	if finfo.IsDir() {
		return errConfigIsDir
	}

	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(yamlFile, c); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}

	return nil
}

func (c *Config) applyEnv() {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	c.Server.Addr = getenv("HTTP_ADDR", c.Server.Addr)
	c.API.URL = getenv("VITE_API_URL", c.API.URL)
	c.API.URL = getenv("API_URL", c.API.URL)
	c.Feedback.RelayURL = getenv("FORM_RELAY_URL", c.Feedback.RelayURL)
	c.Redis.Addr = getenv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getenv("REDIS_PASSWORD", c.Redis.Password)
	c.CSRF.Key = getenv("CSRF_KEY", c.CSRF.Key)
	c.Session.Secure = getenvBool("SESSION_SECURE", c.Session.Secure)
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return errBadAPIURL
	}

	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return errBadStore
	}

	if c.CSRF.Enabled && len(c.CSRF.Key) != 32 {
		return errBadCSRFKey
	}

	if c.Teacher.MaxUploadBytes <= 0 {
		return errBadUploadSize
	}

	if c.Teacher.MaxPreviewBytes < c.Teacher.MaxUploadBytes {
		return errBadCacheSize
	}

	return nil
}

func getenv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
