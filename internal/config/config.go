package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	OpsAddr    string `yaml:"ops_addr"`

	StaticDir string `yaml:"static_dir"`

	RedisURL string `yaml:"redis_url"`

	MessageDir string `yaml:"message_dir"`

	SendBufferSize int `yaml:"send_buffer_size"`
}

// Load reads the optional YAML file named by CONFIG_FILE, then lets
// environment variables override it. Everything has a workable default;
// nothing is required.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:     ":8080",
		SendBufferSize: 64,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil { return nil, fmt.Errorf("read config file: %w", err) }
		if err := yaml.Unmarshal(b, cfg); err != nil { return nil, fmt.Errorf("parse config file: %w", err) }
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("OPS_ADDR")); v != "" {
		cfg.OpsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("STATIC_DIR")); v != "" {
		cfg.StaticDir = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("MESSAGE_DIR")); v != "" {
		cfg.MessageDir = v
	}
	if v := strings.TrimSpace(os.Getenv("SEND_BUFFER_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SendBufferSize = n
		}
	}

	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 64
	}

	return cfg, nil
}
