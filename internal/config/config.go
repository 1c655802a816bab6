// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads configuration from config.yaml and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the listing-prep service.
type Config struct {
	// Postgres
	DatabaseURL string

	// Redis
	RedisURL   string
	TasksQueue string

	// External APIs
	GeminiAPIKey string
	MapsAPIKey   string

	// Object storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Browser automation
	ScreenshotDir string

	// Server
	Port int
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		URL    string `yaml:"url"`
		Queues struct {
			Tasks string `yaml:"tasks"`
		} `yaml:"queues"`
	} `yaml:"redis"`
	AI struct {
		GeminiAPIKey string `yaml:"gemini_api_key"`
		MapsAPIKey   string `yaml:"maps_api_key"`
	} `yaml:"ai"`
	Minio struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"minio"`
	Automation struct {
		ScreenshotDir string `yaml:"screenshot_dir"`
	} `yaml:"automation"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// environment variables for non-YAML settings. A missing config file is
// fine for local dev; everything falls back to the environment. An optional
// .env is loaded first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var raw rawConfig
	configPath := envOrDefault("CONFIG_PATH", "config.yaml")
	if data, err := os.ReadFile(configPath); err == nil {
		// Expand ${VAR} references in the YAML
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config YAML: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	cfg := &Config{
		DatabaseURL: firstNonEmpty(raw.Database.URL,
			envOrDefault("DATABASE_URL", "postgres://localhost:5432/listingprep")),
		RedisURL: firstNonEmpty(raw.Redis.URL,
			envOrDefault("REDIS_URL", "redis://localhost:6379/0")),
		TasksQueue: firstNonEmpty(raw.Redis.Queues.Tasks,
			envOrDefault("TASKS_QUEUE", "listing_tasks")),

		GeminiAPIKey: firstNonEmpty(raw.AI.GeminiAPIKey, os.Getenv("GEMINI_API_KEY")),
		MapsAPIKey:   firstNonEmpty(raw.AI.MapsAPIKey, os.Getenv("MAPS_API_KEY")),

		MinioEndpoint: firstNonEmpty(raw.Minio.Endpoint,
			envOrDefault("MINIO_ENDPOINT", "localhost:9000")),
		MinioAccessKey: firstNonEmpty(raw.Minio.AccessKey, os.Getenv("MINIO_ACCESS_KEY")),
		MinioSecretKey: firstNonEmpty(raw.Minio.SecretKey, os.Getenv("MINIO_SECRET_KEY")),
		MinioBucket: firstNonEmpty(raw.Minio.Bucket,
			envOrDefault("MINIO_BUCKET", "listingprep")),
		MinioUseSSL: raw.Minio.UseSSL || envOrDefaultBool("MINIO_USE_SSL", false),

		ScreenshotDir: firstNonEmpty(raw.Automation.ScreenshotDir,
			envOrDefault("SCREENSHOT_DIR", "storage/automation_screenshots")),

		Port: envOrDefaultInt("PORT", 8080),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required — check config.yaml and environment variables")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
