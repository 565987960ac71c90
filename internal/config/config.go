package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ScanConfig holds project-level scan settings loaded from
// codescope.yml.
type ScanConfig struct {
	ExcludeDirs  []string `yaml:"excludeDirs,omitempty"`
	UseGitignore bool     `yaml:"useGitignore,omitempty"`
	CacheSize    int      `yaml:"cacheSize,omitempty"`
	Verbose      bool     `yaml:"verbose,omitempty"`
}

// Load attempts to read codescope.yml or codescope.yaml from the given
// directory, then applies CODESCOPE_* environment overrides. Returns a
// zero-value config (not an error) if no config file exists. A .env
// file in the directory is loaded first so overrides work without an
// exported shell environment.
func Load(dir string) (*ScanConfig, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg := &ScanConfig{}
	for _, name := range []string{"codescope.yml", "codescope.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		break
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv layers CODESCOPE_* variables over the file config. Unset or
// malformed values leave the file value in place.
func applyEnv(cfg *ScanConfig) {
	if v := os.Getenv("CODESCOPE_EXCLUDE_DIRS"); v != "" {
		var dirs []string
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				dirs = append(dirs, d)
			}
		}
		cfg.ExcludeDirs = dirs
	}
	if v := os.Getenv("CODESCOPE_USE_GITIGNORE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseGitignore = b
		}
	}
	if v := os.Getenv("CODESCOPE_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheSize = n
		}
	}
	if v := os.Getenv("CODESCOPE_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verbose = b
		}
	}
}
