/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type CanvasConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Spacing        float64 `yaml:"spacing"`
	Background     string  `yaml:"background"`
	FrameColor     string  `yaml:"frame_color"`
	SelectionColor string  `yaml:"selection_color"`
	FrameWidth     float64 `yaml:"frame_width"`
	CornerRadius   float64 `yaml:"corner_radius"`
	SelectionMode  string  `yaml:"selection_mode"` // "two_phase" | "direct"
}

type AnimationConfig struct {
	FPS int `yaml:"fps"`
}

type CatalogConfig struct {
	Path string `yaml:"path"` // empty: built-in layouts
}

type CacheConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
	Disabled bool   `yaml:"disabled"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Canvas        CanvasConfig    `yaml:"canvas"`
	Animation     AnimationConfig `yaml:"animation"`
	Catalog       CatalogConfig   `yaml:"catalog"`
	Cache         CacheConfig     `yaml:"cache"`
	Logging       LoggingConfig   `yaml:"logging"`
}

const (
	SelectionTwoPhase = "two_phase"
	SelectionDirect   = "direct"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas: CanvasConfig{
			Width:          1280,
			Height:         720,
			Spacing:        0.05,
			Background:     "#FEFEFE",
			FrameColor:     "#0000FE",
			SelectionColor: "#FF8C00",
			FrameWidth:     1,
			CornerRadius:   0,
			SelectionMode:  SelectionTwoPhase,
		},
		Animation: AnimationConfig{FPS: 60},
		Cache:     CacheConfig{MaxBytes: 32 * 1024 * 1024},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath   = "GCL_CONFIG"
	EnvCanvasWidth  = "GCL_CANVAS_WIDTH"
	EnvCanvasHeight = "GCL_CANVAS_HEIGHT"
	EnvSpacing      = "GCL_CANVAS_SPACING"
	EnvBackground   = "GCL_CANVAS_BG"
	EnvFrameColor   = "GCL_CANVAS_FRAME"
	EnvCatalog      = "GCL_CATALOG"
	EnvCacheDir     = "GCL_CACHE_DIR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GCL_LOG_LEVEL"
	EnvLogFormat = "GCL_LOG_FORMAT"
	EnvLogSource = "GCL_LOG_SOURCE"
	EnvLogFile   = "GCL_LOG_FILE"
)

// ConfigPath returns the per-user config file path. GCL_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoCollage")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoCollage")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "gocollage")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// CacheDir returns the directory for disposable data such as the thumbnail cache.
func (c AppConfig) CacheDir() string {
	if d := strings.TrimSpace(c.Cache.Dir); d != "" {
		return d
	}
	if d, err := os.UserCacheDir(); err == nil {
		return filepath.Join(d, "gocollage")
	}
	return filepath.Join(os.TempDir(), "gocollage-cache")
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is reported but the defaults plus env overrides are still returned.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit file path.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	var perr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			perr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, perr
}

// Save writes the user config YAML to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg as YAML to path, creating parent directories.
func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// canvas
	if src.Canvas.Width > 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height > 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if src.Canvas.Spacing > 0 {
		dst.Canvas.Spacing = src.Canvas.Spacing
	}
	if v := strings.TrimSpace(src.Canvas.Background); v != "" {
		dst.Canvas.Background = v
	}
	if v := strings.TrimSpace(src.Canvas.FrameColor); v != "" {
		dst.Canvas.FrameColor = v
	}
	if v := strings.TrimSpace(src.Canvas.SelectionColor); v != "" {
		dst.Canvas.SelectionColor = v
	}
	if src.Canvas.FrameWidth > 0 {
		dst.Canvas.FrameWidth = src.Canvas.FrameWidth
	}
	if src.Canvas.CornerRadius >= 0 {
		dst.Canvas.CornerRadius = src.Canvas.CornerRadius
	}
	switch strings.ToLower(strings.TrimSpace(src.Canvas.SelectionMode)) {
	case SelectionTwoPhase:
		dst.Canvas.SelectionMode = SelectionTwoPhase
	case SelectionDirect:
		dst.Canvas.SelectionMode = SelectionDirect
	}
	if src.Animation.FPS > 0 {
		dst.Animation.FPS = src.Animation.FPS
	}
	if v := strings.TrimSpace(src.Catalog.Path); v != "" {
		dst.Catalog.Path = v
	}
	if v := strings.TrimSpace(src.Cache.Dir); v != "" {
		dst.Cache.Dir = v
	}
	if src.Cache.MaxBytes > 0 {
		dst.Cache.MaxBytes = src.Cache.MaxBytes
	}
	dst.Cache.Disabled = src.Cache.Disabled
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvCanvasWidth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Canvas.Width = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasHeight)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Canvas.Height = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSpacing)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Canvas.Spacing = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackground)); v != "" {
		cfg.Canvas.Background = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFrameColor)); v != "" {
		cfg.Canvas.FrameColor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCatalog)); v != "" {
		cfg.Catalog.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheDir)); v != "" {
		cfg.Cache.Dir = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"canvas.width":       EnvCanvasWidth,
	"canvas.height":      EnvCanvasHeight,
	"canvas.spacing":     EnvSpacing,
	"canvas.background":  EnvBackground,
	"canvas.frame_color": EnvFrameColor,
	"catalog.path":       EnvCatalog,
	"cache.dir":          EnvCacheDir,
	"logging.level":      EnvLogLevel,
	"logging.format":     EnvLogFormat,
	"logging.source":     EnvLogSource,
	"logging.file":       EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
