// Copyright 2025 The ribatlas authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config describes the configuration of the ribatlas service.
package config

import (
	"io"

	"github.com/ribatlas/ribatlas/atlas/fetch"
	"github.com/ribatlas/ribatlas/pkg/log"
	"github.com/ribatlas/ribatlas/pkg/private/serrors"
	"github.com/ribatlas/ribatlas/private/config"
)

// Config is the ribatlas service configuration.
type Config struct {
	Logging   log.Config `toml:"log,omitempty"`
	Metrics   Metrics    `toml:"metrics,omitempty"`
	Fetch     Fetch      `toml:"fetch,omitempty"`
	Output    Output     `toml:"output,omitempty"`
	Synthesis Synthesis  `toml:"synthesis,omitempty"`
}

// InitDefaults initializes the default values for all sub-configs.
func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.Fetch,
		&cfg.Output,
		&cfg.Synthesis,
	)
}

// Validate validates all sub-configs.
func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.Fetch,
		&cfg.Output,
		&cfg.Synthesis,
	)
}

// Sample writes a sample configuration to dst.
func (cfg *Config) Sample(dst io.Writer, path config.Path) {
	config.WriteSample(dst, path,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.Fetch,
		&cfg.Output,
		&cfg.Synthesis,
	)
}

// Metrics configures the Prometheus exporter.
type Metrics struct {
	config.NoDefaulter
	config.NoValidator
	// Addr is the address the metrics HTTP server listens on. An empty
	// value disables the exporter.
	Addr string `toml:"prometheus,omitempty"`
}

func (cfg *Metrics) Sample(dst io.Writer, _ config.Path) {
	config.WriteString(dst, metricsSample)
}

func (cfg *Metrics) ConfigName() string {
	return "metrics"
}

// Fetch configures where RIB dumps are downloaded from and to.
type Fetch struct {
	config.NoValidator
	// BaseURL is the root of the archive holding the RIB dumps.
	BaseURL string `toml:"base_url,omitempty"`
	// CacheDir is the directory downloaded dumps are stored in.
	CacheDir string `toml:"cache_dir,omitempty"`
}

func (cfg *Fetch) InitDefaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = fetch.DefaultBaseURL
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = "."
	}
}

func (cfg *Fetch) Sample(dst io.Writer, _ config.Path) {
	config.WriteString(dst, fetchSample)
}

func (cfg *Fetch) ConfigName() string {
	return "fetch"
}

// Output configures the artifacts the pipeline writes.
type Output struct {
	// Dir is the directory the artifacts are written to.
	Dir string `toml:"dir,omitempty"`
	// Compress enables writing the zstd-compressed artifact variants.
	Compress bool `toml:"compress,omitempty"`
	// CompressionLevel is the zstd level used for compressed artifacts.
	CompressionLevel int `toml:"compression_level,omitempty"`
}

func (cfg *Output) InitDefaults() {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.CompressionLevel == 0 {
		cfg.CompressionLevel = 8
	}
}

func (cfg *Output) Validate() error {
	if cfg.CompressionLevel < 1 || cfg.CompressionLevel > 22 {
		return serrors.New("compression level out of range",
			"level", cfg.CompressionLevel)
	}
	return nil
}

func (cfg *Output) Sample(dst io.Writer, _ config.Path) {
	config.WriteString(dst, outputSample)
}

func (cfg *Output) ConfigName() string {
	return "output"
}

// Synthesis configures the regex synthesis stage.
type Synthesis struct {
	// Workers bounds the number of ASNs processed concurrently. Zero
	// means one worker per available CPU.
	Workers int `toml:"workers,omitempty"`
}

func (cfg *Synthesis) InitDefaults() {}

func (cfg *Synthesis) Validate() error {
	if cfg.Workers < 0 {
		return serrors.New("negative worker count", "workers", cfg.Workers)
	}
	return nil
}

func (cfg *Synthesis) Sample(dst io.Writer, _ config.Path) {
	config.WriteString(dst, synthesisSample)
}

func (cfg *Synthesis) ConfigName() string {
	return "synthesis"
}
