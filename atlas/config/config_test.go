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

package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ribatlas/ribatlas/private/config"
)

func TestSampleParses(t *testing.T) {
	var sample bytes.Buffer
	var cfg Config
	cfg.Sample(&sample, nil)

	var parsed Config
	err := config.Decode(sample.Bytes(), &parsed)
	require.NoError(t, err)
	parsed.InitDefaults()
	assert.NoError(t, parsed.Validate())
}

func TestSampleMatchesDefaults(t *testing.T) {
	var sample bytes.Buffer
	var cfg Config
	cfg.Sample(&sample, nil)

	var parsed Config
	require.NoError(t, config.Decode(sample.Bytes(), &parsed))

	var def Config
	def.InitDefaults()
	assert.Equal(t, def.Fetch, parsed.Fetch)
	assert.Equal(t, def.Output, parsed.Output)
	assert.Equal(t, def.Synthesis, parsed.Synthesis)
	assert.Equal(t, def.Metrics, parsed.Metrics)
}

func TestValidate(t *testing.T) {
	testCases := map[string]struct {
		prepare   func(cfg *Config)
		assertErr assert.ErrorAssertionFunc
	}{
		"defaults are valid": {
			prepare:   func(cfg *Config) {},
			assertErr: assert.NoError,
		},
		"compression level too high": {
			prepare: func(cfg *Config) {
				cfg.Output.CompressionLevel = 42
			},
			assertErr: assert.Error,
		},
		"negative workers": {
			prepare: func(cfg *Config) {
				cfg.Synthesis.Workers = -1
			},
			assertErr: assert.Error,
		},
		"bad log level": {
			prepare: func(cfg *Config) {
				cfg.Logging.Level = "whisper"
			},
			assertErr: assert.Error,
		},
		"bad log format": {
			prepare: func(cfg *Config) {
				cfg.Logging.Format = "xml"
			},
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var cfg Config
			cfg.InitDefaults()
			tc.prepare(&cfg)
			tc.assertErr(t, cfg.Validate())
		})
	}
}

func TestUnknownKeyRejected(t *testing.T) {
	var parsed Config
	err := config.Decode([]byte("[output]\nbogus = 1\n"), &parsed)
	assert.Error(t, err)
}
