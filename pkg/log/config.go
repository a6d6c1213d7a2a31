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

package log

import (
	"io"

	"go.uber.org/zap/zapcore"

	"github.com/ribatlas/ribatlas/pkg/private/serrors"
	"github.com/ribatlas/ribatlas/private/config"
)

const configSample = `# Console logging level (debug|info|error) (default info)
level = "info"

# Log format (human|json) (default human)
format = "human"
`

// Validate checks that the config contains reasonable values.
func (c *Config) Validate() error {
	if c.Level != "" {
		if _, err := zapcore.ParseLevel(c.Level); err != nil {
			return serrors.WrapStr("parsing log level", err, "level", c.Level)
		}
	}
	switch c.Format {
	case "", "human", "json":
	default:
		return serrors.New("log format not supported", "format", c.Format)
	}
	return nil
}

// Sample writes the sample configuration to dst.
func (c *Config) Sample(dst io.Writer, _ config.Path) {
	config.WriteString(dst, configSample)
}

// ConfigName returns the name this config should have in a TOML file.
func (c *Config) ConfigName() string {
	return "log"
}
