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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	atlasconfig "github.com/ribatlas/ribatlas/atlas/config"
)

func newSample(pather CommandPather) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sample",
		Short:   "Display a sample configuration file",
		Args:    cobra.NoArgs,
		Example: fmt.Sprintf("  %[1]s sample > ribatlas.toml", pather.CommandPath()),
		Run: func(cmd *cobra.Command, args []string) {
			var cfg atlasconfig.Config
			cfg.Sample(cmd.OutOrStdout(), nil)
		},
	}
	return cmd
}
