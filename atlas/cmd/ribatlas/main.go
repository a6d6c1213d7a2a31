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

// Command ribatlas turns RouteViews RIB dumps into per-ASN prefix and
// regex artifacts.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// CommandPather returns the path to a command.
type CommandPather interface {
	CommandPath() string
}

func main() {
	executable := "ribatlas"
	cmd := &cobra.Command{
		Use:           executable,
		Short:         "RIB atlas processing tool",
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newBuild(cmd),
		newFetch(cmd),
		newSample(cmd),
		newVersion(cmd),
	)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
