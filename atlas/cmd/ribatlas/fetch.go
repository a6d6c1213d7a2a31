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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ribatlas/ribatlas/atlas/fetch"
	"github.com/ribatlas/ribatlas/pkg/log"
	"github.com/ribatlas/ribatlas/pkg/private/serrors"
)

func newFetch(pather CommandPather) *cobra.Command {
	var flags struct {
		baseURL  string
		dir      string
		logLevel string
	}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the latest RIB dump without processing it",
		Args:  cobra.NoArgs,
		Example: fmt.Sprintf(`  %[1]s fetch
  %[1]s fetch --dir /var/cache/ribatlas`, pather.CommandPath()),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := log.Setup(log.Config{Level: flags.logLevel}); err != nil {
				return serrors.WrapStr("setting up logging", err)
			}
			defer log.Flush()
			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(cmd.Context(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			url := fetch.LatestRibURL(flags.baseURL, time.Now())
			file, err := fetch.Download(ctx, url, flags.dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), file)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.baseURL, "base-url", fetch.DefaultBaseURL,
		"Root of the archive the RIB dumps are downloaded from")
	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Directory to store the dump in")
	cmd.Flags().StringVar(&flags.logLevel, "log.level", "info", "Console logging level")
	return cmd
}
