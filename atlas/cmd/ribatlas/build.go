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
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ribatlas/ribatlas/atlas"
	atlasconfig "github.com/ribatlas/ribatlas/atlas/config"
	"github.com/ribatlas/ribatlas/pkg/log"
	"github.com/ribatlas/ribatlas/pkg/private/serrors"
	"github.com/ribatlas/ribatlas/private/config"
)

func newBuild(pather CommandPather) *cobra.Command {
	var flags struct {
		cfgFile  string
		outDir   string
		compress bool
		workers  int
		logLevel string
		metrics  string
		json     bool
		noColor  bool
	}

	cmd := &cobra.Command{
		Use:   "build [dump-file]",
		Short: "Build the per-ASN prefix and regex artifacts",
		Args:  cobra.MaximumNArgs(1),
		Example: fmt.Sprintf(`  %[1]s build
  %[1]s build rib.20250830.0000.bz2 --out artifacts --compress
  %[1]s build --config ribatlas.toml --json`, pather.CommandPath()),
		Long: `'build' runs the full pipeline: it reads a TABLE_DUMP2 RIB dump,
aggregates the announced prefixes per origin ASN and synthesizes one regex
per ASN matching exactly the even octet-aligned decomposition of its IPv4
prefixes.

Without a dump-file argument the latest RIB dump is downloaded from the
configured archive first. Command line flags override the configuration
file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg atlasconfig.Config
			if flags.cfgFile != "" {
				if err := config.LoadFile(flags.cfgFile, &cfg); err != nil {
					return serrors.WrapStr("loading config", err,
						"file", flags.cfgFile)
				}
			}
			if flags.logLevel != "" {
				cfg.Logging.Level = flags.logLevel
			}
			if cmd.Flags().Changed("out") {
				cfg.Output.Dir = flags.outDir
			}
			if cmd.Flags().Changed("compress") {
				cfg.Output.Compress = flags.compress
			}
			if cmd.Flags().Changed("workers") {
				cfg.Synthesis.Workers = flags.workers
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics.Addr = flags.metrics
			}
			cfg.InitDefaults()
			if err := cfg.Validate(); err != nil {
				return serrors.WrapStr("validating config", err)
			}
			if err := log.Setup(cfg.Logging); err != nil {
				return serrors.WrapStr("setting up logging", err)
			}
			defer log.Flush()
			cmd.SilenceUsage = true

			atlas.StartMetrics(cfg.Metrics.Addr)

			ctx, stop := signal.NotifyContext(cmd.Context(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			var source string
			if len(args) > 0 {
				source = args[0]
			}
			summary, err := atlas.Run(ctx, cfg, source)
			if err != nil {
				return err
			}
			if flags.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(cmd, summary, flags.noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.cfgFile, "config", "", "Configuration file")
	cmd.Flags().StringVar(&flags.outDir, "out", ".", "Output directory for the artifacts")
	cmd.Flags().BoolVar(&flags.compress, "compress", false,
		"Also write zstd-compressed artifact variants")
	cmd.Flags().IntVar(&flags.workers, "workers", 0,
		"Number of concurrent synthesis workers (0: one per CPU)")
	cmd.Flags().StringVar(&flags.logLevel, "log.level", "", "Console logging level")
	cmd.Flags().StringVar(&flags.metrics, "metrics", "",
		"Address the Prometheus exporter listens on")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Write the summary as JSON")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *atlas.Summary, noColor bool) {
	header := color.New(color.FgHiBlack)
	if noColor {
		header.DisableColor()
	}
	header.Fprintln(cmd.OutOrStdout(), "Processed", summary.Source)

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"MRT records", strconv.FormatInt(summary.Records, 10)},
		{"RIB records", strconv.FormatInt(summary.RIBRecords, 10)},
		{"Skipped records", strconv.FormatInt(summary.Skipped, 10)},
		{"Origin ASNs", strconv.Itoa(summary.ASNs)},
		{"Regexes", strconv.Itoa(summary.Regexes)},
		{"ASNs without IPv4 tokens", strconv.Itoa(summary.EmptyASNs)},
		{"Elapsed", summary.Elapsed.Round(summary.Elapsed / 100).String()},
	})
	table.Render()
	for _, path := range summary.Artifacts {
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
	}
}
