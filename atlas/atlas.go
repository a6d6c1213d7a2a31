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

// Package atlas runs the RIB processing pipeline: it reads a TABLE_DUMP2
// dump, aggregates announced prefixes per origin ASN and synthesizes a
// matching regex per ASN over the even octet-aligned decomposition of the
// IPv4 prefixes.
package atlas

import (
	"compress/bzip2"
	"context"
	"errors"
	"io"
	"net/netip"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/ribatlas/ribatlas/atlas/aggregate"
	"github.com/ribatlas/ribatlas/atlas/artifact"
	"github.com/ribatlas/ribatlas/atlas/config"
	"github.com/ribatlas/ribatlas/atlas/decompose"
	"github.com/ribatlas/ribatlas/atlas/fetch"
	"github.com/ribatlas/ribatlas/pkg/log"
	"github.com/ribatlas/ribatlas/pkg/mrt"
	"github.com/ribatlas/ribatlas/pkg/mrt/tabledump"
	"github.com/ribatlas/ribatlas/pkg/private/serrors"
	"github.com/ribatlas/ribatlas/pkg/regexsynth"
)

// Artifact file names, relative to the configured output directory.
const (
	PrefixesFile = "asn_prefixes.json"
	RegexesFile  = "asn_regexes.json"
)

// ctxCheckInterval is the number of records between context checks in the
// decode loop.
const ctxCheckInterval = 4096

// Summary reports what a pipeline run did.
type Summary struct {
	Source       string
	Records      int64
	RIBRecords   int64
	Skipped      int64
	Unrecognized int64
	ASNs         int
	Regexes      int
	EmptyASNs    int
	Artifacts    []string
	Elapsed      time.Duration
}

// Run executes the full pipeline. If source is empty, the latest RIB dump
// is downloaded first. Artifacts are written to the configured output
// directory; each file appears either complete or not at all.
func Run(ctx context.Context, cfg config.Config, source string) (*Summary, error) {
	start := time.Now()
	logger := log.FromCtx(ctx)
	metrics := defaultMetrics()

	if source == "" {
		url := fetch.LatestRibURL(cfg.Fetch.BaseURL, time.Now())
		file, err := fetch.Download(ctx, url, cfg.Fetch.CacheDir)
		if err != nil {
			return nil, err
		}
		source = file
	}

	prefixes, stats, err := Aggregate(ctx, source, logger, metrics)
	if err != nil {
		return nil, err
	}
	reportSkipped(logger, stats)

	regexes, empty, err := SynthesizeAll(ctx, prefixes, cfg.Synthesis.Workers)
	if err != nil {
		return nil, err
	}
	metrics.Regexes.Add(float64(len(regexes)))
	metrics.EmptyRegexes.Add(float64(len(empty)))
	for _, asn := range empty {
		logger.Debug("No IPv4 tokens for ASN", "asn", asn)
	}

	artifacts, err := writeArtifacts(cfg.Output, prefixes, regexes)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Source:       source,
		Records:      stats.Records,
		RIBRecords:   stats.RIBRecords,
		Skipped:      stats.Skipped,
		Unrecognized: stats.Unrecognized,
		ASNs:         len(prefixes),
		Regexes:      len(regexes),
		EmptyASNs:    len(empty),
		Artifacts:    artifacts,
		Elapsed:      time.Since(start),
	}, nil
}

// Aggregate decodes the dump at path and returns the per-ASN prefix map.
// Files ending in .bz2 are decompressed on the fly.
func Aggregate(ctx context.Context, path string, logger log.Logger,
	metrics *Metrics) (aggregate.PrefixMap, tabledump.Stats, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, tabledump.Stats{}, serrors.WrapStr("opening dump", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".bz2") {
		r = bzip2.NewReader(f)
	}
	dec := tabledump.NewDecoder(mrt.NewReader(r), logger)
	agg := aggregate.New()
	for i := 0; ; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, dec.Stats(), err
			}
		}
		rec, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, dec.Stats(), serrors.WrapStr("decoding dump", err,
				"path", path)
		}
		agg.AddRecord(rec)
	}
	stats := dec.Stats()
	if metrics != nil {
		metrics.Records.Add(float64(stats.Records))
		metrics.RIBRecords.Add(float64(stats.RIBRecords))
		metrics.Skipped.Add(float64(stats.Skipped))
	}
	prefixes := agg.Finalize()
	if metrics != nil {
		for _, l := range prefixes {
			metrics.Prefixes.Add(float64(len(l)))
		}
	}
	return prefixes, stats, nil
}

// SynthesizeAll builds the per-ASN regex map. ASNs whose prefixes yield no
// IPv4 decomposition tokens are omitted from the map and returned
// separately. Workers bounds concurrency; zero means one worker per CPU.
func SynthesizeAll(ctx context.Context, prefixes aggregate.PrefixMap,
	workers int) (map[uint32]string, []uint32, error) {

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	asns := prefixes.ASNs()

	var mu sync.Mutex
	regexes := make(map[uint32]string, len(asns))
	var empty []uint32

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, asn := range asns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tokens := tokensForASN(prefixes[asn])
			re, err := regexsynth.Synthesize(tokens)
			if errors.Is(err, regexsynth.ErrEmptySet) {
				mu.Lock()
				defer mu.Unlock()
				empty = append(empty, asn)
				return nil
			}
			if err != nil {
				return serrors.WrapStr("synthesizing regex", err, "asn", asn)
			}
			mu.Lock()
			defer mu.Unlock()
			regexes[asn] = re
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	sort.Slice(empty, func(i, j int) bool { return empty[i] < empty[j] })
	return regexes, empty, nil
}

// tokensForASN is the deduplicated union of the decomposition tokens of all
// prefixes announced by one ASN. Non-IPv4 prefixes contribute nothing.
func tokensForASN(prefixes []string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, s := range prefixes {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			continue
		}
		for _, tok := range decompose.Tokens(p) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func writeArtifacts(cfg config.Output, prefixes aggregate.PrefixMap,
	regexes map[uint32]string) ([]string, error) {

	level := zstd.EncoderLevelFromZstd(cfg.CompressionLevel)

	plans := []struct {
		name     string
		compress bool
		write    func(io.Writer) error
	}{
		{
			name: PrefixesFile,
			write: func(w io.Writer) error {
				return artifact.WritePrefixes(w, prefixes, true)
			},
		},
		{
			name: RegexesFile,
			write: func(w io.Writer) error {
				return artifact.WriteRegexes(w, regexes)
			},
		},
		{
			name:     PrefixesFile + ".zst",
			compress: true,
			write: func(w io.Writer) error {
				return artifact.WriteZstd(w, level, func(zw io.Writer) error {
					return artifact.WritePrefixes(zw, prefixes, false)
				})
			},
		},
		{
			name:     RegexesFile + ".zst",
			compress: true,
			write: func(w io.Writer) error {
				return artifact.WriteZstd(w, level, func(zw io.Writer) error {
					return artifact.WriteRegexes(zw, regexes)
				})
			},
		},
	}

	// Artifacts appear all together or not at all: all files are staged as
	// temporaries first and only renamed into place once every write
	// succeeded.
	var staged []*artifact.StagedFile
	for _, plan := range plans {
		if plan.compress && !cfg.Compress {
			continue
		}
		path := filepath.Join(cfg.Dir, plan.name)
		s, err := artifact.Stage(path, plan.write)
		if err != nil {
			for _, prev := range staged {
				prev.Discard()
			}
			return nil, serrors.WrapStr("staging artifact", err, "path", path)
		}
		staged = append(staged, s)
	}
	if err := artifact.CommitAll(staged...); err != nil {
		return nil, err
	}
	written := make([]string, 0, len(staged))
	for _, s := range staged {
		written = append(written, s.Path())
	}
	return written, nil
}

func reportSkipped(logger log.Logger, stats tabledump.Stats) {
	if stats.Skipped == 0 {
		return
	}
	logger.Info("Skipped malformed RIB records", "count", stats.Skipped)
	for _, err := range stats.SkippedSamples {
		logger.Info("Skip reason sample", "err", err)
	}
}
