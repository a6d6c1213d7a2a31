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

// Package artifact serializes the output maps of a pipeline run.
//
// Both artifacts are JSON objects keyed by the ASN rendered as a decimal
// string. Keys are emitted in ascending numeric order, and ASNs pass through
// strconv only, never through a float, so values round-trip exactly. The
// objects are emitted manually because encoding/json orders integer-keyed
// maps lexicographically.
package artifact

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/ribatlas/ribatlas/pkg/private/serrors"
)

// WritePrefixes serializes the ASN to prefix-list map. With indent set, the
// output is pretty-printed with two-space indentation.
func WritePrefixes(w io.Writer, m map[uint32][]string, indent bool) error {
	asns := make([]uint32, 0, len(m))
	for asn := range m {
		asns = append(asns, asn)
	}
	return writeObject(w, asns, indent, func(asn uint32) ([]byte, error) {
		if indent {
			return json.MarshalIndent(m[asn], "  ", "  ")
		}
		return json.Marshal(m[asn])
	})
}

// WriteRegexes serializes the ASN to regex map.
func WriteRegexes(w io.Writer, m map[uint32]string) error {
	asns := make([]uint32, 0, len(m))
	for asn := range m {
		asns = append(asns, asn)
	}
	return writeObject(w, asns, false, func(asn uint32) ([]byte, error) {
		return json.Marshal(m[asn])
	})
}

// WriteZstd runs write against a zstd compressing writer wrapping w.
// Compression is a transport concern only; the compressed content is
// byte-identical to what write produces.
func WriteZstd(w io.Writer, level zstd.EncoderLevel, write func(io.Writer) error) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level))
	if err != nil {
		return serrors.WrapStr("creating zstd writer", err)
	}
	if err := write(enc); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return serrors.WrapStr("flushing zstd stream", err)
	}
	return nil
}

// StagedFile is an artifact fully written and synced to a temporary file,
// but not yet visible under its final name.
type StagedFile struct {
	tmp  string
	path string
}

// Stage writes the artifact to a hidden temporary file next to path. The
// file only becomes visible under its final name on Commit.
func Stage(path string, write func(io.Writer) error) (*StagedFile, error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return nil, serrors.WrapStr("creating temporary file", err, "dir", dir)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, serrors.WrapStr("syncing temporary file", err, "file", f.Name())
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, serrors.WrapStr("closing temporary file", err, "file", f.Name())
	}
	return &StagedFile{tmp: f.Name(), path: path}, nil
}

// Path returns the final name the staged file commits to.
func (s *StagedFile) Path() string {
	return s.path
}

// Discard removes the temporary file without committing it.
func (s *StagedFile) Discard() {
	os.Remove(s.tmp)
}

// CommitAll renames the staged files into place. If any rename fails, files
// already committed are removed again and the rest are discarded, so that
// either every file appears under its final name or none does.
func CommitAll(staged ...*StagedFile) error {
	for i, s := range staged {
		if err := os.Rename(s.tmp, s.path); err != nil {
			for _, done := range staged[:i] {
				os.Remove(done.path)
			}
			for _, rest := range staged[i:] {
				rest.Discard()
			}
			return serrors.WrapStr("renaming artifact into place", err,
				"file", s.path)
		}
	}
	return nil
}

// WriteFileAtomic stages and commits a single file: it appears under path
// complete or not at all.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	s, err := Stage(path, write)
	if err != nil {
		return err
	}
	return CommitAll(s)
}

func writeObject(w io.Writer, asns []uint32, indent bool,
	value func(uint32) ([]byte, error)) error {

	sort.Slice(asns, func(i, j int) bool { return asns[i] < asns[j] })
	bw := bufio.NewWriter(w)
	bw.WriteByte('{')
	for i, asn := range asns {
		if i > 0 {
			bw.WriteByte(',')
		}
		if indent {
			bw.WriteString("\n  ")
		}
		bw.WriteByte('"')
		bw.WriteString(strconv.FormatUint(uint64(asn), 10))
		bw.WriteString(`": `)
		v, err := value(asn)
		if err != nil {
			return serrors.WrapStr("marshaling value", err, "asn", asn)
		}
		bw.Write(v)
	}
	if indent && len(asns) > 0 {
		bw.WriteByte('\n')
	}
	bw.WriteByte('}')
	if err := bw.Flush(); err != nil {
		return serrors.WrapStr("writing artifact", err)
	}
	return nil
}
