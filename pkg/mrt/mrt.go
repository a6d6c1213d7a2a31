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

// Package mrt decodes the MRT record framing (RFC 6396). It splits a byte
// stream into typed records and knows nothing about the payload semantics;
// interpreting TABLE_DUMP2 payloads is the job of package tabledump.
package mrt

import (
	"bufio"
	"encoding/binary"
	"io"
	"time"

	"github.com/ribatlas/ribatlas/pkg/private/serrors"
)

// HeaderLen is the length of the MRT common header: timestamp (4 bytes),
// type (2), subtype (2), payload length (4), all big endian.
const HeaderLen = 12

// MRT record types and TABLE_DUMP2 subtypes used by ribatlas.
const (
	TypeTableDump  uint16 = 12
	TypeTableDump2 uint16 = 13

	SubtypePeerIndexTable uint16 = 1
	SubtypeRIBIPv4Unicast uint16 = 2
	SubtypeRIBIPv6Unicast uint16 = 4
)

// ErrTruncated indicates that the stream ended in the middle of a record,
// either inside the common header or before the declared payload length was
// consumed. Record boundaries cannot be trusted past this point, so the
// stream must not be read further.
var ErrTruncated = serrors.New("truncated MRT stream")

// Record is one MRT record: the decoded common header plus the raw payload.
type Record struct {
	Timestamp time.Time
	Type      uint16
	Subtype   uint16
	Payload   []byte
}

// Reader splits a byte stream into MRT records. Records must be read
// strictly sequentially; the position of a record depends on the declared
// length of all records before it.
type Reader struct {
	r      *bufio.Reader
	hdr    [HeaderLen]byte
	offset int64
}

// NewReader returns a Reader framing the given stream. The stream must be
// decompressed already.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 1<<16)}
}

// Next returns the next record. It returns io.EOF on a clean end of stream
// and an error wrapping ErrTruncated if the stream ends mid-record. The
// returned payload is owned by the caller.
func (r *Reader) Next() (*Record, error) {
	n, err := io.ReadFull(r.r, r.hdr[:])
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case err == io.ErrUnexpectedEOF:
		return nil, serrors.Join(ErrTruncated, nil,
			"cause", "stream ends inside common header",
			"offset", r.offset, "read", n)
	case err != nil:
		return nil, serrors.WrapStr("reading MRT header", err, "offset", r.offset)
	}
	rec := &Record{
		Timestamp: time.Unix(int64(binary.BigEndian.Uint32(r.hdr[0:4])), 0).UTC(),
		Type:      binary.BigEndian.Uint16(r.hdr[4:6]),
		Subtype:   binary.BigEndian.Uint16(r.hdr[6:8]),
	}
	length := binary.BigEndian.Uint32(r.hdr[8:12])
	rec.Payload = make([]byte, length)
	if _, err := io.ReadFull(r.r, rec.Payload); err != nil {
		return nil, serrors.Join(ErrTruncated, nil,
			"cause", "stream ends inside payload",
			"offset", r.offset, "type", rec.Type, "subtype", rec.Subtype,
			"length", length)
	}
	r.offset += HeaderLen + int64(length)
	return rec, nil
}

// Offset returns the stream offset directly after the last fully read
// record. It is reported in truncation errors to aid debugging bad dumps.
func (r *Reader) Offset() int64 {
	return r.offset
}
