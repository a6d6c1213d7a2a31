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

// Package tabledump interprets MRT TABLE_DUMP2 records. It decodes the peer
// index table and the per-prefix RIB entries, and extracts the origin AS of
// each prefix from the BGP path attributes.
//
// Decoding is best effort over one full file: a malformed RIB record is
// skipped and counted, only truncation of the underlying stream and a RIB
// record appearing before the peer index table are fatal.
package tabledump

import (
	"encoding/binary"
	"net/netip"

	"github.com/ribatlas/ribatlas/pkg/log"
	"github.com/ribatlas/ribatlas/pkg/mrt"
	"github.com/ribatlas/ribatlas/pkg/private/serrors"
)

// ErrNoPeerIndex indicates that a RIB record appeared before the peer index
// table. MRT requires the PEER_INDEX_TABLE to precede all RIB entries; a dump
// violating that is non-standard and is rejected as a whole.
var ErrNoPeerIndex = serrors.New("RIB record before peer index table")

// ErrMalformedRecord indicates that a single RIB record could not be decoded.
// The record is skipped, decoding continues with the next record.
var ErrMalformedRecord = serrors.New("malformed RIB record")

// maxSkippedSamples bounds how many skip reasons are retained for the
// end-of-run report.
const maxSkippedSamples = 8

// RibRecord is one decoded routing entry: a prefix and the set of origin
// ASNs that announce it. The set has more than one element if the AS path
// ends in an AS_SET, or if different peers report different origins.
type RibRecord struct {
	Sequence   uint32
	Prefix     netip.Prefix
	OriginASNs []uint32
}

// Stats summarizes a decoding run.
type Stats struct {
	// Records is the number of MRT records consumed, of any type.
	Records int64
	// RIBRecords is the number of RIB records decoded successfully.
	RIBRecords int64
	// Skipped is the number of RIB records dropped as malformed.
	Skipped int64
	// SkippedSamples holds the reasons of the first skipped records.
	SkippedSamples []error
	// Unrecognized is the number of records of a type or subtype this
	// decoder does not handle.
	Unrecognized int64
}

// Decoder turns the MRT record sequence of one TABLE_DUMP2 file into
// RibRecords. It is not safe for concurrent use; the record stream is
// inherently sequential.
type Decoder struct {
	r      *mrt.Reader
	logger log.Logger
	peers  *PeerIndexTable
	stats  Stats
}

// NewDecoder creates a decoder reading from r. The logger may be nil.
func NewDecoder(r *mrt.Reader, logger log.Logger) *Decoder {
	if logger == nil {
		logger = log.Root()
	}
	return &Decoder{r: r, logger: logger}
}

// Next returns the next decoded RIB record. It returns io.EOF at a clean end
// of the file. Unrecognized records are skipped silently, malformed RIB
// records are skipped with a warning and counted. Errors wrapping
// mrt.ErrTruncated or ErrNoPeerIndex are fatal for the file.
func (d *Decoder) Next() (*RibRecord, error) {
	for {
		rec, err := d.r.Next()
		if err != nil {
			return nil, err
		}
		d.stats.Records++
		if rec.Type != mrt.TypeTableDump2 {
			d.stats.Unrecognized++
			continue
		}
		switch rec.Subtype {
		case mrt.SubtypePeerIndexTable:
			peers, err := decodePeerIndexTable(rec.Payload)
			if err != nil {
				return nil, serrors.WrapStr("decoding peer index table", err)
			}
			d.peers = peers
			continue
		case mrt.SubtypeRIBIPv4Unicast, mrt.SubtypeRIBIPv6Unicast:
			if d.peers == nil {
				return nil, serrors.Join(ErrNoPeerIndex, nil, "subtype", rec.Subtype)
			}
			rr, err := decodeRIB(rec.Payload, rec.Subtype == mrt.SubtypeRIBIPv6Unicast)
			if err != nil {
				d.skip(err)
				continue
			}
			d.stats.RIBRecords++
			return rr, nil
		default:
			d.stats.Unrecognized++
			continue
		}
	}
}

// PeerIndex returns the decoded peer index table, or nil if none was seen.
func (d *Decoder) PeerIndex() *PeerIndexTable {
	return d.peers
}

// Stats returns the decoding statistics accumulated so far.
func (d *Decoder) Stats() Stats {
	return d.stats
}

func (d *Decoder) skip(err error) {
	d.stats.Skipped++
	if len(d.stats.SkippedSamples) < maxSkippedSamples {
		d.stats.SkippedSamples = append(d.stats.SkippedSamples, err)
	}
	d.logger.Info("Skipping malformed RIB record", "err", err)
}

// decodeRIB decodes a RIB_IPV4_UNICAST or RIB_IPV6_UNICAST payload:
// sequence number (4 bytes), prefix length (1), packed prefix bytes, entry
// count (2), then per entry peer index (2), originated time (4), attribute
// length (2) and the attribute blob.
func decodeRIB(b []byte, ipv6 bool) (*RibRecord, error) {
	if len(b) < 5 {
		return nil, serrors.Join(ErrMalformedRecord, nil,
			"cause", "header too short", "len", len(b))
	}
	seq := binary.BigEndian.Uint32(b[0:4])
	plen := int(b[4])
	b = b[5:]

	bits := 32
	if ipv6 {
		bits = 128
	}
	if plen > bits {
		return nil, serrors.Join(ErrMalformedRecord, nil,
			"cause", "prefix length out of range", "seq", seq, "plen", plen)
	}
	// Only the leading bytes of the network address are present.
	nbytes := (plen + 7) / 8
	if len(b) < nbytes {
		return nil, serrors.Join(ErrMalformedRecord, nil,
			"cause", "prefix bytes missing", "seq", seq, "plen", plen)
	}
	addrBytes := make([]byte, bits/8)
	copy(addrBytes, b[:nbytes])
	b = b[nbytes:]
	addr, ok := netip.AddrFromSlice(addrBytes)
	if !ok {
		return nil, serrors.Join(ErrMalformedRecord, nil,
			"cause", "invalid address", "seq", seq)
	}
	prefix := netip.PrefixFrom(addr, plen)

	if len(b) < 2 {
		return nil, serrors.Join(ErrMalformedRecord, nil,
			"cause", "entry count missing", "seq", seq)
	}
	count := int(binary.BigEndian.Uint16(b[0:2]))
	b = b[2:]

	origins := newOriginSet()
	for i := 0; i < count; i++ {
		if len(b) < 8 {
			return nil, serrors.Join(ErrMalformedRecord, nil,
				"cause", "entry header too short", "seq", seq, "entry", i)
		}
		attrLen := int(binary.BigEndian.Uint16(b[6:8]))
		b = b[8:]
		if len(b) < attrLen {
			return nil, serrors.Join(ErrMalformedRecord, nil,
				"cause", "attributes overrun record", "seq", seq, "entry", i,
				"attr_len", attrLen, "remaining", len(b))
		}
		entryOrigins, err := originsFromAttrs(b[:attrLen])
		if err != nil {
			return nil, serrors.Join(ErrMalformedRecord, err, "seq", seq, "entry", i)
		}
		origins.add(entryOrigins...)
		b = b[attrLen:]
	}
	if origins.empty() {
		return nil, serrors.Join(ErrMalformedRecord, nil,
			"cause", "no origin AS in any entry", "seq", seq, "prefix", prefix)
	}
	return &RibRecord{
		Sequence:   seq,
		Prefix:     prefix,
		OriginASNs: origins.sorted(),
	}, nil
}
