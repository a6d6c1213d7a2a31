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

package tabledump

import (
	"encoding/binary"
	"sort"

	"github.com/ribatlas/ribatlas/pkg/private/serrors"
)

const (
	attrFlagExtendedLength = 0x10

	attrTypeASPath  = 2
	attrTypeAS4Path = 17

	segTypeASSet      = 1
	segTypeASSequence = 2
)

// originsFromAttrs walks a BGP path attribute blob and extracts the origin
// AS of the route: the last ASN of the last segment of AS_PATH (attribute
// type 2; TABLE_DUMP2 encodes ASNs as 4 bytes), or of AS4_PATH (type 17) if
// no AS_PATH is present. A trailing AS_SET yields every member as origin.
// Returns nil if no path attribute is present.
func originsFromAttrs(b []byte) ([]uint32, error) {
	var asPath, as4Path []byte
	for len(b) > 0 {
		if len(b) < 3 {
			return nil, serrors.New("attribute header too short", "remaining", len(b))
		}
		flags := b[0]
		typ := b[1]
		var length, hdr int
		if flags&attrFlagExtendedLength != 0 {
			if len(b) < 4 {
				return nil, serrors.New("extended attribute header too short",
					"remaining", len(b))
			}
			length = int(binary.BigEndian.Uint16(b[2:4]))
			hdr = 4
		} else {
			length = int(b[2])
			hdr = 3
		}
		if len(b) < hdr+length {
			return nil, serrors.New("attribute overruns blob",
				"type", typ, "length", length, "remaining", len(b)-hdr)
		}
		value := b[hdr : hdr+length]
		switch typ {
		case attrTypeASPath:
			asPath = value
		case attrTypeAS4Path:
			as4Path = value
		}
		b = b[hdr+length:]
	}
	path := asPath
	if path == nil {
		path = as4Path
	}
	if path == nil {
		return nil, nil
	}
	return originsFromPath(path)
}

// originsFromPath extracts the origin set from an AS path encoded as a list
// of segments: segment type (1 byte), ASN count (1 byte), then count 4-byte
// ASNs.
func originsFromPath(b []byte) ([]uint32, error) {
	var lastType byte
	var lastSeg []uint32
	for len(b) > 0 {
		if len(b) < 2 {
			return nil, serrors.New("path segment header too short", "remaining", len(b))
		}
		segType := b[0]
		count := int(b[1])
		if segType != segTypeASSet && segType != segTypeASSequence {
			return nil, serrors.New("path segment type out of range", "type", segType)
		}
		need := 2 + 4*count
		if len(b) < need {
			return nil, serrors.New("path segment overruns attribute",
				"count", count, "remaining", len(b)-2)
		}
		seg := make([]uint32, count)
		for i := 0; i < count; i++ {
			seg[i] = binary.BigEndian.Uint32(b[2+4*i : 6+4*i])
		}
		lastType, lastSeg = segType, seg
		b = b[need:]
	}
	if len(lastSeg) == 0 {
		return nil, nil
	}
	if lastType == segTypeASSequence {
		return []uint32{lastSeg[len(lastSeg)-1]}, nil
	}
	// AS_SET: every member is an origin.
	return lastSeg, nil
}

// originSet collects origin ASNs across the per-peer entries of one record.
type originSet map[uint32]struct{}

func newOriginSet() originSet {
	return make(originSet)
}

func (s originSet) add(asns ...uint32) {
	for _, a := range asns {
		s[a] = struct{}{}
	}
}

func (s originSet) empty() bool {
	return len(s) == 0
}

func (s originSet) sorted() []uint32 {
	out := make([]uint32, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
