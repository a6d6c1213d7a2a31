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
	"net/netip"

	"github.com/ribatlas/ribatlas/pkg/private/serrors"
)

const (
	peerFlagIPv6  = 0x1
	peerFlagAS4   = 0x2
	peerFixedSize = 5 // type byte + BGP ID
)

// Peer is one entry of the peer index table.
type Peer struct {
	BGPID netip.Addr
	Addr  netip.Addr
	ASN   uint32
}

// PeerIndexTable is the PEER_INDEX_TABLE of a TABLE_DUMP2 file. RIB entries
// reference peers by their position in Peers. It is built once at the start
// of the file and read-only afterwards.
type PeerIndexTable struct {
	CollectorID netip.Addr
	ViewName    string
	Peers       []Peer
}

// decodePeerIndexTable decodes a PEER_INDEX_TABLE payload: collector BGP ID
// (4 bytes), view name length (2) and name, peer count (2), then per peer a
// type byte, the peer BGP ID (4), the peer IP (4 or 16 depending on the type
// byte) and the peer AS (2 or 4 bytes).
func decodePeerIndexTable(b []byte) (*PeerIndexTable, error) {
	if len(b) < 6 {
		return nil, serrors.New("peer index table too short", "len", len(b))
	}
	collector, _ := netip.AddrFromSlice(b[0:4])
	nameLen := int(binary.BigEndian.Uint16(b[4:6]))
	b = b[6:]
	if len(b) < nameLen+2 {
		return nil, serrors.New("view name overruns table", "name_len", nameLen)
	}
	name := string(b[:nameLen])
	count := int(binary.BigEndian.Uint16(b[nameLen : nameLen+2]))
	b = b[nameLen+2:]

	t := &PeerIndexTable{
		CollectorID: collector,
		ViewName:    name,
		Peers:       make([]Peer, 0, count),
	}
	for i := 0; i < count; i++ {
		if len(b) < peerFixedSize {
			return nil, serrors.New("peer entry too short", "peer", i)
		}
		typ := b[0]
		bgpID, _ := netip.AddrFromSlice(b[1:5])
		b = b[peerFixedSize:]

		addrLen := 4
		if typ&peerFlagIPv6 != 0 {
			addrLen = 16
		}
		asLen := 2
		if typ&peerFlagAS4 != 0 {
			asLen = 4
		}
		if len(b) < addrLen+asLen {
			return nil, serrors.New("peer entry overruns table", "peer", i,
				"type", typ, "remaining", len(b))
		}
		addr, _ := netip.AddrFromSlice(b[:addrLen])
		var asn uint32
		if asLen == 4 {
			asn = binary.BigEndian.Uint32(b[addrLen : addrLen+4])
		} else {
			asn = uint32(binary.BigEndian.Uint16(b[addrLen : addrLen+2]))
		}
		b = b[addrLen+asLen:]
		t.Peers = append(t.Peers, Peer{BGPID: bgpID, Addr: addr, ASN: asn})
	}
	return t, nil
}
