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

// Package decompose breaks IPv4 prefixes into octet-aligned string tokens
// for regex synthesis. Coarse prefixes collapse into short octet-group
// strings so that the token alphabet stays bounded; only prefixes finer than
// /24 enumerate individual addresses.
package decompose

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"go4.org/netipx"
)

// Tokens decomposes an IPv4 prefix into even octet-aligned tokens:
//
//	/0  - /8   every covered /8 as "o1."
//	/9  - /16  every covered /16 as "o1.o2."
//	/17 - /24  every covered /24 as "o1.o2.o3."
//	/25 - /32  every address as a dotted quad, network and broadcast
//	           addresses included
//
// A prefix length between two thresholds falls into the next coarser bucket.
// IPv6 prefixes yield no tokens.
func Tokens(p netip.Prefix) []string {
	addr := p.Addr().Unmap()
	if !addr.Is4() {
		return nil
	}
	p = netip.PrefixFrom(addr, p.Bits()).Masked()
	r := netipx.RangeOfPrefix(p)
	first := ipv4ToUint(r.From())
	last := ipv4ToUint(r.To())

	var tokens []string
	switch bits := p.Bits(); {
	case bits <= 8:
		for b := first >> 24; b <= last>>24; b++ {
			tokens = append(tokens, fmt.Sprintf("%d.", b))
		}
	case bits <= 16:
		for b := first >> 16; b <= last>>16; b++ {
			tokens = append(tokens, fmt.Sprintf("%d.%d.", b>>8, b&0xff))
		}
	case bits <= 24:
		for b := first >> 8; b <= last>>8; b++ {
			tokens = append(tokens, fmt.Sprintf("%d.%d.%d.", b>>16, (b>>8)&0xff, b&0xff))
		}
	default:
		for b := first; ; b++ {
			tokens = append(tokens, uintToIPv4(b).String())
			if b == last {
				break
			}
		}
	}
	return tokens
}

func ipv4ToUint(a netip.Addr) uint32 {
	b := a.As4()
	return binary.BigEndian.Uint32(b[:])
}

func uintToIPv4(u uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], u)
	return netip.AddrFrom4(b)
}
