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

// Package aggregate folds decoded RIB records into the ASN to prefix-set
// mapping. Prefixes are deduplicated per ASN while folding; the final
// per-ASN order is fixed once at finalize time.
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ribatlas/ribatlas/pkg/mrt/tabledump"
)

// PrefixMap maps an ASN to the CIDR strings of the prefixes it originates.
// An ASN is present only if it originates at least one prefix.
type PrefixMap map[uint32][]string

// ASNs returns the keys in ascending numeric order.
func (m PrefixMap) ASNs() []uint32 {
	asns := make([]uint32, 0, len(m))
	for asn := range m {
		asns = append(asns, asn)
	}
	sort.Slice(asns, func(i, j int) bool { return asns[i] < asns[j] })
	return asns
}

// Aggregator builds a PrefixMap from RIB records. Not safe for concurrent
// use; the fold is part of the sequential decode pass.
type Aggregator struct {
	byASN map[uint32]*prefixList
}

type prefixList struct {
	seen  map[string]struct{}
	order []string
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{byASN: map[uint32]*prefixList{}}
}

// AddRecord fans the record out into one (prefix, ASN) pair per origin.
func (a *Aggregator) AddRecord(rec *tabledump.RibRecord) {
	for _, asn := range rec.OriginASNs {
		a.Add(asn, rec.Prefix.String())
	}
}

// Add records that asn originates prefix. The same prefix advertised by
// multiple peers is stored at most once per ASN.
func (a *Aggregator) Add(asn uint32, prefix string) {
	l, ok := a.byASN[asn]
	if !ok {
		l = &prefixList{seen: map[string]struct{}{}}
		a.byASN[asn] = l
	}
	if _, dup := l.seen[prefix]; dup {
		return
	}
	l.seen[prefix] = struct{}{}
	l.order = append(l.order, prefix)
}

// Finalize sorts each ASN's prefix list and returns the map. IPv4 prefixes
// sort by per-octet numeric comparison, IPv6 prefixes sort after all IPv4
// entries and lexicographically among themselves; ties keep their original
// relative order. The aggregator must not be reused afterwards.
func (a *Aggregator) Finalize() PrefixMap {
	m := make(PrefixMap, len(a.byASN))
	for asn, l := range a.byASN {
		keys := make([]sortKey, len(l.order))
		for i, p := range l.order {
			keys[i] = mkSortKey(p)
		}
		idx := make([]int, len(l.order))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(i, j int) bool {
			return keys[idx[i]].less(keys[idx[j]])
		})
		sorted := make([]string, len(l.order))
		for i, j := range idx {
			sorted[i] = l.order[j]
		}
		m[asn] = sorted
	}
	a.byASN = nil
	return m
}

// sortKey is the version-style ordering key of one prefix string. IPv4
// strings compare by their numeric octets, everything else falls back to
// plain string comparison after all IPv4 entries.
type sortKey struct {
	v6     bool
	octets [4]int
	raw    string
}

func mkSortKey(prefix string) sortKey {
	k := sortKey{raw: prefix}
	host, _, _ := strings.Cut(prefix, "/")
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		k.v6 = true
		return k
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			k.v6 = true
			return k
		}
		k.octets[i] = n
	}
	return k
}

func (k sortKey) less(o sortKey) bool {
	if k.v6 != o.v6 {
		return !k.v6
	}
	if k.v6 {
		return k.raw < o.raw
	}
	for i := range k.octets {
		if k.octets[i] != o.octets[i] {
			return k.octets[i] < o.octets[i]
		}
	}
	return false
}
