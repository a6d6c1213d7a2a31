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

package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ribatlas/ribatlas/atlas/aggregate"
	"github.com/ribatlas/ribatlas/pkg/mrt/tabledump"
	"github.com/ribatlas/ribatlas/pkg/private/xtest"
)

func TestAggregatorDedups(t *testing.T) {
	a := aggregate.New()
	// The same prefix advertised by several peers with the same origin.
	a.Add(64500, "203.0.113.0/24")
	a.Add(64500, "203.0.113.0/24")
	a.Add(64500, "203.0.113.0/24")

	m := a.Finalize()
	require.Contains(t, m, uint32(64500))
	assert.Equal(t, []string{"203.0.113.0/24"}, m[64500])
}

func TestAggregatorNumericSort(t *testing.T) {
	a := aggregate.New()
	a.Add(64500, "10.10.0.0/24")
	a.Add(64500, "10.2.0.0/24")
	a.Add(64500, "9.0.0.0/8")
	a.Add(64500, "10.2.0.0/16")

	m := a.Finalize()
	// Per-octet numeric comparison, not lexicographic: 10.2 before 10.10.
	// The two 10.2.0.0 entries tie on the key and keep insertion order.
	assert.Equal(t, []string{
		"9.0.0.0/8",
		"10.2.0.0/24",
		"10.2.0.0/16",
		"10.10.0.0/24",
	}, m[64500])
}

func TestAggregatorIPv6SortsAfterIPv4(t *testing.T) {
	a := aggregate.New()
	a.Add(64500, "2001:db8::/32")
	a.Add(64500, "2001:67c::/32")
	a.Add(64500, "203.0.113.0/24")
	a.Add(64500, "10.0.0.0/8")

	m := a.Finalize()
	assert.Equal(t, []string{
		"10.0.0.0/8",
		"203.0.113.0/24",
		"2001:67c::/32",
		"2001:db8::/32",
	}, m[64500])
}

func TestAggregatorFanOut(t *testing.T) {
	a := aggregate.New()
	a.AddRecord(&tabledump.RibRecord{
		Prefix:     xtest.MustParsePrefix(t, "198.51.100.0/24"),
		OriginASNs: []uint32{64500, 64501},
	})

	m := a.Finalize()
	assert.Equal(t, []string{"198.51.100.0/24"}, m[64500])
	assert.Equal(t, []string{"198.51.100.0/24"}, m[64501])
	assert.Equal(t, []uint32{64500, 64501}, m.ASNs())
}

func TestPrefixMapASNsSorted(t *testing.T) {
	a := aggregate.New()
	a.Add(65000, "10.0.0.0/8")
	a.Add(100, "11.0.0.0/8")
	a.Add(9, "12.0.0.0/8")

	m := a.Finalize()
	assert.Equal(t, []uint32{9, 100, 65000}, m.ASNs())
}
