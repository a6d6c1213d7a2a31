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

package decompose_test

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go4.org/netipx"

	"github.com/ribatlas/ribatlas/atlas/decompose"
	"github.com/ribatlas/ribatlas/pkg/private/xtest"
)

func TestTokens(t *testing.T) {
	testCases := map[string]struct {
		prefix string
		want   []string
	}{
		"/8 single octet group": {
			prefix: "10.0.0.0/8",
			want:   []string{"10."},
		},
		"/7 two octet groups": {
			prefix: "10.0.0.0/7",
			want:   []string{"10.", "11."},
		},
		"/16 two octet groups": {
			prefix: "10.0.0.0/16",
			want:   []string{"10.0."},
		},
		"/15 expands to two /16s": {
			prefix: "10.2.0.0/15",
			want:   []string{"10.2.", "10.3."},
		},
		"/24": {
			prefix: "203.0.113.0/24",
			want:   []string{"203.0.113."},
		},
		"/23 expands to two /24s": {
			prefix: "203.0.112.0/23",
			want:   []string{"203.0.112.", "203.0.113."},
		},
		"/30 enumerates all four addresses": {
			prefix: "192.168.1.0/30",
			want:   []string{"192.168.1.0", "192.168.1.1", "192.168.1.2", "192.168.1.3"},
		},
		"/32 single address": {
			prefix: "198.51.100.7/32",
			want:   []string{"198.51.100.7"},
		},
		"IPv6 filtered": {
			prefix: "2001:db8::/32",
			want:   nil,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := decompose.Tokens(xtest.MustParsePrefix(t, tc.prefix))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTokensUnevenLengthsNextCoarserBucket(t *testing.T) {
	// /20 does not divide evenly by 8; it falls into the /24 bucket and
	// covers 2^(24-20) blocks.
	got := decompose.Tokens(xtest.MustParsePrefix(t, "172.16.16.0/20"))
	require.Len(t, got, 16)
	assert.Equal(t, "172.16.16.", got[0])
	assert.Equal(t, "172.16.31.", got[15])

	// /12 falls into the /16 bucket.
	got = decompose.Tokens(xtest.MustParsePrefix(t, "172.16.0.0/12"))
	require.Len(t, got, 16)
	assert.Equal(t, "172.16.", got[0])
	assert.Equal(t, "172.31.", got[15])
}

func TestTokensFinerThanSlash24SizeExact(t *testing.T) {
	testCases := map[string]int{
		"10.20.30.0/25":  128,
		"10.20.30.0/26":  64,
		"10.20.30.0/30":  4,
		"10.20.30.64/31": 2,
		"10.20.30.9/32":  1,
	}
	for prefix, wantLen := range testCases {
		got := decompose.Tokens(xtest.MustParsePrefix(t, prefix))
		assert.Len(t, got, wantLen, "prefix %s", prefix)
	}
}

// TestTokensCoverPrefix checks the round-trip property: every address inside
// the prefix starts with one of its tokens.
func TestTokensCoverPrefix(t *testing.T) {
	for _, prefix := range []string{
		"10.0.0.0/8", "10.0.0.0/13", "10.0.0.0/16", "172.16.16.0/20",
		"203.0.113.0/24", "203.0.113.0/26",
	} {
		p := xtest.MustParsePrefix(t, prefix)
		tokens := decompose.Tokens(p)
		require.NotEmpty(t, tokens, "prefix %s", prefix)

		// Sampling with a prime stride is enough; checking every address of
		// a /8 would dominate the test run.
		r := netipx.RangeOfPrefix(p)
		samples := []netip.Addr{r.To()}
		for addr := r.From(); addr.Compare(r.To()) <= 0; {
			samples = append(samples, addr)
			next := addr
			for i := 0; i < 251 && next != r.To(); i++ {
				next = next.Next()
			}
			if next == addr {
				break
			}
			addr = next
		}
		for _, addr := range samples {
			s := addr.String()
			covered := false
			for _, tok := range tokens {
				if strings.HasPrefix(s, tok) {
					covered = true
					break
				}
			}
			require.True(t, covered, "address %s of %s has no covering token", s, prefix)
		}
	}
}
