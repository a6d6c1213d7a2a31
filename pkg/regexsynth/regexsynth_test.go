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

package regexsynth_test

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ribatlas/ribatlas/pkg/regexsynth"
)

func TestSynthesize(t *testing.T) {
	testCases := map[string]struct {
		tokens []string
		want   string
	}{
		"single token": {
			tokens: []string{"203.0.113."},
			want:   `203\.0\.113\.`,
		},
		"shared prefix class": {
			tokens: []string{"10.0.", "10.1."},
			want:   `10\.[01]\.`,
		},
		"range compression": {
			tokens: []string{"10.", "11.", "12.", "13."},
			want:   `1[0-3]\.`,
		},
		"two chars stay enumerated": {
			tokens: []string{"10.", "12."},
			want:   `1[02]\.`,
		},
		"alternation": {
			tokens: []string{"10.", "203.0.113."},
			want:   `(10\.|203\.0\.113\.)`,
		},
		"prefix token prunes longer": {
			tokens: []string{"10.", "10.1."},
			want:   `10\.`,
		},
		"duplicates collapse": {
			tokens: []string{"192.", "192."},
			want:   `192\.`,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := regexsynth.Synthesize(tc.tokens)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSynthesizeEmpty(t *testing.T) {
	_, err := regexsynth.Synthesize(nil)
	assert.ErrorIs(t, err, regexsynth.ErrEmptySet)
}

func TestSynthesizeDeterministic(t *testing.T) {
	tokens := []string{
		"10.0.", "10.1.", "10.2.", "172.16.", "172.17.", "192.168.1.",
		"192.168.1.1", "198.51.100.", "203.0.113.",
	}
	want, err := regexsynth.Synthesize(tokens)
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), tokens...)
		rnd.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got, err := regexsynth.Synthesize(shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSynthesizeMatchesExactly(t *testing.T) {
	tokens := []string{
		"10.", "172.16.", "172.31.", "192.168.0.", "192.168.1.",
		"198.51.100.4", "198.51.100.5",
	}
	pattern, err := regexsynth.Synthesize(tokens)
	require.NoError(t, err)
	re := regexp.MustCompile("^" + pattern)

	for _, tok := range tokens {
		assert.True(t, re.MatchString(tok), "token %q must match", tok)
		assert.True(t, re.MatchString(tok+"42"), "extension of %q must match", tok)
	}
	for _, s := range []string{
		"11.0.0.1", "172.60.", "172.32.", "192.168.2.", "198.51.100.6",
		"1", "", "x10.",
	} {
		assert.False(t, re.MatchString(s), "%q must not match", s)
	}
}

func TestSynthesizeEscapesMetaChars(t *testing.T) {
	pattern, err := regexsynth.Synthesize([]string{"a+b", "a*c"})
	require.NoError(t, err)
	re := regexp.MustCompile("^" + pattern)
	assert.True(t, re.MatchString("a+b"))
	assert.True(t, re.MatchString("a*c"))
	assert.False(t, re.MatchString("aab"))
	assert.False(t, re.MatchString("ab"))
}
