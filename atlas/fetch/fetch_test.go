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

package fetch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ribatlas/ribatlas/atlas/fetch"
)

func TestLatestRibURL(t *testing.T) {
	testCases := map[string]struct {
		now  time.Time
		want string
	}{
		"even hour": {
			now:  time.Date(2025, 3, 7, 14, 35, 12, 0, time.UTC),
			want: "https://routeviews.org/bgpdata/2025.03/RIBS/rib.20250307.1400.bz2",
		},
		"odd hour falls back": {
			now:  time.Date(2025, 3, 7, 15, 0, 1, 0, time.UTC),
			want: "https://routeviews.org/bgpdata/2025.03/RIBS/rib.20250307.1400.bz2",
		},
		"midnight": {
			now:  time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			want: "https://routeviews.org/bgpdata/2025.12/RIBS/rib.20251231.0000.bz2",
		},
		"one am crosses to previous day only in hour": {
			now:  time.Date(2025, 1, 1, 1, 59, 59, 0, time.UTC),
			want: "https://routeviews.org/bgpdata/2025.01/RIBS/rib.20250101.0000.bz2",
		},
		"non UTC input": {
			now: time.Date(2025, 6, 1, 1, 30, 0, 0,
				time.FixedZone("CEST", 2*60*60)), // 23:30 UTC the day before
			want: "https://routeviews.org/bgpdata/2025.05/RIBS/rib.20250531.2200.bz2",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, fetch.LatestRibURL(fetch.DefaultBaseURL, tc.now))
		})
	}
}
