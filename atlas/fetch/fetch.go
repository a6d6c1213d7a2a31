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

// Package fetch locates and downloads RouteViews RIB snapshots. RouteViews
// publishes a bzip2-compressed TABLE_DUMP2 dump every two hours.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/cavaliergopher/grab/v3"

	"github.com/ribatlas/ribatlas/pkg/log"
	"github.com/ribatlas/ribatlas/pkg/private/serrors"
)

// DefaultBaseURL is the RouteViews archive of the Oregon collector.
const DefaultBaseURL = "https://routeviews.org/bgpdata"

// ErrDownload indicates a network or HTTP failure while fetching the RIB
// file, as opposed to a parse failure of its contents.
var ErrDownload = serrors.New("downloading RIB file failed")

// LatestRibURL returns the URL of the most recent RIB snapshot at or before
// now: the last even UTC hour, in the archive layout
// <base>/YYYY.MM/RIBS/rib.YYYYMMDD.HH00.bz2.
func LatestRibURL(baseURL string, now time.Time) string {
	t := now.UTC().Truncate(time.Hour)
	if t.Hour()%2 != 0 {
		t = t.Add(-time.Hour)
	}
	return fmt.Sprintf("%s/%s/RIBS/rib.%s.%02d00.bz2",
		baseURL, t.Format("2006.01"), t.Format("20060102"), t.Hour())
}

// Download fetches url into dir and returns the path of the downloaded
// file. Cancelling ctx aborts the transfer.
func Download(ctx context.Context, url, dir string) (string, error) {
	req, err := grab.NewRequest(dir, url)
	if err != nil {
		return "", serrors.Join(ErrDownload, err, "url", url)
	}
	req = req.WithContext(ctx)

	logger := log.FromCtx(ctx)
	logger.Info("Downloading RIB file", "url", url)
	resp := grab.DefaultClient.Do(req)

	t := time.NewTicker(10 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			logger.Debug("Download in progress",
				"transferred", resp.BytesComplete(),
				"total", resp.Size(),
			)
		case <-resp.Done:
			if err := resp.Err(); err != nil {
				return "", serrors.Join(ErrDownload, err, "url", url)
			}
			logger.Info("Download complete", "file", resp.Filename,
				"bytes", resp.BytesComplete())
			return resp.Filename, nil
		}
	}
}
