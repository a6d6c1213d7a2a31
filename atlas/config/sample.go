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

package config

const metricsSample = `# Address the Prometheus exporter listens on (host:port). Empty disables
# the exporter. (default "")
prometheus = ""
`

const fetchSample = `# Root of the archive the RIB dumps are downloaded from.
# (default "https://routeviews.org/bgpdata")
base_url = "https://routeviews.org/bgpdata"

# Directory downloaded dumps are stored in. (default ".")
cache_dir = "."
`

const outputSample = `# Directory the artifacts are written to. (default ".")
dir = "."

# Write zstd-compressed artifact variants next to the plain ones.
# (default false)
compress = false

# Zstd compression level for compressed artifacts, 1-22. (default 8)
compression_level = 8
`

const synthesisSample = `# Number of ASNs processed concurrently during regex synthesis.
# Zero means one worker per available CPU. (default 0)
workers = 0
`
