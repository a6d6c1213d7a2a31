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

package testlog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ribatlas/ribatlas/pkg/log/testlog"
)

func TestNonStringKey(t *testing.T) {
	logger := testlog.NewLogger(t)
	assert.NotPanics(t, func() {
		logger.Info("message", 42, "value")
		logger.New(7, "ctx").Debug("derived")
	})
}
