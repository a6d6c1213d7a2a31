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

package mrt_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ribatlas/ribatlas/pkg/mrt"
)

func record(ts uint32, typ, subtype uint16, payload []byte) []byte {
	buf := make([]byte, mrt.HeaderLen+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], ts)
	binary.BigEndian.PutUint16(buf[4:6], typ)
	binary.BigEndian.PutUint16(buf[6:8], subtype)
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(payload)))
	copy(buf[12:], payload)
	return buf
}

func TestReaderNext(t *testing.T) {
	stream := append(
		record(1700000000, mrt.TypeTableDump2, mrt.SubtypePeerIndexTable, []byte{1, 2, 3}),
		record(1700000002, mrt.TypeTableDump2, mrt.SubtypeRIBIPv4Unicast, nil)...,
	)
	r := mrt.NewReader(bytes.NewReader(stream))

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, mrt.TypeTableDump2, rec.Type)
	assert.Equal(t, mrt.SubtypePeerIndexTable, rec.Subtype)
	assert.Equal(t, []byte{1, 2, 3}, rec.Payload)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), rec.Timestamp)

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, mrt.SubtypeRIBIPv4Unicast, rec.Subtype)
	assert.Empty(t, rec.Payload)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, int64(len(stream)), r.Offset())
}

func TestReaderTruncated(t *testing.T) {
	full := record(0, mrt.TypeTableDump2, mrt.SubtypeRIBIPv4Unicast, []byte{1, 2, 3, 4})

	overLong := record(0, mrt.TypeTableDump2, mrt.SubtypeRIBIPv4Unicast, []byte{1})
	binary.BigEndian.PutUint32(overLong[8:12], 100)

	testCases := map[string][]byte{
		"mid header":      full[:7],
		"mid payload":     full[:mrt.HeaderLen+2],
		"length past end": overLong,
	}
	for name, stream := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := mrt.NewReader(bytes.NewReader(stream))
			_, err := r.Next()
			assert.ErrorIs(t, err, mrt.ErrTruncated)
		})
	}
}

func TestReaderTruncatedAfterValidRecord(t *testing.T) {
	valid := record(0, mrt.TypeTableDump2, mrt.SubtypePeerIndexTable, []byte{1, 2})
	stream := append(valid, record(0, mrt.TypeTableDump2, mrt.SubtypeRIBIPv4Unicast,
		[]byte{9, 9, 9, 9})[:mrt.HeaderLen+1]...)

	r := mrt.NewReader(bytes.NewReader(stream))
	_, err := r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.ErrorIs(t, err, mrt.ErrTruncated)
}
