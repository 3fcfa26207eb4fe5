package xbee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadWriteHostUintRoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	writeHostUint(buf, 2, 4, 0xAABBCCDD)
	assert.Equal(t, uint32(0xAABBCCDD), readHostUint(buf, 2, 4))
}

func TestReadCStringStopsAtNUL(t *testing.T) {
	buf := []byte{'h', 'i', 0, 'x', 'x'}
	assert.Equal(t, "hi", readCString(buf, 0))
	assert.Equal(t, "", readCString(buf, 10))
}

func TestCopyRawIntoZeroFillsShortSource(t *testing.T) {
	buf := make([]byte, 4)
	copyRawInto(buf, 0, 4, []byte{1, 2})
	assert.Equal(t, []byte{1, 2, 0, 0}, buf)
}

func TestCopyRawIntoTruncatesLongSource(t *testing.T) {
	buf := make([]byte, 2)
	copyRawInto(buf, 0, 2, []byte{1, 2, 3, 4})
	assert.Equal(t, []byte{1, 2}, buf)
}

func TestEncodeBETruncatesToWidth(t *testing.T) {
	assert.Equal(t, []byte{0x34}, encodeBE(0x1234, 1))
	assert.Equal(t, []byte{0x12, 0x34}, encodeBE(0x1234, 2))
	assert.Equal(t, []byte{0x00, 0x00, 0x12, 0x34}, encodeBE(0x1234, 4))
}

func TestReadBytesOutOfRangeReturnsNil(t *testing.T) {
	buf := make([]byte, 4)
	assert.Nil(t, readBytes(buf, 3, 4))
	assert.Nil(t, readBytes(buf, -1, 1))
}
