package xbee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumRoundTrip(t *testing.T) {
	payload := []byte{0x88, 0x01, 'V', 'R', 0x00, 0x10, 0x0A}
	sum := checksum(payload)
	assert.True(t, verifyChecksum(payload, sum))
	assert.False(t, verifyChecksum(payload, sum^0xFF))
}

func TestFrameReaderParsesGoodFrame(t *testing.T) {
	r := newFrameReader(64)
	payload := []byte{0x88, 0x01, 'V', 'R', 0x00, 0x10, 0x0A}
	frame := buildFrame(payload)

	var got []byte
	var ok bool
	for _, b := range frame {
		got, ok = r.step(b, discardLogger{})
	}
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestFrameReaderResyncsAfterBadChecksum(t *testing.T) {
	log := &recordingLogger{}
	r := newFrameReader(64)

	bad := buildFrame([]byte{0x88, 0x01})
	bad[len(bad)-1] ^= 0xFF // corrupt the checksum byte

	for _, b := range bad {
		_, ok := r.step(b, log)
		assert.False(t, ok)
	}
	require.Contains(t, log.reasons, "bad checksum")

	good := buildFrame([]byte{0x88, 0x02, 'V', 'R', 0x00})
	var got []byte
	var ok bool
	for _, b := range good {
		got, ok = r.step(b, log)
	}
	require.True(t, ok)
	assert.Equal(t, []byte{0x88, 0x02, 'V', 'R', 0x00}, got)
}

func TestFrameReaderResyncsOnStrayStartByte(t *testing.T) {
	r := newFrameReader(64)
	payload := []byte{0x8A, 0x02}
	frame := buildFrame(payload)

	// Feed an extra 0x7E right where the length MSB is expected; the
	// parser should treat it as a fresh start and not desync.
	_, ok := r.step(frameDelimiter, discardLogger{})
	require.False(t, ok)
	_, ok = r.step(frameDelimiter, discardLogger{})
	require.False(t, ok)

	var got []byte
	for _, b := range frame[1:] {
		got, ok = r.step(b, discardLogger{})
	}
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestFrameReaderDropsZeroLengthFrame(t *testing.T) {
	log := &recordingLogger{}
	r := newFrameReader(64)
	for _, b := range []byte{frameDelimiter, 0x00, 0x00} {
		_, ok := r.step(b, log)
		assert.False(t, ok)
	}
	assert.Contains(t, log.reasons, "zero-length frame")
	assert.Equal(t, rxWaitStart, r.state)
}

func TestFrameReaderDropsOversizeFrame(t *testing.T) {
	log := &recordingLogger{}
	r := newFrameReader(4)
	for _, b := range []byte{frameDelimiter, 0x00, 0x10} {
		_, ok := r.step(b, log)
		assert.False(t, ok)
	}
	assert.Contains(t, log.reasons, "frame exceeds buffer capacity")
	assert.Equal(t, rxWaitStart, r.state)
}

func TestFrameWriterMessageTooBig(t *testing.T) {
	w := newFrameWriter(4)
	link := newFakeLink()
	err := w.write(link, []byte{0x08, 0x01, 'V', 'R'}, []byte{0, 0}, false)
	require.Error(t, err)
	var xerr *Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, KindMessageTooBig, xerr.Kind)
}

func TestFrameWriterBusyWhenCTSDeasserted(t *testing.T) {
	w := newFrameWriter(64)
	link := newFakeLink()
	link.ctsBlocked = true
	err := w.write(link, []byte{0x08, 0x01, 'V', 'R'}, nil, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Empty(t, link.tx)
}

func TestFrameWriterBusyOnInsufficientTxFree(t *testing.T) {
	w := newFrameWriter(64)
	link := newFakeLink()
	link.txFree = 1
	err := w.write(link, []byte{0x08, 0x01, 'V', 'R'}, nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestFrameWriterComposesExpectedBytes(t *testing.T) {
	w := newFrameWriter(64)
	link := newFakeLink()
	header := []byte{0x08, 0x01, 'V', 'R'}
	payload := []byte{}
	require.NoError(t, w.write(link, header, payload, false))
	require.Len(t, link.tx, 1)
	assert.Equal(t, buildFrame(header), link.tx[0])
}
