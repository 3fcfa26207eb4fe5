package xbee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, cfg Config) (*Device, *fakeLink, *fakeClock) {
	t.Helper()
	link := newFakeLink()
	clock := &fakeClock{}
	d, err := NewDevice(link, clock, cfg)
	require.NoError(t, err)
	return d, link, clock
}

func TestRequestHandleGoesStaleAfterRelease(t *testing.T) {
	d, _, _ := newTestDevice(t, Config{RequestTableSize: 2, MaxParamBytes: 8})

	h, err := d.NewRequest(atFirmwareVersion)
	require.NoError(t, err)
	assert.True(t, h.IsValid())

	s := d.requests.resolve(h)
	require.NotNil(t, s)
	d.requests.release(s)

	assert.Nil(t, d.requests.resolve(h))
}

func TestRequestTableAllocSweepsTimeoutsOnExhaustion(t *testing.T) {
	// Size 2: the device's lazy self-query claims one slot on this, its
	// first-ever request, leaving exactly one free for h1.
	d, _, clock := newTestDevice(t, Config{RequestTableSize: 2, MaxParamBytes: 8})

	h1, err := d.NewRequest(atFirmwareVersion)
	require.NoError(t, err)

	clock.advance(buildTimeoutSeconds + 1)

	h2, err := d.NewRequest(atHardwareVersion)
	require.NoError(t, err, "alloc should reclaim h1's slot once its build timeout has elapsed")
	assert.True(t, h2.IsValid())
	assert.Nil(t, d.requests.resolve(h1))
}

func TestRequestTableAllocReturnsNoSpace(t *testing.T) {
	// Size 2: the lazy self-query fills one slot on the first call below,
	// so the table is already full by the time the second call runs.
	d, _, _ := newTestDevice(t, Config{RequestTableSize: 2, MaxParamBytes: 8})

	_, err := d.NewRequest(atFirmwareVersion)
	require.NoError(t, err)

	_, err = d.NewRequest(atHardwareVersion)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSpace)
}

func TestSetParamBytesRejectsOversizeParam(t *testing.T) {
	d, _, _ := newTestDevice(t, Config{RequestTableSize: 2, MaxParamBytes: 4})

	h, err := d.NewRequest(atFirmwareVersion)
	require.NoError(t, err)

	err = d.SetParamBytes(h, make([]byte, 5))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMessageTooBig)
}

func TestSetParamEncodesShortestWidth(t *testing.T) {
	d, _, _ := newTestDevice(t, Config{RequestTableSize: 2, MaxParamBytes: 8})

	h, err := d.NewRequest(atFirmwareVersion)
	require.NoError(t, err)

	require.NoError(t, d.SetParam(h, 0x12))
	s := d.requests.resolve(h)
	require.NotNil(t, s)
	assert.Equal(t, []byte{0x12}, s.param[:s.paramLen])

	require.NoError(t, d.SetParam(h, 0x1234))
	assert.Equal(t, []byte{0x12, 0x34}, s.param[:s.paramLen])

	require.NoError(t, d.SetParam(h, 0x12345678))
	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78}, s.param[:s.paramLen])
}

func TestSetTargetClearsRemoteFlagOnNilTarget(t *testing.T) {
	d, _, _ := newTestDevice(t, Config{RequestTableSize: 2, MaxParamBytes: 8})

	h, err := d.NewRequest(atFirmwareVersion)
	require.NoError(t, err)

	require.NoError(t, d.SetTarget(h, &Target{IEEE: 0x1234}))
	s := d.requests.resolve(h)
	require.NotNil(t, s)
	assert.NotZero(t, s.flags&flagRemote)

	require.NoError(t, d.SetTarget(h, nil))
	assert.Zero(t, s.flags&flagRemote)
}
