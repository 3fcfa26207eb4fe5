package xbee

// Shared test doubles: an in-memory, non-blocking Link and a
// manually-advanced Clock, standing in for a real tty and wall clock.

type fakeLink struct {
	rx         []byte
	tx         [][]byte
	txFree     int
	ctsBlocked bool
	writeErr   error
}

func newFakeLink() *fakeLink {
	return &fakeLink{txFree: 4096}
}

func (f *fakeLink) feed(frame []byte) { f.rx = append(f.rx, frame...) }

func (f *fakeLink) Read(buf []byte) (int, error) {
	if len(f.rx) == 0 {
		return 0, nil
	}
	n := copy(buf, f.rx)
	f.rx = f.rx[n:]
	return n, nil
}

func (f *fakeLink) Write(buf []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	cp := append([]byte(nil), buf...)
	f.tx = append(f.tx, cp)
	return len(buf), nil
}

func (f *fakeLink) TxFree() int             { return f.txFree }
func (f *fakeLink) Flush() error            { return nil }
func (f *fakeLink) SetBreak(bool) error     { return nil }
func (f *fakeLink) CTS() (bool, error)      { return !f.ctsBlocked, nil }
func (f *fakeLink) SetRTS(bool) error       { return nil }
func (f *fakeLink) SetBaud(uint32) error    { return nil }

type fakeClock struct {
	ms, sec uint32
}

func (c *fakeClock) Milliseconds() uint32 { return c.ms }
func (c *fakeClock) Seconds() uint32      { return c.sec }

func (c *fakeClock) advance(seconds uint32) {
	c.sec += seconds
	c.ms += seconds * 1000
}

type recordingLogger struct {
	reasons []string
}

func (l *recordingLogger) Dropped(reason string) { l.reasons = append(l.reasons, reason) }

// buildFrame assembles a complete on-wire frame (delimiter, length,
// payload, checksum) from a payload, the same shape frameWriter
// produces and frameReader consumes.
func buildFrame(payload []byte) []byte {
	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, frameDelimiter, byte(len(payload)>>8), byte(len(payload)))
	buf = append(buf, payload...)
	buf = append(buf, checksum(payload))
	return buf
}
