//go:build linux

// Package xbeeserial implements xbee.Link over a real POSIX tty using
// raw termios/ioctl access (github.com/daedaluz/goserial). Every call
// is a single syscall that returns whatever progress is immediately
// available, never blocking on data, so it fits directly into a
// Tick-driven, single-threaded core.
package xbeeserial

import (
	"fmt"

	serial "github.com/daedaluz/goserial"
)

// Port is a Link backed by an open serial device.
type Port struct {
	port *serial.Port
}

var bauds = map[uint32]serial.CFlag{
	9600:    serial.B9600,
	19200:   serial.B19200,
	38400:   serial.B38400,
	57600:   serial.B57600,
	115200:  serial.B115200,
	230400:  serial.B230400,
	460800:  serial.B460800,
	921600:  serial.B921600,
}

// Open opens path as an 8N1 tty at baud, with RTS/CTS hardware flow
// control enabled and reads returning immediately with whatever is
// already buffered (VMIN=0, VTIME=0).
func Open(path string, baud uint32) (*Port, error) {
	opts := serial.NewOptions().SetReadTimeout(0)
	p, err := serial.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("xbeeserial: open %s: %w", path, err)
	}
	port := &Port{port: p}
	if err := port.configure(baud); err != nil {
		p.Close()
		return nil, err
	}
	return port, nil
}

func (p *Port) configure(baud uint32) error {
	attrs, err := p.port.GetAttr2()
	if err != nil {
		return fmt.Errorf("xbeeserial: get attrs: %w", err)
	}
	attrs.Cflag &^= serial.CBAUD | serial.CSIZE | serial.PARENB
	attrs.Cflag |= serial.CS8 | serial.CREAD | serial.CLOCAL | serial.CRTSCTS
	attrs.Iflag = 0
	attrs.Oflag = 0
	attrs.Lflag = 0
	attrs.Cc[serial.VMIN] = 0
	attrs.Cc[serial.VTIME] = 0

	rate, ok := bauds[baud]
	if !ok {
		return fmt.Errorf("xbeeserial: unsupported baud rate %d", baud)
	}
	attrs.Cflag |= rate
	attrs.ISpeed = uint32(rate)
	attrs.OSpeed = uint32(rate)

	if err := p.port.SetAttr2(serial.TCSANOW, attrs); err != nil {
		return fmt.Errorf("xbeeserial: set attrs: %w", err)
	}
	return nil
}

// Close releases the underlying file descriptor.
func (p *Port) Close() error { return p.port.Close() }

func (p *Port) Read(buf []byte) (int, error) {
	n, err := p.port.Read(buf)
	if err != nil {
		return n, fmt.Errorf("xbeeserial: read: %w", err)
	}
	return n, nil
}

func (p *Port) Write(buf []byte) (int, error) {
	n, err := p.port.Write(buf)
	if err != nil {
		return n, fmt.Errorf("xbeeserial: write: %w", err)
	}
	return n, nil
}

// TxFree is not exposed by the underlying tty layer (the kernel write
// queue depth isn't queried here); report a fixed headroom large
// enough for any single XBee API frame and let CTS gate real backpressure.
func (p *Port) TxFree() int { return 4096 }

func (p *Port) Flush() error {
	if err := p.port.Flush(serial.TCIOFLUSH); err != nil {
		return fmt.Errorf("xbeeserial: flush: %w", err)
	}
	return nil
}

func (p *Port) SetBreak(assert bool) error {
	var err error
	if assert {
		err = p.port.SetBreak()
	} else {
		err = p.port.ClearBreak()
	}
	if err != nil {
		return fmt.Errorf("xbeeserial: break: %w", err)
	}
	return nil
}

func (p *Port) CTS() (bool, error) {
	lines, err := p.port.GetModemLines()
	if err != nil {
		return false, fmt.Errorf("xbeeserial: modem lines: %w", err)
	}
	return lines&serial.TIOCM_CTS != 0, nil
}

func (p *Port) SetRTS(assert bool) error {
	var err error
	if assert {
		err = p.port.EnableModemLines(serial.TIOCM_RTS)
	} else {
		err = p.port.DisableModemLines(serial.TIOCM_RTS)
	}
	if err != nil {
		return fmt.Errorf("xbeeserial: rts: %w", err)
	}
	return nil
}

func (p *Port) SetBaud(baud uint32) error { return p.configure(baud) }
