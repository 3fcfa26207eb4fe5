package xbee

// AT-command request builder: fluent construction of a request and its
// submission through the frame transport. All mutation happens through
// Device methods taking a RequestHandle, since the table itself lives
// on the Device.

// NewRequest allocates a request-table slot for command and lazily
// starts the device's self-query if this is the first request ever
// created.
func (d *Device) NewRequest(command ATCommand) (RequestHandle, error) {
	d.ensureCommandLayer()
	h, _, err := d.requests.alloc(d, d.clock.Seconds(), d.clock.Seconds()+buildTimeoutSeconds)
	if err != nil {
		return RequestHandle{}, err
	}
	s := d.requests.resolve(h)
	s.command = command
	return h, nil
}

const buildTimeoutSeconds = 2

func (d *Device) mustResolve(op string, h RequestHandle) (*request, error) {
	s := d.requests.resolve(h)
	if s == nil {
		return nil, newErr(op, KindInvalidArgument, nil)
	}
	return s, nil
}

// SetCommand replaces the two-letter AT command on an existing handle.
func (d *Device) SetCommand(h RequestHandle, command ATCommand) error {
	s, err := d.mustResolve("Device.SetCommand", h)
	if err != nil {
		return err
	}
	s.command = command
	return nil
}

// SetCallback installs the response receiver for h.
func (d *Device) SetCallback(h RequestHandle, fn ResponseFunc) error {
	s, err := d.mustResolve("Device.SetCallback", h)
	if err != nil {
		return err
	}
	s.cb = fn
	return nil
}

// SetTarget binds h to a remote destination; a nil target switches it
// back to addressing the local device.
func (d *Device) SetTarget(h RequestHandle, target *Target) error {
	s, err := d.mustResolve("Device.SetTarget", h)
	if err != nil {
		return err
	}
	if target == nil {
		s.flags &^= flagRemote
		s.target = Target{}
		return nil
	}
	if !d.remoteSupported() {
		return newErr("Device.SetTarget", KindNotImplemented, nil)
	}
	s.flags |= flagRemote
	s.target = *target
	return nil
}

// SetParam encodes v into the shortest sufficient width (1, 2, or 4
// big-endian bytes) and uses it as h's parameter.
func (d *Device) SetParam(h RequestHandle, v uint32) error {
	s, err := d.mustResolve("Device.SetParam", h)
	if err != nil {
		return err
	}
	var buf []byte
	switch {
	case v <= 0xFF:
		buf = []byte{byte(v)}
	case v <= 0xFFFF:
		buf = []byte{byte(v >> 8), byte(v)}
	default:
		buf = []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	}
	return s.setParam(buf)
}

// SetParamBytes copies data directly as h's parameter.
func (d *Device) SetParamBytes(h RequestHandle, data []byte) error {
	s, err := d.mustResolve("Device.SetParamBytes", h)
	if err != nil {
		return err
	}
	return s.setParam(data)
}

// SetParamString copies the bytes of str (without a terminator) as h's
// parameter.
func (d *Device) SetParamString(h RequestHandle, str string) error {
	s, err := d.mustResolve("Device.SetParamString", h)
	if err != nil {
		return err
	}
	return s.setParam([]byte(str))
}

// SetFlags ORs flags (QueueChange / ReuseHandle) into h's user-visible
// flag set.
func (d *Device) SetFlags(h RequestHandle, flags requestFlags) error {
	s, err := d.mustResolve("Device.SetFlags", h)
	if err != nil {
		return err
	}
	s.flags |= flags & userFlagMask
	return nil
}

// ClearFlags clears flags from h's user-visible flag set.
func (d *Device) ClearFlags(h RequestHandle, flags requestFlags) error {
	s, err := d.mustResolve("Device.ClearFlags", h)
	if err != nil {
		return err
	}
	s.flags &^= flags & userFlagMask
	return nil
}

const (
	FlagQueueChange = flagQueueChange
	FlagReuseHandle = flagReuseHandle
)

// Send submits h's request through the frame transport. Frame-id is 0
// when no callback is registered, else the device's next sequential
// frame-id. On success the slot's timeout is armed (2s local / 180s
// remote); on ErrBusy the slot is left exactly as built so a later
// retry reuses it.
func (d *Device) Send(h RequestHandle) error {
	s, err := d.mustResolve("Device.Send", h)
	if err != nil {
		return err
	}
	return d.sendRequest(s, h)
}

func (d *Device) sendRequest(s *request, h RequestHandle) error {
	frameID := byte(0)
	if s.cb != nil || s.list != nil {
		frameID = d.nextFrameID()
	}

	var header []byte
	remote := s.flags&flagRemote != 0
	if remote {
		opts := byte(0x02)
		if s.flags&flagQueueChange != 0 {
			opts = 0x00
		}
		header = make([]byte, 0, 14)
		header = append(header, frameRemoteATCommand, frameID)
		header = appendUint64BE(header, s.target.IEEE)
		header = append(header, byte(s.target.Network>>8), byte(s.target.Network))
		header = append(header, opts, s.command[0], s.command[1])
	} else {
		ft := byte(frameLocalATCommand)
		if s.flags&flagQueueChange != 0 {
			ft = frameLocalATCommandQueue
		}
		header = []byte{ft, frameID, s.command[0], s.command[1]}
	}

	if err := d.writer.write(d.link, header, s.param[:s.paramLen], true); err != nil {
		return err
	}

	s.frameID = frameID
	timeout := d.config.LocalTimeout
	if remote {
		timeout = d.config.RemoteTimeout
	}
	s.timeout = d.clock.Seconds() + uint32(timeout.Seconds())

	if frameID == 0 && s.flags&flagReuseHandle == 0 {
		d.requests.release(s)
	}
	return nil
}

func appendUint64BE(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// QuickSet is the fire-and-forget convenience form: a local AT request
// with frame-id 0 carrying a single integer parameter.
func (d *Device) QuickSet(command ATCommand, v uint32) error {
	h, err := d.NewRequest(command)
	if err != nil {
		return err
	}
	if err := d.SetParam(h, v); err != nil {
		return err
	}
	return d.Send(h)
}

// QuickSetBytes is the byte-slice fire-and-forget convenience form. It
// returns the assigned frame-id so the caller can correlate an
// unsolicited response by hand if it wants to (it is non-zero only
// because a callback was installed to obtain one; the callback itself
// immediately releases the slot).
func (d *Device) QuickSetBytes(command ATCommand, data []byte) (byte, error) {
	h, err := d.NewRequest(command)
	if err != nil {
		return 0, err
	}
	if err := d.SetParamBytes(h, data); err != nil {
		return 0, err
	}
	if err := d.SetCallback(h, func(*Response) CallbackResult { return ResultDone }); err != nil {
		return 0, err
	}
	s, err := d.mustResolve("Device.QuickSetBytes", h)
	if err != nil {
		return 0, err
	}
	if err := d.sendRequest(s, h); err != nil {
		return 0, err
	}
	return s.frameID, nil
}
