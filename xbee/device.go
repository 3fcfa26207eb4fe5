package xbee

import "time"

// Device facade: owns device state, binds the framing, request, and
// command-list layers together, and hosts the built-in self-query
// program.

// Config is the compile/init-time configuration surface.
// Zero-valued fields are filled with defaults by WithDefaults.
type Config struct {
	DispatchPerTick  int
	RequestTableSize int
	MaxParamBytes    int
	LocalTimeout     time.Duration
	RemoteTimeout    time.Duration
	ReuseExtension   time.Duration
	MaxRFPayload     int
	FrameOverhead    int

	// Handlers is the application-supplied, fixed frame-handler table.
	// The device appends its own internal response and modem-status
	// handlers after these at construction time; the combined table is
	// never mutated again.
	Handlers []Handler

	// Logger receives diagnostic (non-protocol) events. A nil Logger
	// discards everything.
	Logger eventLogger

	// OnReset, when set, is invoked by Device.Reset to assert, hold,
	// and release the module's hardware reset line.
	OnReset func()
	// OnProbeAwake is an optional awake (wake) pin probe. It is kept
	// with the configuration; no code in this package calls it.
	OnProbeAwake func() bool
}

// WithDefaults returns a copy of c with zero fields replaced by
// platform defaults.
func (c Config) WithDefaults() Config {
	if c.DispatchPerTick == 0 {
		c.DispatchPerTick = 5
	}
	if c.RequestTableSize == 0 {
		c.RequestTableSize = 2
	}
	if c.MaxParamBytes == 0 {
		c.MaxParamBytes = 48
	}
	if c.LocalTimeout == 0 {
		c.LocalTimeout = 2 * time.Second
	}
	if c.RemoteTimeout == 0 {
		c.RemoteTimeout = 180 * time.Second
	}
	if c.ReuseExtension == 0 {
		c.ReuseExtension = 5 * time.Second
	}
	if c.MaxRFPayload == 0 {
		c.MaxRFPayload = 128
	}
	if c.FrameOverhead == 0 {
		c.FrameOverhead = 18
	}
	if c.Logger == nil {
		c.Logger = discardLogger{}
	}
	return c
}

// DeviceFlags is the device's capability/mode flag set.
type DeviceFlags struct {
	QueryStarted       bool
	QueryInProgress    bool
	QueryDone          bool
	QueryError         bool
	QueryNeedsRefresh  bool
	CommandLayerInit   bool
	tickGuard          bool // re-entrancy guard, not exposed
	Joined             bool
	Authenticated      bool
}

// DeviceIdentity is the read-only snapshot populated by the built-in
// self-query.
type DeviceIdentity struct {
	HardwareVersion uint16
	FirmwareVersion uint16
	SerialHigh      uint32
	SerialLow       uint32
	GuardTime       uint16
	CommandTimeout  uint16
	CommandChar     byte
	EncryptionOpts  byte
	Association     byte
	MaxRFPayload    uint16
	NetworkAddress  uint16
	NodeIdentifier  string

	NodeType NodeType
	Stack    StackProtocol
}

func (d DeviceIdentity) IEEE() uint64 {
	return uint64(d.SerialHigh)<<32 | uint64(d.SerialLow)
}

// Device is a long-lived handle representing one attached radio. It
// has exactly one owner and is not cloneable; construct with NewDevice
// and always use it by pointer.
type Device struct {
	link   Link
	clock  Clock
	config Config

	reader   *frameReader
	writer   *frameWriter
	requests *requestTable
	handlers *HandlerTable

	frameID byte
	flags   DeviceFlags
	id      DeviceIdentity

	selfQuery *CommandList
}

// NewDevice constructs a Device bound to link and clock. cfg is
// resolved with WithDefaults before use.
func NewDevice(link Link, clock Clock, cfg Config) (*Device, error) {
	if link == nil || clock == nil {
		return nil, newErr("NewDevice", KindInvalidArgument, nil)
	}
	cfg = cfg.WithDefaults()
	if cfg.RequestTableSize < 1 || cfg.MaxParamBytes < 1 {
		return nil, newErr("NewDevice", KindInvalidArgument, nil)
	}

	d := &Device{
		link:     link,
		clock:    clock,
		config:   cfg,
		requests: newRequestTable(cfg.RequestTableSize, cfg.MaxParamBytes),
	}
	maxFrame := cfg.MaxRFPayload + cfg.FrameOverhead
	d.reader = newFrameReader(maxFrame)
	d.writer = newFrameWriter(maxFrame)

	all := make([]Handler, 0, len(cfg.Handlers)+3)
	all = append(all, cfg.Handlers...)
	all = append(all,
		Handler{FrameType: frameLocalATResponse, FrameID: 0, Fn: (*Device).handleATResponse},
		Handler{FrameType: frameRemoteATResponse, FrameID: 0, Fn: (*Device).handleATResponse},
		Handler{FrameType: frameModemStatus, FrameID: 0, Fn: (*Device).handleModemStatus},
	)
	ht, err := NewHandlerTable(all)
	if err != nil {
		return nil, err
	}
	d.handlers = ht
	return d, nil
}

// Identity returns a snapshot of the self-query-populated fields.
func (d *Device) Identity() DeviceIdentity { return d.id }

// State returns a snapshot of the device's capability/mode flags.
func (d *Device) State() DeviceFlags { return d.flags }

// SetLogger replaces the device's diagnostic logger.
func (d *Device) SetLogger(l eventLogger) {
	if l == nil {
		l = discardLogger{}
	}
	d.config.Logger = l
}

// nextFrameID implements the rolling, never-zero frame-id counter.
func (d *Device) nextFrameID() byte {
	if d.frameID == 255 {
		d.frameID = 1
	} else {
		d.frameID++
	}
	return d.frameID
}

func (d *Device) ensureCommandLayer() {
	if d.flags.CommandLayerInit {
		return
	}
	d.flags.CommandLayerInit = true
	if !d.flags.QueryStarted {
		d.startSelfQuery(selfQueryFullOffset)
	}
}

// StartSelfQuery forces the built-in self-query to begin now instead of
// waiting for the application's first NewRequest call. It is a no-op
// once the command layer is already initialized.
func (d *Device) StartSelfQuery() { d.ensureCommandLayer() }

// Tick is the single entry point the application calls from its event
// loop. It advances the Rx parser, parses and dispatches up to
// DispatchPerTick frames (a multicast frame matching several handlers
// still counts once), and services the request table's timeout sweep.
// The returned int is the number of frames parsed this call.
func (d *Device) Tick() (int, error) {
	if d.flags.tickGuard {
		return 0, newErr("Device.Tick", KindBusy, nil)
	}
	d.flags.tickGuard = true
	defer func() { d.flags.tickGuard = false }()

	frames := 0
	one := make([]byte, 1)
	for frames < d.config.DispatchPerTick {
		n, err := d.link.Read(one)
		if err != nil {
			return frames, newErr("Device.Tick", KindBusy, err)
		}
		if n == 0 {
			break
		}
		frame, ok := d.reader.step(one[0], d.config.Logger)
		if !ok {
			continue
		}
		d.handlers.dispatch(d, frame)
		frames++
	}

	d.sweepTimeouts(d.clock.Seconds())
	return frames, nil
}

func (d *Device) sweepTimeouts(now uint32) {
	for i := range d.requests.slots {
		s := &d.requests.slots[i]
		if s.device == nil {
			continue
		}
		if !elapsed(now, s.timeout) {
			continue
		}
		d.fireTimeout(s, d.requests.handle(i))
	}
}

func (d *Device) fireTimeout(s *request, h RequestHandle) {
	resp := &Response{Device: d, Handle: h, Command: s.command, Flags: flagTimeout}
	cb := s.cb
	list := s.list
	entry := s.listEntry
	result := ResultDone
	if cb != nil {
		result = cb(resp)
	}
	if list != nil {
		list.onTimeout(resp, entry)
	}
	if result == ResultReuse {
		s.timeout = d.clock.Seconds() + uint32(d.config.ReuseExtension.Seconds())
		return
	}
	d.requests.release(s)
	d.maybeRefresh()
}

// handleATResponse is the internal handler registered for both local
// and remote AT response frame types.
func (d *Device) handleATResponse(frame []byte) CallbackResult {
	remote := frame[0] == frameRemoteATResponse
	var frameID byte
	var command ATCommand
	var statusByte byte
	var value []byte
	var source *Target

	if remote {
		if len(frame) < 15 {
			return ResultDone
		}
		frameID = frame[1]
		ieee := beUint64(frame[2:10])
		net := uint16(frame[10])<<8 | uint16(frame[11])
		source = &Target{IEEE: ieee, Network: net}
		command = ATCommand{frame[12], frame[13]}
		statusByte = frame[14]
		if len(frame) > 15 {
			value = frame[15:]
		}
	} else {
		if len(frame) < 5 {
			return ResultDone
		}
		frameID = frame[1]
		command = ATCommand{frame[2], frame[3]}
		statusByte = frame[4]
		if len(frame) > 5 {
			value = frame[5:]
		}
	}

	for i := range d.requests.slots {
		s := &d.requests.slots[i]
		if s.device != d || s.frameID == 0 || s.frameID != frameID {
			continue
		}
		if (s.flags&flagRemote != 0) != remote {
			continue
		}
		if s.command != command {
			continue
		}
		d.deliverResponse(s, d.requests.handle(i), command, statusByte, value, source)
		return ResultDone
	}
	return ResultDone
}

func (d *Device) deliverResponse(s *request, h RequestHandle, command ATCommand, statusByte byte, value []byte, source *Target) {
	flags := ResponseFlags(statusByte & 0x4F) // status nibble + RSSI-invalid bit
	resp := &Response{Device: d, Handle: h, Command: command, Flags: flags, Value: value, Source: source}
	cb := s.cb
	list := s.list
	entry := s.listEntry
	result := ResultDone
	if cb != nil {
		result = cb(resp)
	}
	if list != nil {
		list.onResponse(resp, entry)
		return // the list owns slot release/reuse for its own steps
	}
	if result == ResultReuse {
		s.timeout = d.clock.Seconds() + uint32(d.config.ReuseExtension.Seconds())
		return
	}
	d.requests.release(s)
}

// handleModemStatus implements the self-query refresh-trigger rules.
func (d *Device) handleModemStatus(frame []byte) CallbackResult {
	if len(frame) < 2 {
		return ResultDone
	}
	switch ModemStatus(frame[1]) {
	case ModemJoinedNetwork, ModemKeyEstablished, ModemCoordinatorStarted:
		d.flags.Joined = true
		d.startSelfQuery(selfQueryVolatileOffset)
	case ModemDisassociated, ModemHardwareReset, ModemWatchdogReset:
		d.flags.Joined = false
		d.id.NetworkAddress = 0
	}
	return ResultDone
}

func (d *Device) maybeRefresh() {
	if d.flags.QueryNeedsRefresh && !d.flags.QueryInProgress {
		d.flags.QueryNeedsRefresh = false
		d.startSelfQuery(selfQueryVolatileOffset)
	}
}

// Reset invokes the configured reset callback (assert/wait/release) if
// present, clears join state, and does not synthesize a modem-status
// frame.
func (d *Device) Reset() {
	if d.config.OnReset != nil {
		d.config.OnReset()
	}
	d.flags.Joined = false
	d.id.NetworkAddress = 0
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
