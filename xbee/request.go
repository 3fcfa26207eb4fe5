package xbee

import "strconv"

// Request table: allocates and tracks outstanding AT-command requests,
// assigns frame identifiers, ages slots out on timeout, and releases
// them on a terminal callback result.

// requestFlags are the mutable, user-settable bits on a request plus
// the internal ones the core itself manages.
type requestFlags byte

const (
	flagRemote      requestFlags = 1 << iota // bound to a remote Target
	flagQueueChange                          // use 0x09 (queued) instead of 0x08
	flagReuseHandle                          // do not auto-release after a frame-id-0 send
)

const userFlagMask = flagQueueChange | flagReuseHandle

// request is one slot of the fixed request table. A free slot has
// device == nil but keeps its seq so stale handles miss validation.
type request struct {
	seq     byte
	device  *Device // nil == free
	timeout uint32  // absolute seconds deadline
	flags   requestFlags
	param   []byte // len == paramLen, cap == maxParamBytes
	paramLen int
	command ATCommand
	cb      ResponseFunc
	frameID byte // frame-id last assigned when sent; 0 before send or when no reply wanted
	target  Target

	// listEntry links this slot back to an in-flight CommandList step,
	// nil for a plain AT request created via Device.NewRequest.
	list      *CommandList
	listEntry *CommandEntry
}

// RequestHandle is an opaque reference to a request-table slot, valid
// only while the slot's sequence byte matches.
type RequestHandle struct {
	idx   uint16
	seq   byte
	valid bool
}

// IsValid reports whether h was ever produced by a successful
// allocation. It does not by itself guarantee the slot is still
// assigned to h; only the owning Device can confirm that (it checks
// the sequence byte on every operation).
func (h RequestHandle) IsValid() bool { return h.valid }

func (h RequestHandle) String() string {
	if !h.valid {
		return "RequestHandle{invalid}"
	}
	return "RequestHandle{" + strconv.Itoa(int(h.idx)) + "," + strconv.Itoa(int(h.seq)) + "}"
}

type requestTable struct {
	slots     []request
	maxParam  int
}

func newRequestTable(size, maxParam int) *requestTable {
	t := &requestTable{slots: make([]request, size), maxParam: maxParam}
	for i := range t.slots {
		t.slots[i].param = make([]byte, maxParam)
	}
	return t
}

// handle packs (index, sequence) into the opaque handle type.
func (t *requestTable) handle(idx int) RequestHandle {
	return RequestHandle{idx: uint16(idx), seq: t.slots[idx].seq, valid: true}
}

// resolve validates h against the live table and returns a pointer to
// its slot, or nil if h is stale or out of range.
func (t *requestTable) resolve(h RequestHandle) *request {
	if !h.valid || int(h.idx) >= len(t.slots) {
		return nil
	}
	s := &t.slots[h.idx]
	if s.device == nil || s.seq != h.seq {
		return nil
	}
	return s
}

// alloc implements the allocation algorithm: linear scan, one eager
// timeout sweep on exhaustion, then NoSpace.
func (t *requestTable) alloc(dev *Device, now uint32, buildTimeout uint32) (RequestHandle, *request, error) {
	if idx := t.firstFree(); idx >= 0 {
		return t.bind(idx, dev, buildTimeout), &t.slots[idx], nil
	}
	dev.sweepTimeouts(now)
	if idx := t.firstFree(); idx >= 0 {
		return t.bind(idx, dev, buildTimeout), &t.slots[idx], nil
	}
	return RequestHandle{}, nil, newErr("requestTable.alloc", KindNoSpace, nil)
}

func (t *requestTable) firstFree() int {
	for i := range t.slots {
		if t.slots[i].device == nil {
			return i
		}
	}
	return -1
}

func (t *requestTable) bind(idx int, dev *Device, timeout uint32) RequestHandle {
	s := &t.slots[idx]
	param := s.param[:0]
	*s = request{seq: s.seq, param: param, device: dev, timeout: timeout}
	return t.handle(idx)
}

// release frees the slot and rolls its sequence byte so any handle
// presented afterward fails validation.
func (t *requestTable) release(s *request) {
	s.device = nil
	s.cb = nil
	s.list = nil
	s.listEntry = nil
	s.seq++
}

// releaseHandle releases h's slot if it is still live; a no-op for an
// already-stale or invalid handle.
func (d *Device) releaseHandle(h RequestHandle) {
	if s := d.requests.resolve(h); s != nil {
		d.requests.release(s)
	}
}

func (s *request) setParam(data []byte) error {
	if len(data) > cap(s.param) {
		return newErr("request.setParam", KindMessageTooBig, nil)
	}
	s.param = append(s.param[:0], data...)
	s.paramLen = len(data)
	return nil
}
