package xbee

// Command-list engine: runs an ordered program of AT queries/sets
// against a device, feeding results into a caller-provided base buffer
// with per-entry copy/convert/callback rules. This is the most
// intricate mechanism in the core.

// EntryType selects the per-entry action.
type EntryType int

const (
	EntryNone EntryType = iota
	EntryCopyRaw
	EntryCopyBE
	EntrySetRaw
	EntrySetString
	EntrySetBE
	EntrySetImmediate
	EntryTerminate
)

// EntryFunc runs after an entry's default copy action, receiving the
// response, the entry, and the list's base buffer. It is free to read
// or further mutate base once the default action has written to it.
//
// base is a flat byte buffer addressed by each entry's Offset/Length,
// replacing struct-offset pointer arithmetic with bounds-checked slice
// access. See DESIGN.md.
type EntryFunc func(resp *Response, entry *CommandEntry, base []byte)

// CommandEntry is one step of a command-list program.
type CommandEntry struct {
	Command ATCommand
	Flags   requestFlags // QueueChange / ReuseHandle forwarded to the request
	Type    EntryType
	Offset  int   // byte offset into base for Copy*/Set* types
	Length  int   // byte width for Copy*/Set* types
	Imm     byte  // immediate parameter for EntrySetImmediate
	Fn      EntryFunc
}

// ListStatus is the observable state of a CommandList.
type ListStatus int

const (
	ListRunning ListStatus = iota
	ListDone
	ListTimeout
	ListError
)

func (s ListStatus) String() string {
	switch s {
	case ListRunning:
		return "Running"
	case ListDone:
		return "Done"
	case ListTimeout:
		return "Timeout"
	case ListError:
		return "Error"
	}
	return "Unknown"
}

// ListDoneFunc is invoked exactly once when a list finishes, whether by
// reaching the sentinel, timing out, or erroring on a command mismatch.
type ListDoneFunc func(resp *Response)

// CommandList drives entries in order against one device.
type CommandList struct {
	entries []CommandEntry
	base    []byte
	done    ListDoneFunc
	target  *Target

	index  int
	status ListStatus
	dev    *Device
	handle RequestHandle
}

// NewCommandList builds a program against base, a flat buffer entries
// read from and write into by offset. entries need not include a
// sentinel; the engine treats running off the end of entries the same
// as an explicit all-zero-command terminator.
func NewCommandList(entries []CommandEntry, base []byte, done ListDoneFunc) *CommandList {
	cp := make([]CommandEntry, len(entries))
	copy(cp, entries)
	return &CommandList{entries: cp, base: base, done: done}
}

// Status reports the list's current lifecycle state.
func (l *CommandList) Status() ListStatus { return l.status }

// RunList starts (or restarts) list against dev, optionally addressed
// at target (nil for the local device).
func (d *Device) RunList(list *CommandList, target *Target) error {
	list.dev = d
	list.target = target
	list.index = 0
	list.status = ListRunning
	return list.issue(d, 0)
}

// issue creates and sends the request for entries[idx], or finishes the
// list if idx runs past the last real entry.
func (l *CommandList) issue(d *Device, idx int) error {
	if idx >= len(l.entries) || l.entries[idx].Command.IsZero() {
		l.finish(ListDone, nil)
		return nil
	}
	entry := &l.entries[idx]
	l.index = idx

	h, err := d.NewRequest(entry.Command)
	if err != nil {
		l.finish(ListError, nil)
		return err
	}
	if l.target != nil {
		if err := d.SetTarget(h, l.target); err != nil {
			l.finish(ListError, nil)
			return err
		}
	}
	if err := l.setParam(d, h, entry); err != nil {
		l.finish(ListError, nil)
		return err
	}
	if entry.Flags != 0 {
		_ = d.SetFlags(h, entry.Flags)
	}

	s, err := d.mustResolve("CommandList.issue", h)
	if err != nil {
		l.finish(ListError, nil)
		return err
	}
	l.handle = h

	if entry.Type == EntryTerminate {
		// Discard any response: the slot is not linked to the list, so it
		// is sent with frame-id 0; complete once the write itself succeeds.
		if err := d.sendRequest(s, h); err != nil {
			return err
		}
		l.finish(ListDone, nil)
		return nil
	}

	s.list = l
	s.listEntry = entry
	return d.sendRequest(s, h)
}

func (l *CommandList) setParam(d *Device, h RequestHandle, entry *CommandEntry) error {
	switch entry.Type {
	case EntrySetRaw:
		return d.SetParamBytes(h, readBytes(l.base, entry.Offset, entry.Length))
	case EntrySetString:
		return d.SetParamString(h, readCString(l.base, entry.Offset))
	case EntrySetBE:
		v := readHostUint(l.base, entry.Offset, entry.Length)
		return d.SetParamBytes(h, encodeBE(v, entry.Length))
	case EntrySetImmediate:
		return d.SetParamBytes(h, []byte{entry.Imm})
	default:
		return nil
	}
}

// onResponse advances the list after a reply: check the command and
// status, apply the entry's copy action and optional callback, release
// the slot, and issue the next entry.
func (l *CommandList) onResponse(resp *Response, entry *CommandEntry) {
	d := l.dev
	if resp.Command != entry.Command {
		d.releaseHandle(resp.Handle)
		l.finish(ListError, resp)
		return
	}
	if resp.Flags.Status() != StatusOK {
		d.releaseHandle(resp.Handle)
		l.finish(ListError, resp)
		return
	}

	switch entry.Type {
	case EntryCopyRaw:
		copyRawInto(l.base, entry.Offset, entry.Length, resp.Value)
	case EntryCopyBE:
		writeHostUint(l.base, entry.Offset, entry.Length, resp.Numeric())
	}

	if entry.Fn != nil {
		entry.Fn(resp, entry, l.base)
	}

	s := d.requests.resolve(resp.Handle)
	if s == nil {
		return
	}
	d.requests.release(s)

	nextIdx := l.index + 1
	if err := l.issue(d, nextIdx); err != nil {
		d.config.Logger.Dropped("command list advance failed")
	}
}

// onTimeout short-circuits the list to ListTimeout.
func (l *CommandList) onTimeout(resp *Response, entry *CommandEntry) {
	l.finish(ListTimeout, resp)
}

func (l *CommandList) finish(status ListStatus, resp *Response) {
	if l.status != ListRunning {
		return
	}
	l.status = status
	if l.done != nil {
		l.done(resp)
	}
}
