package xbee

// Built-in self-query: a fixed CommandList that populates
// DeviceIdentity, reusing the same command-list engine an application
// would use for its own programs. Layout of the backing buffer:
//
//	0  HV  2   4  SH  4   16 CC  1   21 MY  2
//	2  VR  2   12 GT  2   17 EO  1   23 NI  20
//	8  SL  4   14 CT  2   18 AI  1
//	19 NP  2
const selfQueryBufSize = 43

const (
	selfQueryFullOffset     = 0 // HV..NI: everything, for a cold device
	selfQueryVolatileOffset = 8 // AI..NI: only what a rejoin can change
)

func newSelfQueryList(d *Device) *CommandList {
	entries := []CommandEntry{
		{Command: atHardwareVersion, Type: EntryCopyBE, Offset: 0, Length: 2},
		{Command: atFirmwareVersion, Type: EntryCopyBE, Offset: 2, Length: 2},
		{Command: atSerialNumberHigh, Type: EntryCopyBE, Offset: 4, Length: 4},
		{Command: atSerialNumberLow, Type: EntryCopyBE, Offset: 8, Length: 4},
		{Command: atGuardTime, Type: EntryCopyBE, Offset: 12, Length: 2},
		{Command: atCommandModeTimeout, Type: EntryCopyBE, Offset: 14, Length: 2},
		{Command: atCommandSequenceCharacter, Type: EntryCopyRaw, Offset: 16, Length: 1},
		{Command: atEncryptionOptions, Type: EntryCopyRaw, Offset: 17, Length: 1},
		{Command: atAssociationIndication, Type: EntryCopyRaw, Offset: 18, Length: 1},
		{Command: atMaximumRFPayloadBytes, Type: EntryCopyBE, Offset: 19, Length: 2},
		{Command: at16BitNetworkAddress, Type: EntryCopyBE, Offset: 21, Length: 2},
		{Command: atNodeIdentifier, Type: EntryCopyRaw, Offset: 23, Length: 20},
	}
	list := NewCommandList(entries, make([]byte, selfQueryBufSize), nil)
	list.done = func(resp *Response) { d.selfQueryDone(resp) }
	return list
}

// startSelfQuery (re)launches the self-query list from entry index
// offset. A query already in flight is not interrupted; it is instead
// flagged (QueryNeedsRefresh) to run a volatile-field refresh once it
// completes.
func (d *Device) startSelfQuery(offset int) {
	if d.selfQuery == nil {
		d.selfQuery = newSelfQueryList(d)
	}
	if d.flags.QueryInProgress {
		d.flags.QueryNeedsRefresh = true
		return
	}
	d.flags.QueryStarted = true
	d.flags.QueryInProgress = true
	d.flags.QueryDone = false

	list := d.selfQuery
	list.dev = d
	list.target = nil
	list.status = ListRunning
	if err := list.issue(d, offset); err != nil {
		d.flags.QueryInProgress = false
		d.config.Logger.Dropped("self-query failed to start")
	}
}

// selfQueryDone is the self-query list's ListDoneFunc: it snapshots the
// backing buffer into DeviceIdentity on success, and re-arms a volatile
// refresh if one was requested while this run was in flight.
func (d *Device) selfQueryDone(resp *Response) {
	d.flags.QueryInProgress = false

	if d.selfQuery.Status() != ListDone {
		d.flags.QueryError = true
		d.maybeRefresh()
		return
	}

	buf := d.selfQuery.base
	d.id.HardwareVersion = uint16(readHostUint(buf, 0, 2))
	fw := uint16(readHostUint(buf, 2, 2))
	d.id.FirmwareVersion = fw
	d.id.NodeType = nodeTypeFromFirmware(fw)
	d.id.Stack = stackProtocolFromFirmware(fw)
	d.id.SerialHigh = readHostUint(buf, 4, 4)
	d.id.SerialLow = readHostUint(buf, 8, 4)
	d.id.GuardTime = uint16(readHostUint(buf, 12, 2))
	d.id.CommandTimeout = uint16(readHostUint(buf, 14, 2))
	d.id.CommandChar = buf[16]
	d.id.EncryptionOpts = buf[17]
	d.id.Association = buf[18]
	d.id.MaxRFPayload = uint16(readHostUint(buf, 19, 2))
	d.id.NetworkAddress = uint16(readHostUint(buf, 21, 2))
	d.id.NodeIdentifier = trimTrailingNulls(readBytes(buf, 23, 20))

	// ATAI 0 means "successfully joined"; any other value is some flavor
	// of scanning/joining/no-PAN-found. The 0x02 bit of EO gates whether
	// the joined network requires authenticated (trust-center) security.
	d.flags.Joined = d.id.Association == 0
	d.flags.Authenticated = d.id.EncryptionOpts&0x02 != 0

	d.flags.QueryError = false
	d.flags.QueryDone = true
	d.maybeRefresh()
}

func trimTrailingNulls(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
