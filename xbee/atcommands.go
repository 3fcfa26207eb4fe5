package xbee

// AT command catalog used by the built-in self-query program
// (selfquery.go). Unexported since application code constructs its own
// ATCommand values freely; these exist so the core's own command lists
// read like any other caller's.

var (
	// Firmware Version. Read firmware version of the module. The
	// firmware version returns 4 hexadecimal digits "ABCD": ABC is the
	// main release number, D the revision. "B" is a variant designator.
	// Parameter Range: 0 - 0xFFFF [read-only]
	atFirmwareVersion = ATCommand{'V', 'R'}

	// Hardware Version. Read the hardware version of the module. The
	// upper byte is unique per module type, the lower byte is the
	// hardware revision.
	// Parameter Range: 0 - 0xFFFF [read-only]
	atHardwareVersion = ATCommand{'H', 'V'}

	// Serial Number High. Read the high 32 bits of the module's unique
	// 64-bit IEEE address.
	atSerialNumberHigh = ATCommand{'S', 'H'}

	// Serial Number Low. Read the low 32 bits of the module's unique
	// 64-bit IEEE address.
	atSerialNumberLow = ATCommand{'S', 'L'}

	// Guard Time. Set/read the period of silence (in milliseconds,
	// before and after the three-plus-character command sequence) that
	// is used to enter AT command mode.
	// Default: 0x3E8 (1000ms)
	atGuardTime = ATCommand{'G', 'T'}

	// Command Mode Timeout. Set/read the period of inactivity (in
	// 100ms increments) after which the module automatically exits AT
	// command mode and returns to idle/transparent mode.
	// Default: 0x64 (10s)
	atCommandModeTimeout = ATCommand{'C', 'T'}

	// Command Sequence Character. Set/read the ASCII character used to
	// enter AT command mode.
	// Default: 0x2B ('+')
	atCommandSequenceCharacter = ATCommand{'C', 'C'}

	// Encryption Options. Configure options for encryption.
	atEncryptionOptions = ATCommand{'E', 'O'}

	// Association Indication. Read information regarding the last
	// join/association attempt; 0x00 indicates a successful join.
	atAssociationIndication = ATCommand{'A', 'I'}

	// Maximum RF Payload Bytes. Read the maximum number of RF payload
	// bytes that can be sent in a single over-the-air transmission.
	atMaximumRFPayloadBytes = ATCommand{'N', 'P'}

	// 16-bit Network Address. Read the module's current 16-bit network
	// address. 0xFFFE means the module has not joined a network.
	at16BitNetworkAddress = ATCommand{'M', 'Y'}

	// Node Identifier. Set/read a printable-ASCII string identifier,
	// up to 20 bytes.
	atNodeIdentifier = ATCommand{'N', 'I'}
)
