package xbee

import "fmt"

// Wire frame types this core understands or produces. Values with the
// high bit set are frames received from the module; values with the
// high bit clear are frames sent to it.
const (
	frameDelimiter = 0x7E

	frameLocalATCommand      = 0x08
	frameLocalATCommandQueue = 0x09
	frameRemoteATCommand     = 0x17
	frameLocalATResponse     = 0x88
	frameRemoteATResponse    = 0x97
	frameModemStatus         = 0x8A
)

// ATCommand is a two-letter AT register or action identifier, e.g. "VR",
// stored as a plain two-byte array.
type ATCommand [2]byte

func (c ATCommand) String() string { return string(c[0]) + string(c[1]) }

// IsZero reports whether c is the all-zero sentinel command used to
// terminate a command list.
func (c ATCommand) IsZero() bool { return c[0] == 0 && c[1] == 0 }

// CommandStatus is the low nibble of an AT response's status byte.
type CommandStatus byte

const (
	StatusOK               CommandStatus = 0
	StatusError            CommandStatus = 1
	StatusInvalidCommand   CommandStatus = 2
	StatusInvalidParameter CommandStatus = 3
	StatusTxFailure        CommandStatus = 4
)

func (s CommandStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "Error"
	case StatusInvalidCommand:
		return "InvalidCommand"
	case StatusInvalidParameter:
		return "InvalidParameter"
	case StatusTxFailure:
		return "TxFailure"
	}
	return fmt.Sprintf("CommandStatus(%d)", byte(s))
}

// ResponseFlags carries the status nibble plus two protocol-level bits
// that aren't part of the status code proper.
type ResponseFlags byte

const (
	flagStatusMask   = 0x0F
	flagTimeout      = 0x80 // synthesized locally by the timeout wheel, never on the wire
	flagRSSIInvalid  = 0x40 // DigiMesh ATND-style replies
)

func (f ResponseFlags) Status() CommandStatus { return CommandStatus(f & flagStatusMask) }
func (f ResponseFlags) Timeout() bool         { return f&flagTimeout != 0 }
func (f ResponseFlags) RSSIInvalid() bool     { return f&flagRSSIInvalid != 0 }

// ModemStatus is the one-byte payload of an unsolicited 0x8A frame.
type ModemStatus byte

const (
	ModemHardwareReset      ModemStatus = 0x00
	ModemWatchdogReset      ModemStatus = 0x01
	ModemJoinedNetwork      ModemStatus = 0x02
	ModemDisassociated      ModemStatus = 0x03
	ModemCoordinatorStarted ModemStatus = 0x06
	ModemKeyEstablished     ModemStatus = 0x07
)

func (m ModemStatus) String() string {
	switch m {
	case ModemHardwareReset:
		return "HardwareReset"
	case ModemWatchdogReset:
		return "WatchdogReset"
	case ModemJoinedNetwork:
		return "JoinedNetwork"
	case ModemDisassociated:
		return "Disassociated"
	case ModemCoordinatorStarted:
		return "CoordinatorStarted"
	case ModemKeyEstablished:
		return "KeyEstablished"
	}
	if m >= 0x80 {
		return "StackError"
	}
	return fmt.Sprintf("ModemStatus(%d)", byte(m))
}

// NodeType distinguishes the learned role of the attached module,
// derived from the second hex digit ("B") of the firmware version.
type NodeType byte

const (
	NodeTypeUnknown     NodeType = 0
	NodeTypeCoordinator NodeType = 1
	NodeTypeRouter      NodeType = 2
	NodeTypeEndDevice   NodeType = 3
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeCoordinator:
		return "Coordinator"
	case NodeTypeRouter:
		return "Router"
	case NodeTypeEndDevice:
		return "EndDevice"
	}
	return "Unknown"
}

// StackProtocol is the other half of the firmware-version-derived
// bits: which over-the-air stack the firmware implements.
type StackProtocol byte

const (
	StackUnknown  StackProtocol = 0
	StackZNet     StackProtocol = 1
	StackZB       StackProtocol = 2
	StackDigiMesh StackProtocol = 3
)

func (s StackProtocol) String() string {
	switch s {
	case StackZNet:
		return "ZNet"
	case StackZB:
		return "ZB"
	case StackDigiMesh:
		return "DigiMesh"
	}
	return "Unknown"
}

// nodeTypeFromFirmware decodes the "B" variant digit of the firmware
// version (VR response): 0/2/8 = AT coordinator/router/end-device,
// 1/3/9 = API variants of the same.
func nodeTypeFromFirmware(fw uint16) NodeType {
	variant := (fw >> 8) & 0xF
	switch variant {
	case 0, 1:
		return NodeTypeCoordinator
	case 2, 3:
		return NodeTypeRouter
	case 8, 9:
		return NodeTypeEndDevice
	}
	return NodeTypeUnknown
}

// stackProtocolFromFirmware classifies the firmware version's leading
// hex digit: 0x1xxx is ZNet, 0x2xxx is ZB, and 0x8xxx, 0x9xxx and
// 0xAxxx are DigiMesh firmware.
func stackProtocolFromFirmware(fw uint16) StackProtocol {
	switch fw >> 12 {
	case 1:
		return StackZNet
	case 2:
		return StackZB
	case 8, 9, 0xA:
		return StackDigiMesh
	}
	return StackUnknown
}
