package common

// BlockSize is the largest payload a single DATA packet carries.
const BlockSize = 512

const (
	OpCodeSize int = 2
	HeaderSize int = OpCodeSize + 2 // opcode + block number / error code
)

// DatagramSize is the largest well-formed DATA datagram.
const DatagramSize = HeaderSize + BlockSize

type OpCode uint16

const (
	OpRead  OpCode = 1
	OpWrite OpCode = 2
	OpData  OpCode = 3
	OpAck   OpCode = 4
	OpError OpCode = 5
)

func (op OpCode) String() string {
	switch op {
	case OpRead:
		return "RRQ"
	case OpWrite:
		return "WRQ"
	case OpData:
		return "DATA"
	case OpAck:
		return "ACK"
	case OpError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ErrorCode is the numeric code carried by an ERROR packet (RFC 1350, page 10).
type ErrorCode uint16

const (
	ErrCodeNotDefined ErrorCode = iota
	ErrCodeFileNotFound
	ErrCodeAccessViolation
	ErrCodeDiskFull
	ErrCodeIllegalOperation
	ErrCodeUnknownTransferID
	ErrCodeFileExists
	ErrCodeNoSuchUser
)

var errorCodeText = map[ErrorCode]string{
	ErrCodeNotDefined:        "Not defined, see error message (if any).",
	ErrCodeFileNotFound:      "File not found.",
	ErrCodeAccessViolation:   "Access violation.",
	ErrCodeDiskFull:          "Disk full or allocation exceeded.",
	ErrCodeIllegalOperation:  "Illegal TFTP operation.",
	ErrCodeUnknownTransferID: "Unknown transfer ID.",
	ErrCodeFileExists:        "File already exists.",
	ErrCodeNoSuchUser:        "No such user.",
}

func (code ErrorCode) String() string {
	if text, ok := errorCodeText[code]; ok {
		return text
	}
	return "Unknown error code."
}
