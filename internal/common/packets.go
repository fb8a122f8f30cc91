package common

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Packet is one of *RequestPacket, *DataPacket, *AckPacket or *ErrorPacket.
//
// Parsed packets do not reference the buffer they were parsed from, so the
// caller may reuse its receive buffer once Parse returns.
type Packet interface {
	OpCode() OpCode
	ToBytes() ([]byte, error)
}

// RequestPacket is a read (RRQ) or write (WRQ) request.
//
//	2 bytes     string    1 byte     string   1 byte
//	------------------------------------------------
//	| Opcode |  Filename  |   0  |    Mode    |   0  |
//	------------------------------------------------
type RequestPacket struct {
	Op       OpCode
	FileName string
	Mode     Mode
}

// DataPacket carries one block of a transfer. Only Data[:Len] is valid.
//
//	2 bytes     2 bytes      n bytes
//	----------------------------------
//	| Opcode |   Block #  |   Data     |
//	----------------------------------
type DataPacket struct {
	Block uint16
	Data  [BlockSize]byte
	Len   int
}

// AckPacket echoes the block number of the DATA packet it acknowledges.
type AckPacket struct {
	Block uint16
}

// ErrorPacket reports a failure to the peer and ends the transfer.
//
//	2 bytes     2 bytes      string    1 byte
//	-----------------------------------------
//	| Opcode |  ErrorCode |   ErrMsg   |   0  |
//	-----------------------------------------
type ErrorPacket struct {
	Code    ErrorCode
	Message string
}

func (pck *RequestPacket) OpCode() OpCode { return pck.Op }
func (pck *DataPacket) OpCode() OpCode    { return OpData }
func (pck *AckPacket) OpCode() OpCode     { return OpAck }
func (pck *ErrorPacket) OpCode() OpCode   { return OpError }

// Parse decodes one datagram. It never panics: every malformed input is
// reported as a *ParseError wrapping one of the Err* values of this package.
func Parse(bytes []byte) (Packet, error) {
	if len(bytes) < OpCodeSize {
		return nil, newParseError(0, "opcode", 0, ErrTruncated)
	}

	op := OpCode(binary.BigEndian.Uint16(bytes[0:OpCodeSize]))

	switch op {
	case OpRead, OpWrite:
		return parseRequest(bytes, op)
	case OpData:
		return parseData(bytes)
	case OpAck:
		return parseAck(bytes)
	case OpError:
		return parseErrorPacket(bytes)
	default:
		return nil, &ParseError{
			Op:    op,
			Field: "opcode",
			Cause: errors.Wrapf(ErrInvalidOpcode, "%d", uint16(op)),
		}
	}
}

func parseRequest(bytes []byte, op OpCode) (Packet, error) {
	fileName, pos, err := readString(bytes, OpCodeSize, op, "filename")
	if err != nil {
		return nil, err
	}

	modeStart := pos
	token, _, err := readString(bytes, modeStart, op, "mode")
	if err != nil {
		return nil, err
	}

	mode, err := ParseMode(token)
	if err != nil {
		return nil, newParseError(op, "mode", modeStart, err)
	}

	return &RequestPacket{
		Op:       op,
		FileName: fileName,
		Mode:     mode,
	}, nil
}

func parseData(bytes []byte) (Packet, error) {
	if len(bytes) < HeaderSize {
		return nil, newParseError(OpData, "block", OpCodeSize, ErrTruncated)
	}

	pck := &DataPacket{
		Block: binary.BigEndian.Uint16(bytes[OpCodeSize:HeaderSize]),
	}
	pck.Len = copy(pck.Data[:], bytes[HeaderSize:])

	return pck, nil
}

func parseAck(bytes []byte) (Packet, error) {
	if len(bytes) < HeaderSize {
		return nil, newParseError(OpAck, "block", OpCodeSize, ErrTruncated)
	}

	return &AckPacket{
		Block: binary.BigEndian.Uint16(bytes[OpCodeSize:HeaderSize]),
	}, nil
}

func parseErrorPacket(bytes []byte) (Packet, error) {
	if len(bytes) < HeaderSize {
		return nil, newParseError(OpError, "code", OpCodeSize, ErrTruncated)
	}

	code := ErrorCode(binary.BigEndian.Uint16(bytes[OpCodeSize:HeaderSize]))

	msg, _, err := readString(bytes, HeaderSize, OpError, "message")
	if err != nil {
		return nil, err
	}

	return &ErrorPacket{
		Code:    code,
		Message: msg,
	}, nil
}

func NewReadRequest(path string, mode Mode) *RequestPacket {
	return &RequestPacket{
		Op:       OpRead,
		FileName: path,
		Mode:     mode,
	}
}

func NewWriteRequest(path string, mode Mode) *RequestPacket {
	return &RequestPacket{
		Op:       OpWrite,
		FileName: path,
		Mode:     mode,
	}
}

func NewData(block uint16, data []byte) (*DataPacket, error) {
	if len(data) > BlockSize {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "%d bytes", len(data))
	}

	pck := &DataPacket{Block: block}
	pck.Len = copy(pck.Data[:], data)
	return pck, nil
}

// NewNextData builds the DATA packet following lastPck. Block numbers wrap
// from 65535 to 0.
func NewNextData(lastPck *DataPacket, data []byte) (*DataPacket, error) {
	if lastPck == nil {
		return nil, ErrNoPreviousBlock
	}
	return NewData(lastPck.Block+1, data)
}

func NewAck(pckToAck *DataPacket) *AckPacket {
	return &AckPacket{Block: pckToAck.Block}
}

// NewError uses the protocol's text for code when msg is empty.
func NewError(code ErrorCode, msg string) *ErrorPacket {
	if msg == "" {
		msg = code.String()
	}
	return &ErrorPacket{
		Code:    code,
		Message: msg,
	}
}

// Payload returns the valid part of the block.
func (pck *DataPacket) Payload() []byte {
	return pck.Data[:pck.Len]
}

// IsLast reports whether this block ends the transfer.
func (pck *DataPacket) IsLast() bool {
	return pck.Len < BlockSize
}

func (pck *RequestPacket) ToBytes() ([]byte, error) {
	if pck.Op != OpRead && pck.Op != OpWrite {
		return nil, errors.Wrapf(ErrInvalidOpcode, "request with opcode %d", uint16(pck.Op))
	}
	if err := checkString(pck.FileName, "filename"); err != nil {
		return nil, err
	}

	mode := pck.Mode.String()
	if _, err := ParseMode(mode); err != nil {
		return nil, err
	}

	arr := make([]byte, OpCodeSize+len(pck.FileName)+1+len(mode)+1)
	binary.BigEndian.PutUint16(arr[0:OpCodeSize], uint16(pck.Op))
	pos := OpCodeSize
	pos += copy(arr[pos:], pck.FileName)
	pos++
	copy(arr[pos:], mode)

	return arr, nil
}

func (pck *DataPacket) ToBytes() ([]byte, error) {
	if pck.Len < 0 || pck.Len > BlockSize {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "%d bytes", pck.Len)
	}

	arr := make([]byte, HeaderSize+pck.Len)
	binary.BigEndian.PutUint16(arr[0:OpCodeSize], uint16(OpData))
	binary.BigEndian.PutUint16(arr[OpCodeSize:HeaderSize], pck.Block)
	copy(arr[HeaderSize:], pck.Data[:pck.Len])

	return arr, nil
}

func (pck *AckPacket) ToBytes() ([]byte, error) {
	arr := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(arr[0:OpCodeSize], uint16(OpAck))
	binary.BigEndian.PutUint16(arr[OpCodeSize:HeaderSize], pck.Block)

	return arr, nil
}

func (pck *ErrorPacket) ToBytes() ([]byte, error) {
	if err := checkString(pck.Message, "message"); err != nil {
		return nil, err
	}

	arr := make([]byte, HeaderSize+len(pck.Message)+1)
	binary.BigEndian.PutUint16(arr[0:OpCodeSize], uint16(OpError))
	binary.BigEndian.PutUint16(arr[OpCodeSize:HeaderSize], uint16(pck.Code))
	copy(arr[HeaderSize:], pck.Message)

	return arr, nil
}

func checkString(s string, field string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return errors.Wrap(ErrEmbeddedZeroByte, field)
	}
	if !utf8.ValidString(s) {
		return errors.Wrap(ErrInvalidText, field)
	}
	return nil
}

func (pck *RequestPacket) String() string {
	return fmt.Sprintf("%v file=%q mode=%v", pck.Op, pck.FileName, pck.Mode)
}

func (pck *DataPacket) String() string {
	return fmt.Sprintf("DATA block=%d len=%d", pck.Block, pck.Len)
}

func (pck *AckPacket) String() string {
	return fmt.Sprintf("ACK block=%d", pck.Block)
}

func (pck *ErrorPacket) String() string {
	return fmt.Sprintf("ERROR code=%d (%v) msg=%q", uint16(pck.Code), pck.Code, pck.Message)
}
