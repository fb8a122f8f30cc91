package common

import (
	"bytes"
	"unicode/utf8"
)

// readUntilZeroByte returns buf[pos:i] where i is the index of the first zero
// byte at or after pos, and the position just past that zero byte. The zero
// byte may be the last byte of buf.
func readUntilZeroByte(buf []byte, pos int) ([]byte, int, error) {
	if pos > len(buf) {
		return nil, pos, ErrTruncated
	}

	i := bytes.IndexByte(buf[pos:], 0)
	if i < 0 {
		return nil, pos, ErrNoZeroByte
	}

	return buf[pos : pos+i], pos + i + 1, nil
}

func readString(buf []byte, pos int, op OpCode, field string) (string, int, error) {
	raw, next, err := readUntilZeroByte(buf, pos)
	if err != nil {
		return "", pos, newParseError(op, field, pos, err)
	}

	if !utf8.Valid(raw) {
		return "", pos, newParseError(op, field, pos, ErrInvalidText)
	}

	return string(raw), next, nil
}
