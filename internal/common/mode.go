package common

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode is the transfer mode negotiated by a read or write request.
type Mode uint8

const (
	ModeNetASCII Mode = iota
	ModeOctet
	ModeMail
)

var modeNames = [...]string{
	ModeNetASCII: "netascii",
	ModeOctet:    "octet",
	ModeMail:     "mail",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unsupported"
}

// ParseMode maps a mode token to a Mode, ignoring case.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedMode, "%q", s)
}
