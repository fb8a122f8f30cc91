package dispatch

import (
	log "github.com/sirupsen/logrus"

	"github.com/Pablu23/tftp/internal/common"
)

type Options struct {
	// MaxDatagramSize bounds the datagrams Handle accepts. Sealed datagrams
	// are allowed the envelope overhead on top of it.
	MaxDatagramSize int
	// Key opens sealed datagrams when Sealed is set.
	Key    [common.KeySize]byte
	Sealed bool
	Logger *log.Logger
}

func NewDefaultOptions() *Options {
	return &Options{
		MaxDatagramSize: common.DatagramSize,
		Sealed:          false,
		Logger:          log.StandardLogger(),
	}
}
