// Package dispatch turns received datagrams into typed packets and routes them
// to the handler registered for their kind. Sockets, sessions and
// retransmission stay with the caller.
package dispatch

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/Pablu23/tftp/internal/common"
)

var ErrDatagramTooLarge = errors.New("datagram too large")

type Stats struct {
	Received  uint64
	Malformed uint64
	Unhandled uint64
	Requests  uint64
	Data      uint64
	Acks      uint64
	Errors    uint64
}

type Dispatcher struct {
	options *Options
	log     *log.Entry

	mu        sync.RWMutex
	onRequest func(*common.RequestPacket) error
	onData    func(*common.DataPacket) error
	onAck     func(*common.AckPacket) error
	onError   func(*common.ErrorPacket) error

	received  atomic.Uint64
	malformed atomic.Uint64
	unhandled atomic.Uint64
	requests  atomic.Uint64
	data      atomic.Uint64
	acks      atomic.Uint64
	errorPkts atomic.Uint64
}

func New(opts ...func(*Options)) *Dispatcher {
	options := NewDefaultOptions()

	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = log.StandardLogger()
	}

	return &Dispatcher{
		options: options,
		log:     log.NewEntry(options.Logger),
	}
}

// OnRequest handles both RRQ and WRQ; check pck.Op to tell them apart.
func (d *Dispatcher) OnRequest(handler func(*common.RequestPacket) error) {
	d.mu.Lock()
	d.onRequest = handler
	d.mu.Unlock()
}

func (d *Dispatcher) OnData(handler func(*common.DataPacket) error) {
	d.mu.Lock()
	d.onData = handler
	d.mu.Unlock()
}

func (d *Dispatcher) OnAck(handler func(*common.AckPacket) error) {
	d.mu.Lock()
	d.onAck = handler
	d.mu.Unlock()
}

func (d *Dispatcher) OnError(handler func(*common.ErrorPacket) error) {
	d.mu.Lock()
	d.onError = handler
	d.mu.Unlock()
}

func (d *Dispatcher) maxSize() int {
	if d.options.Sealed {
		return d.options.MaxDatagramSize + common.SecureOverhead
	}
	return d.options.MaxDatagramSize
}

// Decode parses buf, opening the envelope first when the dispatcher is
// configured for sealed datagrams.
func (d *Dispatcher) Decode(buf []byte) (common.Packet, error) {
	if len(buf) > d.maxSize() {
		return nil, errors.Wrapf(ErrDatagramTooLarge, "%d bytes", len(buf))
	}

	if !d.options.Sealed {
		return common.Parse(buf)
	}

	secPck, err := common.SecurePacketFromBytes(buf)
	if err != nil {
		return nil, err
	}
	return secPck.ExtractPacket(d.options.Key)
}

// Handle decodes one datagram and passes it to the matching handler. Packets
// without a handler are dropped and nil is returned. Handle may be called
// from several goroutines at once.
func (d *Dispatcher) Handle(buf []byte) error {
	d.received.Inc()

	pck, err := d.Decode(buf)
	if err != nil {
		d.malformed.Inc()
		d.log.WithError(err).WithField("Size", len(buf)).Warn("Received invalid Packet")
		return err
	}

	call := d.handler(pck)
	if call == nil {
		d.unhandled.Inc()
		d.log.WithField("Packet Type", pck.OpCode()).Debug("No handler for Packet")
		return nil
	}

	// handlers run without d.mu held so they may register other handlers
	if err = call(); err != nil {
		d.log.WithError(err).WithField("Packet Type", pck.OpCode()).Error("Handler failed")
	}
	return err
}

// handler counts pck and returns the call to its registered handler, or nil
// when none is registered.
func (d *Dispatcher) handler(pck common.Packet) func() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch p := pck.(type) {
	case *common.RequestPacket:
		d.requests.Inc()
		if onRequest := d.onRequest; onRequest != nil {
			return func() error { return onRequest(p) }
		}
	case *common.DataPacket:
		d.data.Inc()
		if onData := d.onData; onData != nil {
			return func() error { return onData(p) }
		}
	case *common.AckPacket:
		d.acks.Inc()
		if onAck := d.onAck; onAck != nil {
			return func() error { return onAck(p) }
		}
	case *common.ErrorPacket:
		d.errorPkts.Inc()
		if onError := d.onError; onError != nil {
			return func() error { return onError(p) }
		}
	}
	return nil
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Received:  d.received.Load(),
		Malformed: d.malformed.Load(),
		Unhandled: d.unhandled.Load(),
		Requests:  d.requests.Load(),
		Data:      d.data.Load(),
		Acks:      d.acks.Load(),
		Errors:    d.errorPkts.Load(),
	}
}
