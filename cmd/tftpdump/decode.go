package main

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Pablu23/tftp/internal/common"
	"github.com/Pablu23/tftp/internal/dispatch"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Parse hex encoded datagrams (arguments, or one per stdin line)",
		ArgsUsage: "[HEX...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "key",
				Usage: "Hex encoded 32 byte key; datagrams are opened as sealed packets",
			},
		},
		Action: decodeAction,
	}
}

func newPrintingDispatcher(w io.Writer, opts ...func(*dispatch.Options)) *dispatch.Dispatcher {
	d := dispatch.New(opts...)
	d.OnRequest(func(pck *common.RequestPacket) error {
		_, err := fmt.Fprintln(w, pck)
		return err
	})
	d.OnData(func(pck *common.DataPacket) error {
		_, err := fmt.Fprintf(w, "%v last=%t payload=%q\n", pck, pck.IsLast(), pck.Payload())
		return err
	})
	d.OnAck(func(pck *common.AckPacket) error {
		_, err := fmt.Fprintln(w, pck)
		return err
	})
	d.OnError(func(pck *common.ErrorPacket) error {
		_, err := fmt.Fprintln(w, pck)
		return err
	})
	return d
}

func decodeAction(c *cli.Context) error {
	var opts []func(*dispatch.Options)
	if c.IsSet("key") {
		key, err := parseKey(c.String("key"))
		if err != nil {
			return err
		}
		opts = append(opts, func(o *dispatch.Options) {
			o.Sealed = true
			o.Key = key
		})
	}

	lines, err := inputs(c)
	if err != nil {
		return err
	}

	d := newPrintingDispatcher(c.App.Writer, opts...)

	failed := 0
	for _, line := range lines {
		buf, err := decodeHex(line)
		if err == nil {
			err = d.Handle(buf)
		}
		if err != nil {
			failed++
			fmt.Fprintf(c.App.Writer, "invalid: %v\n", err)
		}
	}

	stats := d.Stats()
	log.WithFields(log.Fields{
		"Received":  stats.Received,
		"Malformed": stats.Malformed,
	}).Debug("Decoded datagrams")

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d datagrams invalid", failed, len(lines)), 1)
	}
	return nil
}
