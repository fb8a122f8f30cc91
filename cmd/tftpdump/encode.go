package main

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Pablu23/tftp/internal/common"
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "encode",
		Usage: "Build a datagram and print it as hex",
		Subcommands: []*cli.Command{
			requestCommand("rrq", "Read request", common.OpRead),
			requestCommand("wrq", "Write request", common.OpWrite),
			{
				Name:  "data",
				Usage: "Data block",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "block", Value: 1},
					&cli.StringFlag{Name: "payload", Usage: "Payload text"},
					&cli.StringFlag{Name: "payload-hex", Usage: "Payload as hex, overrides --payload"},
				},
				Action: func(c *cli.Context) error {
					payload := []byte(c.String("payload"))
					if c.IsSet("payload-hex") {
						var err error
						if payload, err = decodeHex(c.String("payload-hex")); err != nil {
							return err
						}
					}
					block, err := blockFlag(c)
					if err != nil {
						return err
					}
					pck, err := common.NewData(block, payload)
					if err != nil {
						return err
					}
					return printPacket(c, pck)
				},
			},
			{
				Name:  "ack",
				Usage: "Acknowledgement",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "block", Value: 1},
				},
				Action: func(c *cli.Context) error {
					block, err := blockFlag(c)
					if err != nil {
						return err
					}
					return printPacket(c, &common.AckPacket{Block: block})
				},
			},
			{
				Name:  "error",
				Usage: "Error",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "code", Usage: "Error code 0-7"},
					&cli.StringFlag{Name: "message", Usage: "Defaults to the text for --code"},
				},
				Action: func(c *cli.Context) error {
					code := c.Uint("code")
					if code > 0xffff {
						return errors.Errorf("error code %d out of range", code)
					}
					return printPacket(c, common.NewError(common.ErrorCode(code), c.String("message")))
				},
			},
		},
	}
}

func requestCommand(name, usage string, op common.OpCode) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true},
			&cli.StringFlag{Name: "mode", Value: "octet", Usage: "netascii, octet or mail"},
		},
		Action: func(c *cli.Context) error {
			mode, err := common.ParseMode(c.String("mode"))
			if err != nil {
				return err
			}
			return printPacket(c, &common.RequestPacket{
				Op:       op,
				FileName: c.String("file"),
				Mode:     mode,
			})
		},
	}
}

func blockFlag(c *cli.Context) (uint16, error) {
	block := c.Uint("block")
	if block > 0xffff {
		return 0, errors.Errorf("block %d out of range", block)
	}
	return uint16(block), nil
}

func printPacket(c *cli.Context, pck common.Packet) error {
	b, err := pck.ToBytes()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, hex.EncodeToString(b))
	return err
}
