package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Pablu23/tftp/internal/common"
)

func keyFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "key",
		Usage:    "Hex encoded 32 byte key",
		Required: true,
	}
}

func sealCommand() *cli.Command {
	return &cli.Command{
		Name:      "seal",
		Usage:     "Wrap hex encoded datagrams in a sealed packet",
		ArgsUsage: "[HEX...]",
		Flags: []cli.Flag{
			keyFlag(),
			&cli.StringFlag{
				Name:  "sid",
				Usage: "Hex encoded 8 byte session id",
				Value: "0000000000000000",
			},
		},
		Action: func(c *cli.Context) error {
			key, err := parseKey(c.String("key"))
			if err != nil {
				return err
			}
			sid, err := parseSessionID(c.String("sid"))
			if err != nil {
				return err
			}
			lines, err := inputs(c)
			if err != nil {
				return err
			}

			for _, line := range lines {
				buf, err := decodeHex(line)
				if err != nil {
					return err
				}
				pck, err := common.Parse(buf)
				if err != nil {
					return err
				}
				secPck, err := common.NewSymmetricSecurePacket(key, sid, pck)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, hex.EncodeToString(secPck.ToBytes()))
			}
			return nil
		},
	}
}

func openCommand() *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Open hex encoded sealed packets and print the datagram inside",
		ArgsUsage: "[HEX...]",
		Flags:     []cli.Flag{keyFlag()},
		Action: func(c *cli.Context) error {
			key, err := parseKey(c.String("key"))
			if err != nil {
				return err
			}
			lines, err := inputs(c)
			if err != nil {
				return err
			}

			for _, line := range lines {
				buf, err := decodeHex(line)
				if err != nil {
					return err
				}
				secPck, err := common.SecurePacketFromBytes(buf)
				if err != nil {
					return err
				}
				pck, err := secPck.ExtractPacket(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "sid=%s %v\n", hex.EncodeToString(secPck.Sid[:]), pck)
			}
			return nil
		},
	}
}
