package main

import (
	"bufio"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Pablu23/tftp/internal/common"
)

// decodeHex accepts "00 01 6d 61", "0001 6d61" and "00016d61" alike.
func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex %q", s)
	}
	return b, nil
}

// inputs returns the command's arguments, or the non-empty lines of stdin
// when there are none.
func inputs(c *cli.Context) ([]string, error) {
	if c.Args().Present() {
		return c.Args().Slice(), nil
	}

	var lines []string
	scanner := bufio.NewScanner(c.App.Reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func parseKey(s string) ([common.KeySize]byte, error) {
	var key [common.KeySize]byte
	b, err := decodeHex(s)
	if err != nil {
		return key, err
	}
	if len(b) != common.KeySize {
		return key, errors.Errorf("key must be %d bytes, got %d", common.KeySize, len(b))
	}
	copy(key[:], b)
	return key, nil
}

func parseSessionID(s string) (common.SessionID, error) {
	var sid common.SessionID
	b, err := decodeHex(s)
	if err != nil {
		return sid, err
	}
	if len(b) != len(sid) {
		return sid, errors.Errorf("session id must be %d bytes, got %d", len(sid), len(b))
	}
	copy(sid[:], b)
	return sid, nil
}
