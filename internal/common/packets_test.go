package common

import (
	"bytes"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func request(op byte, parts ...string) []byte {
	buf := []byte{0, op}
	for _, p := range parts {
		buf = append(buf, p...)
		buf = append(buf, 0)
	}
	return buf
}

func TestParseReadRequest(t *testing.T) {
	// read, main.rs, netascii
	rrq := []byte{
		0x00, 0x01, 0x6D, 0x61, 0x69, 0x6E, 0x2E, 0x72, 0x73, 0x00, 0x6E, 0x65, 0x74, 0x61,
		0x73, 0x63, 0x69, 0x69, 0x00,
	}

	want := &RequestPacket{
		Op:       OpRead,
		FileName: "main.rs",
		Mode:     ModeNetASCII,
	}

	pck, err := Parse(rrq)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, pck); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWriteRequest(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want *RequestPacket
	}{
		{
			name: "trailing padding",
			in:   append(request(2, "main.rs", "netascii"), 0),
			want: &RequestPacket{Op: OpWrite, FileName: "main.rs", Mode: ModeNetASCII},
		},
		{
			name: "upper case mode",
			in:   request(2, "dir/file.bin", "OCTET"),
			want: &RequestPacket{Op: OpWrite, FileName: "dir/file.bin", Mode: ModeOctet},
		},
		{
			name: "mixed case mode",
			in:   request(2, "inbox", "Mail"),
			want: &RequestPacket{Op: OpWrite, FileName: "inbox", Mode: ModeMail},
		},
		{
			name: "empty file name",
			in:   request(2, "", "octet"),
			want: &RequestPacket{Op: OpWrite, FileName: "", Mode: ModeOctet},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pck, err := Parse(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, pck); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseData(t *testing.T) {
	data := []byte{
		0x00, 0x03, 0x00, 0x00, 0x68, 0x65, 0x6C, 0x6C, 0x6F, 0x20, 0x77, 0x6F, 0x72, 0x6C,
		0x64,
	}

	pck, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	dataPck, ok := pck.(*DataPacket)
	if !ok {
		t.Fatalf("expected *DataPacket, got %T", pck)
	}

	if dataPck.OpCode() != OpData {
		t.Errorf("opcode = %v", dataPck.OpCode())
	}
	if dataPck.Block != 0 {
		t.Errorf("block = %d", dataPck.Block)
	}
	if dataPck.Len != 11 {
		t.Errorf("len = %d", dataPck.Len)
	}
	if string(dataPck.Payload()) != "hello world" {
		t.Errorf("payload = %q", dataPck.Payload())
	}
	if !dataPck.IsLast() {
		t.Error("short block should be the last one")
	}
}

func TestParseDataLengths(t *testing.T) {
	for _, size := range []int{0, 1, 511, 512, 513, 1024} {
		payload := bytes.Repeat([]byte{0xAB}, size)
		buf := append([]byte{0x00, 0x03, 0x12, 0x34}, payload...)

		pck, err := Parse(buf)
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		dataPck := pck.(*DataPacket)

		wantLen := size
		if wantLen > BlockSize {
			wantLen = BlockSize
		}
		if dataPck.Len != wantLen {
			t.Errorf("size %d: len = %d, want %d", size, dataPck.Len, wantLen)
		}
		if dataPck.Block != 0x1234 {
			t.Errorf("size %d: block = %#x", size, dataPck.Block)
		}
		if !bytes.Equal(dataPck.Payload(), payload[:wantLen]) {
			t.Errorf("size %d: payload mismatch", size)
		}
		if dataPck.IsLast() != (wantLen < BlockSize) {
			t.Errorf("size %d: IsLast = %t", size, dataPck.IsLast())
		}
	}
}

func TestParseDataDoesNotAliasInput(t *testing.T) {
	buf := []byte{0x00, 0x03, 0x00, 0x01, 'a', 'b'}
	pck, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf[4] = 'z'

	if got := string(pck.(*DataPacket).Payload()); got != "ab" {
		t.Errorf("payload changed with input buffer: %q", got)
	}
}

func TestParseAck(t *testing.T) {
	tests := []struct {
		in   []byte
		want *AckPacket
	}{
		{[]byte{0x00, 0x04, 0x00, 0x00}, &AckPacket{Block: 0}},
		{[]byte{0x00, 0x04, 0x00, 0x01}, &AckPacket{Block: 1}},
		{[]byte{0x00, 0x04, 0xFF, 0xFF}, &AckPacket{Block: 65535}},
		{[]byte{0x00, 0x04, 0x01, 0x00, 0xEE}, &AckPacket{Block: 256}},
	}

	for _, tt := range tests {
		pck, err := Parse(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tt.want, pck); diff != "" {
			t.Errorf("Parse(% x) mismatch (-want +got):\n%s", tt.in, diff)
		}
		if pck.OpCode() != OpAck {
			t.Errorf("opcode = %v", pck.OpCode())
		}
	}
}

func TestParseError(t *testing.T) {
	data := []byte{
		0x00, 0x05, 0x00, 0x00, 0x65, 0x72, 0x72, 0x6F, 0x72, 0x00, /**/ 0x00,
	}

	want := &ErrorPacket{
		Code:    ErrCodeNotDefined,
		Message: "error",
	}

	pck, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, pck); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	if pck.OpCode() != OpError {
		t.Errorf("opcode = %v", pck.OpCode())
	}
}

func TestParseErrorCodes(t *testing.T) {
	for code := ErrCodeNotDefined; code <= ErrCodeNoSuchUser+1; code++ {
		buf := append([]byte{0x00, 0x05, 0x00, byte(code)}, "msg\x00"...)
		pck, err := Parse(buf)
		if err != nil {
			t.Fatal(err)
		}
		if got := pck.(*ErrorPacket).Code; got != code {
			t.Errorf("code = %d, want %d", got, code)
		}
	}
}

func TestParseInvalidOpcode(t *testing.T) {
	for _, in := range [][]byte{
		{0x00, 0x09, 0x01, 0x02},
		{0x00, 0x00},
		{0x00, 0x06, 0x00, 0x00},
		{0x01, 0x01},
	} {
		_, err := Parse(in)
		if !errors.Is(err, ErrInvalidOpcode) {
			t.Errorf("Parse(% x) err = %v, want ErrInvalidOpcode", in, err)
		}
	}
}

func TestParseNoZeroByte(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		field string
	}{
		{"request without terminators", []byte("\x00\x01main.rs"), "filename"},
		{"request without mode terminator", []byte("\x00\x01main.rs\x00octet"), "mode"},
		{"request without mode", []byte("\x00\x02main.rs\x00"), "mode"},
		{"error without terminator", []byte("\x00\x05\x00\x01not found"), "message"},
		{"error without message", []byte{0x00, 0x05, 0x00, 0x01}, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			if !errors.Is(err, ErrNoZeroByte) {
				t.Fatalf("err = %v, want ErrNoZeroByte", err)
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("err = %T, want *ParseError", err)
			}
			if parseErr.Field != tt.field {
				t.Errorf("field = %q, want %q", parseErr.Field, tt.field)
			}
		})
	}
}

func TestParseTruncated(t *testing.T) {
	for _, in := range [][]byte{
		nil,
		{},
		{0x00},
		{0x00, 0x03},
		{0x00, 0x03, 0x00},
		{0x00, 0x04, 0x00},
		{0x00, 0x05},
	} {
		pck, err := Parse(in)
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("Parse(% x) err = %v, want ErrTruncated", in, err)
		}
		if pck != nil {
			t.Errorf("Parse(% x) returned packet %v", in, pck)
		}
	}
}

func TestParseInvalidText(t *testing.T) {
	for _, in := range [][]byte{
		request(1, "bad\xffname", "octet"),
		request(1, "file", "oct\xfe"),
		append([]byte{0x00, 0x05, 0x00, 0x02}, "\xc3\x28\x00"...),
	} {
		_, err := Parse(in)
		if !errors.Is(err, ErrInvalidText) {
			t.Errorf("Parse(% x) err = %v, want ErrInvalidText", in, err)
		}
	}
}

func TestParseUnsupportedMode(t *testing.T) {
	buf := request(1, "main.rs", "binary")
	_, err := Parse(buf)
	if !errors.Is(err, ErrUnsupportedMode) {
		t.Fatalf("err = %v, want ErrUnsupportedMode", err)
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %T, want *ParseError", err)
	}
	want := &ParseError{Op: OpRead, Field: "mode", Offset: len("\x00\x01main.rs\x00")}
	if diff := cmp.Diff(want, parseErr, cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".Cause"
	}, cmp.Ignore())); diff != "" {
		t.Errorf("ParseError mismatch (-want +got):\n%s", diff)
	}
}

func TestReadUntilZeroByte(t *testing.T) {
	buf := []byte("ab\x00\x00c\x00")

	field, pos, err := readUntilZeroByte(buf, 0)
	if err != nil || string(field) != "ab" || pos != 3 {
		t.Fatalf("got %q, %d, %v", field, pos, err)
	}

	field, pos, err = readUntilZeroByte(buf, pos)
	if err != nil || len(field) != 0 || pos != 4 {
		t.Fatalf("got %q, %d, %v", field, pos, err)
	}

	// terminator on the last byte
	field, pos, err = readUntilZeroByte(buf, pos)
	if err != nil || string(field) != "c" || pos != len(buf) {
		t.Fatalf("got %q, %d, %v", field, pos, err)
	}

	if _, _, err = readUntilZeroByte(buf, pos); !errors.Is(err, ErrNoZeroByte) {
		t.Fatalf("err = %v, want ErrNoZeroByte", err)
	}

	if _, _, err = readUntilZeroByte(buf, len(buf)+1); !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}

func TestParseConcurrent(t *testing.T) {
	inputs := [][]byte{
		request(1, "a.txt", "octet"),
		{0x00, 0x03, 0x00, 0x07, 'x'},
		{0x00, 0x04, 0x00, 0x07},
		append([]byte{0x00, 0x05, 0x00, 0x01}, "missing\x00"...),
	}

	var wg sync.WaitGroup
	errs := make(chan error, 100*len(inputs))
	for i := 0; i < 100; i++ {
		for _, in := range inputs {
			wg.Add(1)
			go func(in []byte) {
				defer wg.Done()
				if _, err := Parse(in); err != nil {
					errs <- err
				}
			}(in)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
