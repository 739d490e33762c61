package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		frame   Frame
		wantLen int
	}{
		{
			name:    "empty_payload",
			frame:   Frame{Type: FrameEvent, Payload: []byte{}},
			wantLen: FrameHeaderSize,
		},
		{
			name:    "snapshot_resync",
			frame:   Frame{Type: FrameSnapshot, Flags: FlagResync, Payload: []byte{0x01, 0x02, 0x03}},
			wantLen: FrameHeaderSize + 3,
		},
		{
			name:    "replayed_event",
			frame:   Frame{Type: FrameEvent, Flags: FlagReplay, Payload: []byte("test")},
			wantLen: FrameHeaderSize + 4,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded := tc.frame.Encode()
			if len(encoded) != tc.wantLen {
				t.Errorf("Encode() length = %d, want %d", len(encoded), tc.wantLen)
			}

			decoded, err := DecodeFrame(encoded)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if decoded.Type != tc.frame.Type {
				t.Errorf("Decoded type = %v, want %v", decoded.Type, tc.frame.Type)
			}
			if decoded.Flags != tc.frame.Flags {
				t.Errorf("Decoded flags = %v, want %v", decoded.Flags, tc.frame.Flags)
			}
			if !bytes.Equal(decoded.Payload, tc.frame.Payload) {
				t.Errorf("Decoded payload = %v, want %v", decoded.Payload, tc.frame.Payload)
			}
		})
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	if _, err := DecodeFrame([]byte{0x01, 0x00}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short header: error = %v, want ErrUnexpectedEOF", err)
	}

	truncated := NewFrame(FrameEvent, []byte("abcdef")).Encode()
	if _, err := DecodeFrame(truncated[:len(truncated)-1]); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short payload: error = %v, want ErrUnexpectedEOF", err)
	}

	bad := NewFrame(FrameType(0x42), nil).Encode()
	if _, err := DecodeFrame(bad); !errors.Is(err, ErrInvalidFrameType) {
		t.Errorf("bad type: error = %v, want ErrInvalidFrameType", err)
	}

	huge := []byte{byte(FrameEvent), 0, 0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := DecodeFrame(huge); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("huge length: error = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	frames := []*Frame{
		NewFrame(FrameAck, EncodeAck(&Ack{ID: 1, Applied: 2})),
		NewFrame(FrameEvent, nil),
		{Type: FrameSnapshot, Flags: FlagResync, Payload: []byte("x")},
	}
	for _, f := range frames {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
	}

	for i, want := range frames {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame(%d) error = %v", i, err)
		}
		if got.Type != want.Type || got.Flags != want.Flags || !bytes.Equal(got.Payload, want.Payload) {
			t.Errorf("frame %d = %+v, want %+v", i, got, want)
		}
	}
	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Errorf("ReadFrame() at end error = %v, want EOF", err)
	}
}

func TestFrameFlagsHas(t *testing.T) {
	flags := FlagReplay | FlagResync
	if !flags.Has(FlagReplay) || !flags.Has(FlagResync) {
		t.Error("expected both flags set")
	}
	if FrameFlags(0).Has(FlagReplay) {
		t.Error("expected no flags set")
	}
}

func TestFrameTypeString(t *testing.T) {
	if FrameOp.String() != "Op" {
		t.Errorf("FrameOp.String() = %q", FrameOp.String())
	}
	if FrameType(0x99).String() != "Unknown" {
		t.Errorf("unknown type string = %q", FrameType(0x99).String())
	}
}
