package bridge

import (
	"io"

	"actuatorcode-go/errcode"
)

// -----------------------------------------------------------------------------
// Framing: 1-byte type, 2-byte big-endian length, payload.
// -----------------------------------------------------------------------------

const (
	framePing    byte = 0x01
	framePong    byte = 0x02
	frameRequest byte = 0x20 // JSON types.LinkRequest
	frameReply   byte = 0x21 // JSON types.LinkReply
	frameClose   byte = 0x7f
)

const maxPayload = 0xFFFF

// Frame is a very simple length-prefixed frame.
type Frame struct {
	Type    byte
	Payload []byte
}

type framedReader struct{ r io.Reader }
type framedWriter struct {
	w   io.Writer
	buf []byte
}

func newFramedReader(r io.Reader) *framedReader { return &framedReader{r: r} }
func newFramedWriter(w io.Writer) *framedWriter { return &framedWriter{w: w} }

func (fr *framedReader) ReadFrame() (Frame, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		return Frame{}, err
	}
	typ := hdr[0]
	n := int(hdr[1])<<8 | int(hdr[2])
	var buf []byte
	if n > 0 {
		buf = make([]byte, n)
		if _, err := io.ReadFull(fr.r, buf); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Type: typ, Payload: buf}, nil
}

// WriteFrame emits the frame with a single Write so message-oriented
// transports carry it whole.
func (fw *framedWriter) WriteFrame(f Frame) error {
	if len(f.Payload) > maxPayload {
		return &errcode.E{C: errcode.Overflow, Op: "write_frame", Msg: "frame too large"}
	}
	fw.buf = append(fw.buf[:0], f.Type, byte(len(f.Payload)>>8), byte(len(f.Payload)))
	fw.buf = append(fw.buf, f.Payload...)
	_, err := fw.w.Write(fw.buf)
	return err
}
