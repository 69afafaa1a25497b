// Package wire moves opaque byte frames over a stream connection. Each
// frame is a big-endian uint32 length (prefix included) followed by the
// payload bytes.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	lengthFieldSize = 4

	// MaxFrameLength caps what a decoder will accept, so a corrupt or
	// hostile length prefix cannot make us allocate without bound.
	MaxFrameLength = 1 << 24
)

type Decoder struct {
	source io.Reader
	buf    []byte
}

func NewDecoder(source io.Reader) *Decoder {
	return &Decoder{source: source}
}

// Read returns the next frame. The returned slice is reused by the next
// call; callers that hold on to a frame must copy it.
func (d *Decoder) Read() ([]byte, error) {
	resizeSlice(&d.buf, lengthFieldSize)
	if _, err := io.ReadFull(d.source, d.buf); err != nil {
		return nil, err
	}

	frameLength := int(binary.BigEndian.Uint32(d.buf)) - lengthFieldSize
	if frameLength < 0 || frameLength > MaxFrameLength {
		return nil, fmt.Errorf("wire: invalid frame length %d", frameLength+lengthFieldSize)
	}

	resizeSlice(&d.buf, frameLength)
	if _, err := io.ReadFull(d.source, d.buf); err != nil {
		return nil, err
	}
	return d.buf, nil
}

type Encoder struct {
	sink    io.Writer
	scratch [lengthFieldSize]byte
}

func NewEncoder(sink io.Writer) *Encoder {
	return &Encoder{sink: sink}
}

func (e *Encoder) Write(frame []byte) error {
	if len(frame) > MaxFrameLength {
		return fmt.Errorf("wire: frame of %d bytes exceeds the %d byte limit", len(frame), MaxFrameLength)
	}
	binary.BigEndian.PutUint32(e.scratch[:], uint32(len(frame)+lengthFieldSize))
	if _, err := e.sink.Write(e.scratch[:]); err != nil {
		return err
	}
	_, err := e.sink.Write(frame)
	return err
}

// Point *slicePtr at a slice of exactly length bytes, growing the
// underlying array in 512-byte steps when it is too small.
func resizeSlice(slicePtr *[]byte, length int) {
	slice := *slicePtr
	if length > cap(slice) {
		remainder := length % 512
		if remainder == 0 {
			slice = make([]byte, length)
		} else {
			slice = make([]byte, length+(512-remainder))
		}
	}
	*slicePtr = slice[:length]
}
