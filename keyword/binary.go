package keyword

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/maulingogri/resfile/blobstore"
)

// binaryCodec implements the unformatted (Fortran sequential) variant.
//
// Each record is a 24-byte header record followed by zero or more data
// blocks. Every Fortran record is framed by a leading and a trailing
// int32 byte count. The header holds the 8-character name, the element
// count and the 4-character type mnemonic; data blocks carry at most
// 1000 elements (105 for CHAR).
type binaryCodec struct {
	order binary.ByteOrder
}

const headerRecordLen = 4 + 16 + 4

// NewBinary returns the unformatted codec for the given byte order.
// A nil order selects big-endian, the ECLIPSE native byte order.
func NewBinary(order binary.ByteOrder) Codec {
	if order == nil {
		order = binary.BigEndian
	}
	return &binaryCodec{order: order}
}

func (c *binaryCodec) ReadHeader(ctx context.Context, blob blobstore.Blob, off int64) (Header, int64, error) {
	var buf [headerRecordLen]byte
	n, err := blob.ReadAt(ctx, buf[:], off)
	if n == 0 && err == io.EOF {
		return Header{}, 0, io.EOF
	}
	if n < len(buf) {
		if err == nil || err == io.EOF {
			return Header{}, 0, formatErr(off, "truncated record header", io.ErrUnexpectedEOF)
		}
		return Header{}, 0, err
	}

	if lead := c.order.Uint32(buf[0:4]); lead != 16 {
		return Header{}, 0, formatErr(off, fmt.Sprintf("bad header record marker %d", lead), nil)
	}
	name := strings.TrimRight(string(buf[4:12]), " ")
	count := int32(c.order.Uint32(buf[12:16]))
	typ, err := TypeFromMnemonic(string(buf[16:20]))
	if err != nil {
		return Header{}, 0, formatErr(off, "bad type mnemonic", err)
	}
	if tail := c.order.Uint32(buf[20:24]); tail != 16 {
		return Header{}, 0, formatErr(off, fmt.Sprintf("bad header record marker %d", tail), nil)
	}

	hdr := Header{Name: name, Type: typ, Count: int(count)}
	if err := hdr.Validate(); err != nil {
		return Header{}, 0, formatErr(off, "bad record header", err)
	}
	return hdr, off + headerRecordLen, nil
}

// payloadSize returns the exact on-disk payload length, including the
// per-block record markers.
func (c *binaryCodec) payloadSize(hdr Header) int64 {
	if hdr.Count == 0 {
		return 0
	}
	bl := hdr.Type.blockLen()
	blocks := (hdr.Count + bl - 1) / bl
	return int64(hdr.Count)*int64(hdr.Type.elementSize()) + int64(blocks)*8
}

func (c *binaryCodec) SkipPayload(_ context.Context, blob blobstore.Blob, hdr Header, off int64) (int64, error) {
	end := off + c.payloadSize(hdr)
	if end > blob.Size() {
		return 0, formatErr(off, fmt.Sprintf("truncated payload for keyword %s", hdr.Name), io.ErrUnexpectedEOF)
	}
	return end, nil
}

func (c *binaryCodec) ReadPayload(ctx context.Context, blob blobstore.Blob, hdr Header, off int64) (Value, error) {
	if hdr.Type == MESS {
		return NewMessage(), nil
	}

	esize := hdr.Type.elementSize()
	raw := make([]byte, hdr.Count*esize)
	cur := off
	filled := 0
	remaining := hdr.Count
	bl := hdr.Type.blockLen()
	var marker [4]byte

	for remaining > 0 {
		bn := remaining
		if bn > bl {
			bn = bl
		}
		nbytes := bn * esize

		if err := readFull(ctx, blob, marker[:], cur); err != nil {
			return Value{}, c.payloadReadErr(hdr, off, err)
		}
		if got := c.order.Uint32(marker[:]); got != uint32(nbytes) {
			return Value{}, formatErr(cur, fmt.Sprintf("bad data block marker %d for keyword %s, want %d", got, hdr.Name, nbytes), nil)
		}
		cur += 4

		if err := readFull(ctx, blob, raw[filled:filled+nbytes], cur); err != nil {
			return Value{}, c.payloadReadErr(hdr, off, err)
		}
		cur += int64(nbytes)

		if err := readFull(ctx, blob, marker[:], cur); err != nil {
			return Value{}, c.payloadReadErr(hdr, off, err)
		}
		if got := c.order.Uint32(marker[:]); got != uint32(nbytes) {
			return Value{}, formatErr(cur, fmt.Sprintf("bad data block marker %d for keyword %s, want %d", got, hdr.Name, nbytes), nil)
		}
		cur += 4

		filled += nbytes
		remaining -= bn
	}

	return c.decode(hdr, raw), nil
}

func (c *binaryCodec) payloadReadErr(hdr Header, off int64, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return formatErr(off, fmt.Sprintf("truncated payload for keyword %s", hdr.Name), io.ErrUnexpectedEOF)
	}
	return err
}

func (c *binaryCodec) decode(hdr Header, raw []byte) Value {
	switch hdr.Type {
	case CHAR:
		vs := make([]string, hdr.Count)
		for i := range vs {
			vs[i] = strings.TrimRight(string(raw[i*8:i*8+8]), " ")
		}
		return NewChars(vs)
	case INTE:
		vs := make([]int32, hdr.Count)
		for i := range vs {
			vs[i] = int32(c.order.Uint32(raw[i*4:]))
		}
		return NewInts(vs)
	case REAL:
		vs := make([]float32, hdr.Count)
		for i := range vs {
			vs[i] = math.Float32frombits(c.order.Uint32(raw[i*4:]))
		}
		return NewReals(vs)
	case DOUB:
		vs := make([]float64, hdr.Count)
		for i := range vs {
			vs[i] = math.Float64frombits(c.order.Uint64(raw[i*8:]))
		}
		return NewDoubles(vs)
	case LOGI:
		vs := make([]bool, hdr.Count)
		for i := range vs {
			vs[i] = c.order.Uint32(raw[i*4:]) != 0
		}
		return NewLogicals(vs)
	default:
		return NewMessage()
	}
}

func (c *binaryCodec) Write(w io.Writer, hdr Header, v Value) error {
	if err := validateRecord(hdr, v); err != nil {
		return err
	}

	var buf [headerRecordLen]byte
	c.order.PutUint32(buf[0:4], 16)
	copy(buf[4:12], "        ")
	copy(buf[4:12], hdr.Name)
	c.order.PutUint32(buf[12:16], uint32(int32(hdr.Count)))
	copy(buf[16:20], hdr.Type.String())
	c.order.PutUint32(buf[20:24], 16)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	raw, err := c.encode(hdr, v)
	if err != nil {
		return err
	}

	esize := hdr.Type.elementSize()
	bl := hdr.Type.blockLen()
	remaining := hdr.Count
	filled := 0
	var marker [4]byte
	for remaining > 0 {
		bn := remaining
		if bn > bl {
			bn = bl
		}
		nbytes := bn * esize

		c.order.PutUint32(marker[:], uint32(nbytes))
		if _, err := w.Write(marker[:]); err != nil {
			return err
		}
		if _, err := w.Write(raw[filled : filled+nbytes]); err != nil {
			return err
		}
		if _, err := w.Write(marker[:]); err != nil {
			return err
		}

		filled += nbytes
		remaining -= bn
	}
	return nil
}

func (c *binaryCodec) encode(hdr Header, v Value) ([]byte, error) {
	raw := make([]byte, hdr.Count*hdr.Type.elementSize())
	switch hdr.Type {
	case CHAR:
		vs, _ := v.Chars()
		for i, s := range vs {
			if len(s) > MaxNameLen {
				return nil, fmt.Errorf("CHAR element %q in keyword %s exceeds 8 characters", s, hdr.Name)
			}
			copy(raw[i*8:i*8+8], "        ")
			copy(raw[i*8:i*8+8], s)
		}
	case INTE:
		vs, _ := v.Ints()
		for i, x := range vs {
			c.order.PutUint32(raw[i*4:], uint32(x))
		}
	case REAL:
		vs, _ := v.Reals()
		for i, x := range vs {
			c.order.PutUint32(raw[i*4:], math.Float32bits(x))
		}
	case DOUB:
		vs, _ := v.Doubles()
		for i, x := range vs {
			c.order.PutUint64(raw[i*8:], math.Float64bits(x))
		}
	case LOGI:
		vs, _ := v.Logicals()
		for i, x := range vs {
			if x {
				// Fortran .TRUE. is all bits set.
				c.order.PutUint32(raw[i*4:], ^uint32(0))
			}
		}
	}
	return raw, nil
}

// validateRecord checks a header/payload pair before writing.
func validateRecord(hdr Header, v Value) error {
	if err := hdr.Validate(); err != nil {
		return err
	}
	if v.Type() != hdr.Type {
		return fmt.Errorf("payload type %s does not match header type %s for keyword %s", v.Type(), hdr.Type, hdr.Name)
	}
	if v.Len() != hdr.Count {
		return fmt.Errorf("payload length %d does not match header count %d for keyword %s", v.Len(), hdr.Count, hdr.Name)
	}
	return nil
}
