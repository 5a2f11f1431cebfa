package keyword

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maulingogri/resfile/blobstore"
)

// formattedCodec implements the text variant.
//
// A record is a header line of the form
//
//	'NAME    '          COUNT 'TYPE'
//
// followed by the elements as whitespace-separated tokens: CHAR values
// quoted, LOGI as T/F, DOUB with Fortran 'D' exponents. The text
// variant has no byte counts, so skipping a payload still has to scan
// its tokens.
type formattedCodec struct{}

// NewFormatted returns the text-variant codec.
func NewFormatted() Codec {
	return &formattedCodec{}
}

func (c *formattedCodec) ReadHeader(ctx context.Context, blob blobstore.Blob, off int64) (Header, int64, error) {
	s := newScanner(ctx, blob, off)

	// A clean EOF before the name means the previous record was the
	// last one. EOF anywhere later is a truncated header.
	if err := s.skipSpace(); err != nil {
		if err == io.EOF {
			return Header{}, 0, io.EOF
		}
		return Header{}, 0, err
	}

	name, err := s.quoted()
	if err != nil {
		return Header{}, 0, headerErr(off, err)
	}
	countTok, err := s.token()
	if err != nil {
		return Header{}, 0, headerErr(off, err)
	}
	count, err := strconv.Atoi(countTok)
	if err != nil {
		return Header{}, 0, formatErr(off, fmt.Sprintf("bad element count %q", countTok), nil)
	}
	mnem, err := s.quoted()
	if err != nil {
		return Header{}, 0, headerErr(off, err)
	}
	typ, err := TypeFromMnemonic(strings.TrimRight(mnem, " "))
	if err != nil {
		return Header{}, 0, formatErr(off, "bad type mnemonic", err)
	}

	hdr := Header{Name: strings.TrimRight(name, " "), Type: typ, Count: count}
	if err := hdr.Validate(); err != nil {
		return Header{}, 0, formatErr(off, "bad record header", err)
	}
	return hdr, s.offset(), nil
}

func (c *formattedCodec) SkipPayload(ctx context.Context, blob blobstore.Blob, hdr Header, off int64) (int64, error) {
	s := newScanner(ctx, blob, off)
	for i := 0; i < hdr.Count; i++ {
		var err error
		if hdr.Type == CHAR {
			_, err = s.quoted()
		} else {
			_, err = s.token()
		}
		if err != nil {
			return 0, payloadErr(hdr, off, err)
		}
	}
	return s.offset(), nil
}

func (c *formattedCodec) ReadPayload(ctx context.Context, blob blobstore.Blob, hdr Header, off int64) (Value, error) {
	s := newScanner(ctx, blob, off)

	switch hdr.Type {
	case MESS:
		return NewMessage(), nil
	case CHAR:
		vs := make([]string, hdr.Count)
		for i := range vs {
			tok, err := s.quoted()
			if err != nil {
				return Value{}, payloadErr(hdr, off, err)
			}
			vs[i] = strings.TrimRight(tok, " ")
		}
		return NewChars(vs), nil
	case INTE:
		vs := make([]int32, hdr.Count)
		for i := range vs {
			tok, err := s.token()
			if err != nil {
				return Value{}, payloadErr(hdr, off, err)
			}
			x, err := strconv.ParseInt(tok, 10, 32)
			if err != nil {
				return Value{}, formatErr(off, fmt.Sprintf("bad INTE element %q in keyword %s", tok, hdr.Name), nil)
			}
			vs[i] = int32(x)
		}
		return NewInts(vs), nil
	case REAL:
		vs := make([]float32, hdr.Count)
		for i := range vs {
			x, err := c.parseFloat(s, hdr, off, 32)
			if err != nil {
				return Value{}, err
			}
			vs[i] = float32(x)
		}
		return NewReals(vs), nil
	case DOUB:
		vs := make([]float64, hdr.Count)
		for i := range vs {
			x, err := c.parseFloat(s, hdr, off, 64)
			if err != nil {
				return Value{}, err
			}
			vs[i] = x
		}
		return NewDoubles(vs), nil
	case LOGI:
		vs := make([]bool, hdr.Count)
		for i := range vs {
			tok, err := s.token()
			if err != nil {
				return Value{}, payloadErr(hdr, off, err)
			}
			switch tok {
			case "T":
				vs[i] = true
			case "F":
				vs[i] = false
			default:
				return Value{}, formatErr(off, fmt.Sprintf("bad LOGI element %q in keyword %s", tok, hdr.Name), nil)
			}
		}
		return NewLogicals(vs), nil
	default:
		return Value{}, formatErr(off, fmt.Sprintf("unsupported type %s", hdr.Type), nil)
	}
}

func (c *formattedCodec) parseFloat(s *scanner, hdr Header, off int64, bits int) (float64, error) {
	tok, err := s.token()
	if err != nil {
		return 0, payloadErr(hdr, off, err)
	}
	// Fortran double literals use a 'D' exponent marker.
	norm := strings.Map(func(r rune) rune {
		if r == 'D' || r == 'd' {
			return 'E'
		}
		return r
	}, tok)
	x, err := strconv.ParseFloat(norm, bits)
	if err != nil {
		return 0, formatErr(off, fmt.Sprintf("bad %s element %q in keyword %s", hdr.Type, tok, hdr.Name), nil)
	}
	return x, nil
}

// Per-line element layouts of the text variant.
const (
	charsPerLine    = 7
	intsPerLine     = 6
	realsPerLine    = 4
	doublesPerLine  = 3
	logicalsPerLine = 25
)

func (c *formattedCodec) Write(w io.Writer, hdr Header, v Value) error {
	if err := validateRecord(hdr, v); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, " '%-8s' %11d '%-4s'\n", hdr.Name, hdr.Count, hdr.Type); err != nil {
		return err
	}

	switch hdr.Type {
	case CHAR:
		vs, _ := v.Chars()
		return writeColumns(w, vs, charsPerLine, func(s string) (string, error) {
			if len(s) > MaxNameLen {
				return "", fmt.Errorf("CHAR element %q in keyword %s exceeds 8 characters", s, hdr.Name)
			}
			return fmt.Sprintf(" '%-8s'", s), nil
		})
	case INTE:
		vs, _ := v.Ints()
		return writeColumns(w, vs, intsPerLine, func(x int32) (string, error) {
			return fmt.Sprintf(" %11d", x), nil
		})
	case REAL:
		vs, _ := v.Reals()
		return writeColumns(w, vs, realsPerLine, func(x float32) (string, error) {
			return fmt.Sprintf(" %16.8E", x), nil
		})
	case DOUB:
		vs, _ := v.Doubles()
		return writeColumns(w, vs, doublesPerLine, func(x float64) (string, error) {
			return strings.Replace(fmt.Sprintf(" %22.14E", x), "E", "D", 1), nil
		})
	case LOGI:
		vs, _ := v.Logicals()
		return writeColumns(w, vs, logicalsPerLine, func(x bool) (string, error) {
			if x {
				return "  T", nil
			}
			return "  F", nil
		})
	default:
		return nil
	}
}

func writeColumns[T any](w io.Writer, vs []T, perLine int, format func(T) (string, error)) error {
	for i, x := range vs {
		s, err := format(x)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
		if (i+1)%perLine == 0 || i == len(vs)-1 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func headerErr(off int64, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return formatErr(off, "truncated record header", io.ErrUnexpectedEOF)
	}
	if _, ok := err.(*FormatError); ok {
		return err
	}
	return formatErr(off, "bad record header", err)
}

func payloadErr(hdr Header, off int64, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return formatErr(off, fmt.Sprintf("truncated payload for keyword %s", hdr.Name), io.ErrUnexpectedEOF)
	}
	return err
}
