package xlsx

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// elementHandler is called for a start element whose local name it was
// registered under. It may consume the element with DecodeElement or Skip,
// or leave it open so the walker descends into its children.
type elementHandler func(d *xml.Decoder, start xml.StartElement) error

// tokenWalker drives one streaming pass over a part. Elements are matched by
// local name only; the spreadsheetml namespace may or may not be declared
// with a prefix depending on the producer.
type tokenWalker struct {
	dec      *xml.Decoder
	handlers map[string]elementHandler
	part     string
}

func newTokenWalker(r io.Reader, part string, handlers map[string]elementHandler) *tokenWalker {
	return &tokenWalker{
		dec:      newXMLDecoder(r),
		handlers: handlers,
		part:     part,
	}
}

// step reads tokens until a handler has fired once. It returns io.EOF when
// the part is exhausted.
func (w *tokenWalker) step() error {
	for {
		tok, err := w.dec.Token()
		if err == io.EOF {
			return io.EOF
		}
		if err != nil {
			return w.syntaxError(err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		h, ok := w.handlers[start.Name.Local]
		if !ok {
			continue
		}
		if err := h(w.dec, start); err != nil {
			return w.syntaxError(err)
		}
		return nil
	}
}

// walk runs step to the end of the part.
func (w *tokenWalker) walk() error {
	for {
		err := w.step()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// syntaxError turns decoder failures into FormatErrors. Errors that already
// carry a type from this package pass through untouched.
func (w *tokenWalker) syntaxError(err error) error {
	var fe *FormatError
	var le *LookupError
	if errors.As(err, &fe) || errors.As(err, &le) {
		return err
	}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return NewFormatError("%s: malformed XML at line %d: %s", w.part, se.Line, se.Msg)
	}
	if _, ok := err.(xml.UnmarshalError); ok {
		return NewFormatError("%s: %v", w.part, err)
	}
	return errors.Wrapf(err, "reading %s", w.part)
}
