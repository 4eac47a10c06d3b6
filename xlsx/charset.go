package xlsx

import (
	"encoding/xml"
	"io"

	"golang.org/x/text/encoding/htmlindex"
)

// newXMLDecoder returns a decoder for a package part. Parts are normally
// UTF-8, but some producers write an XML declaration such as
// encoding="windows-1252"; those are transcoded on the fly.
func newXMLDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.CharsetReader = charsetReader
	return d
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, NewFormatError("unsupported XML encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
