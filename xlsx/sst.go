package xlsx

import (
	"encoding/xml"
	"io"
	"strings"
)

// xmlText maps a t element.
type xmlText struct {
	Space string `xml:"space,attr"`
	Value string `xml:",chardata"`
}

// xmlTextNode maps one child of an si or is element. A t child carries its
// text in Value; an r (rich text run) child carries it in Runs. Anything else,
// phonetic rPh runs included, is ignored.
type xmlTextNode struct {
	XMLName xml.Name
	Space   string    `xml:"space,attr"`
	Value   string    `xml:",chardata"`
	Runs    []xmlText `xml:"t"`
}

// xmlStringItem maps an si element of the shared strings part, or the is
// element of an inline string cell.
type xmlStringItem struct {
	Nodes []xmlTextNode `xml:",any"`
}

// Text concatenates the item's runs in document order.
func (it *xmlStringItem) Text() string {
	var b strings.Builder
	for _, node := range it.Nodes {
		switch node.XMLName.Local {
		case "t":
			b.WriteString(cookText(node.Value, node.Space))
		case "r":
			for _, run := range node.Runs {
				b.WriteString(cookText(run.Value, run.Space))
			}
		}
	}
	return b.String()
}

// SharedStrings is the workbook's shared string table, indexed from 0 in
// declaration order. A nil *SharedStrings is an empty table.
type SharedStrings struct {
	strings []string
}

// Len returns the number of strings in the table.
func (s *SharedStrings) Len() int {
	if s == nil {
		return 0
	}
	return len(s.strings)
}

// Lookup returns string i, or a LookupError when i is out of range.
func (s *SharedStrings) Lookup(i int) (string, error) {
	if i < 0 || i >= s.Len() {
		return "", NewLookupError("shared string index %d out of range (table has %d entries)", i, s.Len())
	}
	return s.strings[i], nil
}

// readSharedStrings materialises the whole table; cells reference it at
// random. Each si element is decoded on its own and dropped afterwards.
func readSharedStrings(r io.Reader, part string) (*SharedStrings, error) {
	sst := &SharedStrings{}
	handlers := map[string]elementHandler{
		"si": func(d *xml.Decoder, start xml.StartElement) error {
			var item xmlStringItem
			if err := d.DecodeElement(&item, &start); err != nil {
				return err
			}
			sst.strings = append(sst.strings, item.Text())
			return nil
		},
	}

	if err := newTokenWalker(r, part, handlers).walk(); err != nil {
		return nil, err
	}
	return sst, nil
}
