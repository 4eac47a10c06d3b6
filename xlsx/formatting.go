package xlsx

import (
	"encoding/xml"
	"io"
	"strconv"
)

// XF represents the part of an extended format record this reader uses.
type XF struct {
	// FormatKey is the numFmtId of the record.
	FormatKey int
}

// StyleTable maps a cell's style index (its s attribute) to the kind its
// numeric value decodes to. A nil *StyleTable is valid and treats every
// index as a plain number.
type StyleTable struct {
	// XFList holds the cellXfs records in declaration order.
	XFList []*XF
}

// Built-in number formats that display a date or time. Custom formats
// (ids 164 and up) are never classified as dates, even when their format
// string is one.
var dateFormatIDs = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	45: true, 46: true, 47: true,
}

// IsDateFormatID reports whether numFmtId is a built-in date/time format.
func IsDateFormatID(numFmtID int) bool {
	return dateFormatIDs[numFmtID]
}

// Kind returns the kind of numeric cells using style index xfIndex.
// Unknown indexes fall back to KindNumber.
func (st *StyleTable) Kind(xfIndex int) CellKind {
	if st == nil || xfIndex < 0 || xfIndex >= len(st.XFList) {
		return KindNumber
	}
	if IsDateFormatID(st.XFList[xfIndex].FormatKey) {
		return KindDate
	}
	return KindNumber
}

func (st *StyleTable) xfList() []*XF {
	if st == nil {
		return nil
	}
	return st.XFList
}

// Has reports whether xfIndex was declared in the styles part.
func (st *StyleTable) Has(xfIndex int) bool {
	return st != nil && xfIndex >= 0 && xfIndex < len(st.XFList)
}

const (
	xfTypeNone = iota
	xfTypeCellStyle
	xfTypeCell
)

// readStyleTable parses the styles part. Both cellStyleXfs and cellXfs hold
// xf records; only those under cellXfs are addressed by cell s attributes.
func readStyleTable(r io.Reader, part string) (*StyleTable, error) {
	st := &StyleTable{}
	xfType := xfTypeNone

	handlers := map[string]elementHandler{
		"cellStyleXfs": func(_ *xml.Decoder, _ xml.StartElement) error {
			xfType = xfTypeCellStyle
			return nil
		},
		"cellXfs": func(_ *xml.Decoder, _ xml.StartElement) error {
			xfType = xfTypeCell
			return nil
		},
		"xf": func(_ *xml.Decoder, start xml.StartElement) error {
			if xfType != xfTypeCell {
				return nil
			}
			numFmtID := 0
			if v, ok := attrValue(start, "numFmtId"); ok {
				n, err := strconv.Atoi(v)
				if err != nil {
					return NewFormatError("%s: bad numFmtId %q on xf %d", part, v, len(st.XFList))
				}
				numFmtID = n
			}
			st.XFList = append(st.XFList, &XF{FormatKey: numFmtID})
			return nil
		},
	}

	if err := newTokenWalker(r, part, handlers).walk(); err != nil {
		return nil, err
	}
	return st, nil
}

func attrValue(start xml.StartElement, local string) (string, bool) {
	for _, a := range start.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
