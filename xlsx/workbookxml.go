package xlsx

import (
	"encoding/xml"
	"io"

	"github.com/sirupsen/logrus"
)

// workbookInfo is what the workbook part contributes: the date system flag
// and the sheet names in tab order.
type workbookInfo struct {
	Date1904   bool
	SheetNames []string
}

// readWorkbookInfo never fails on the date1904 literal: the flag is
// informational, so an unreadable value is logged and treated as false.
func readWorkbookInfo(r io.Reader, part string, log logrus.FieldLogger) (*workbookInfo, error) {
	info := &workbookInfo{}
	handlers := map[string]elementHandler{
		"workbookPr": func(_ *xml.Decoder, start xml.StartElement) error {
			v, ok := attrValue(start, "date1904")
			if !ok {
				return nil
			}
			b, err := XsdToBoolean(v)
			if err != nil {
				log.WithFields(logrus.Fields{"part": part, "date1904": v}).Debug("ignoring unreadable date1904 flag")
				return nil
			}
			info.Date1904 = b
			return nil
		},
		"sheet": func(d *xml.Decoder, start xml.StartElement) error {
			name, _ := attrValue(start, "name")
			info.SheetNames = append(info.SheetNames, name)
			return d.Skip()
		},
	}

	if err := newTokenWalker(r, part, handlers).walk(); err != nil {
		return nil, err
	}
	return info, nil
}
