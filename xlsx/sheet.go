package xlsx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Cell is one decoded worksheet cell.
//
// Value holds nil for KindEmpty, string for KindText, int64 or float64 for
// KindNumber, time.Time for KindDate, bool for KindBoolean and ErrorCode for
// KindError.
type Cell struct {
	Kind  CellKind
	Value interface{}
}

// EmptyCell returns an empty cell.
func EmptyCell() Cell {
	return Cell{Kind: KindEmpty}
}

// Row is the cells of one row element in document order. Rows are not
// padded: a row that omits trailing or intermediate cells is shorter.
type Row []Cell

// Values returns the row's plain values.
func (r Row) Values() []interface{} {
	values := make([]interface{}, len(r))
	for i, c := range r {
		values[i] = c.Value
	}
	return values
}

// xmlRow maps a row element of sheetData.
type xmlRow struct {
	R     string    `xml:"r,attr"`
	Cells []xmlCell `xml:"c"`
}

// xmlCell maps a c element. Its children are kept in order so that
// unexpected ones can be rejected.
type xmlCell struct {
	R        string         `xml:"r,attr"`
	S        string         `xml:"s,attr"`
	T        string         `xml:"t,attr"`
	Children []xmlCellChild `xml:",any"`
}

// xmlCellChild maps a v, f or is child of a cell.
type xmlCellChild struct {
	XMLName xml.Name
	Space   string        `xml:"space,attr"`
	Value   string        `xml:",chardata"`
	Nodes   []xmlTextNode `xml:",any"`
}

// rawCell is the cell as declared, before coercion.
type rawCell struct {
	typ     string
	text    string
	xfIndex int
}

func extractRawCell(c *xmlCell) (rawCell, error) {
	raw := rawCell{typ: c.T}
	if raw.typ == "" {
		raw.typ = cellTypeNumber
	}
	if c.S != "" {
		xfIndex, err := strconv.Atoi(c.S)
		if err != nil {
			return raw, NewFormatError("bad style index %q", c.S)
		}
		raw.xfIndex = xfIndex
	}

	for _, child := range c.Children {
		switch child.XMLName.Local {
		case "v":
			switch raw.typ {
			case cellTypeNumber, cellTypeShared, cellTypeBoolean, cellTypeError, cellTypeInlineString:
				raw.text = child.Value
			case cellTypeString:
				raw.text = cookText(child.Value, child.Space)
			default:
				return raw, NewFormatError("unknown cell type %q", raw.typ)
			}
		case "f":
			// Formulas are never evaluated; the cached value in v is used.
		case "is":
			if raw.typ != cellTypeInlineString {
				return raw, NewFormatError("bad child tag <is> in cell of type %q", raw.typ)
			}
			item := xmlStringItem{Nodes: child.Nodes}
			raw.text = item.Text()
		default:
			return raw, NewFormatError("bad child tag <%s>", child.XMLName.Local)
		}
	}
	return raw, nil
}

// cellDecoder turns raw cells into typed ones using the tables of one read.
type cellDecoder struct {
	styles *StyleTable
	sst    *SharedStrings
	log    logrus.FieldLogger
}

func (cd *cellDecoder) decodeCell(raw rawCell) (Cell, error) {
	switch raw.typ {
	case cellTypeNumber:
		if raw.text == "" {
			return EmptyCell(), nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw.text), 64)
		if err != nil {
			return Cell{}, NewFormatError("bad numeric value %q", raw.text)
		}
		return cd.numericCell(v, raw.xfIndex), nil

	case cellTypeShared:
		if raw.text == "" {
			return EmptyCell(), nil
		}
		idx, err := strconv.Atoi(strings.TrimSpace(raw.text))
		if errors.Is(err, strconv.ErrRange) {
			return Cell{}, NewLookupError("shared string index %s out of range (table has %d entries)", strings.TrimSpace(raw.text), cd.sst.Len())
		}
		if err != nil {
			return Cell{}, NewFormatError("bad shared string index %q", raw.text)
		}
		s, err := cd.sst.Lookup(idx)
		if err != nil {
			return Cell{}, err
		}
		return textCell(s), nil

	case cellTypeString, cellTypeInlineString:
		return textCell(raw.text), nil

	case cellTypeBoolean:
		b, err := XsdToBoolean(raw.text)
		if err != nil {
			return Cell{}, err
		}
		return Cell{Kind: KindBoolean, Value: b}, nil

	case cellTypeError:
		code, err := ErrorCodeFromText(raw.text)
		if err != nil {
			return Cell{}, err
		}
		return Cell{Kind: KindError, Value: code}, nil
	}
	return Cell{}, NewFormatError("unknown cell type %q", raw.typ)
}

func (cd *cellDecoder) numericCell(v float64, xfIndex int) Cell {
	if cd.styles != nil && !cd.styles.Has(xfIndex) {
		cd.log.WithField("xf", xfIndex).Debug("unknown style index, treating as number")
	}
	if cd.styles.Kind(xfIndex) != KindDate {
		return Cell{Kind: KindNumber, Value: NormalizeNumber(v)}
	}
	t, err := XldateAsDatetime(v)
	if err != nil {
		cd.log.WithError(err).Debug("date out of range, keeping serial")
		return Cell{Kind: KindNumber, Value: v}
	}
	return Cell{Kind: KindDate, Value: t}
}

func textCell(s string) Cell {
	if s == "" {
		return EmptyCell()
	}
	return Cell{Kind: KindText, Value: s}
}

// SheetReader is a forward-only cursor over the rows of one worksheet. Only
// the row being decoded is held in memory.
type SheetReader struct {
	// Number is the sheet number taken from the part name.
	Number int

	// Part is the stored name of the worksheet part.
	Part string

	pkg     *Package
	rc      io.ReadCloser
	walker  *tokenWalker
	cells   *cellDecoder
	log     logrus.FieldLogger
	pending Row
	rowx    int
	done    bool
}

func newSheetReader(pkg *Package, number int, part string, cells *cellDecoder, log logrus.FieldLogger) (*SheetReader, error) {
	rc, err := pkg.Open(part)
	if err != nil {
		return nil, err
	}
	sr := &SheetReader{
		Number: number,
		Part:   part,
		pkg:    pkg,
		rc:     rc,
		cells:  cells,
		log:    log.WithFields(logrus.Fields{"sheet": number, "part": part}),
	}
	sr.walker = newTokenWalker(rc, part, map[string]elementHandler{
		"row": sr.decodeRow,
	})
	return sr, nil
}

func (sr *SheetReader) decodeRow(d *xml.Decoder, start xml.StartElement) error {
	var xr xmlRow
	if err := d.DecodeElement(&xr, &start); err != nil {
		return err
	}

	row := make(Row, 0, len(xr.Cells))
	for colx := range xr.Cells {
		c := &xr.Cells[colx]
		raw, err := extractRawCell(c)
		if err == nil {
			var cell Cell
			cell, err = sr.cells.decodeCell(raw)
			row = append(row, cell)
		}
		if err != nil {
			return sr.cellError(c.R, colx, err)
		}
	}
	sr.pending = row
	return nil
}

// cellError prefixes err with the cell's position, keeping its type.
func (sr *SheetReader) cellError(ref string, colx int, err error) error {
	where := ref
	if where == "" {
		where = fmt.Sprintf("row %d column %d", sr.rowx+1, colx+1)
	}
	switch e := err.(type) {
	case *FormatError:
		return NewFormatError("%s: cell %s: %s", sr.Part, where, e.Message)
	case *LookupError:
		return NewLookupError("%s: cell %s: %s", sr.Part, where, e.Message)
	}
	return errors.Wrapf(err, "%s: cell %s", sr.Part, where)
}

// ReadRow returns the next row, or io.EOF once the sheet is exhausted.
func (sr *SheetReader) ReadRow() (Row, error) {
	if sr.done {
		return nil, io.EOF
	}
	sr.pending = nil
	if err := sr.walker.step(); err != nil {
		sr.done = true
		return nil, err
	}
	sr.rowx++
	sr.log.WithFields(logrus.Fields{"row": sr.rowx, "cells": len(sr.pending)}).Trace("decoded row")
	return sr.pending, nil
}

// Close releases the part stream and the container.
func (sr *SheetReader) Close() error {
	if sr.rc == nil {
		return errors.New("sheet reader already closed")
	}
	err := sr.rc.Close()
	sr.rc = nil
	sr.done = true
	if cerr := sr.pkg.Close(); err == nil {
		err = cerr
	}
	sr.log.WithField("rows", sr.rowx).Debug("closed sheet")
	return err
}
