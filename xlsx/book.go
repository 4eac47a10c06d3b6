package xlsx

import (
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Workbook is an xlsx file opened for data extraction.
//
// Opening only validates the container and reads the workbook part. Every
// read reopens the container and rebuilds the style and shared string tables,
// so nothing read earlier can go stale.
//
// You should not instantiate this type yourself. Use OpenWorkbook.
type Workbook struct {
	path     string
	content  []byte
	log      logrus.FieldLogger
	names    map[string]string
	sheets   map[int]string
	date1904 bool

	sheetNames []string
}

// OpenWorkbookOptions contains options for opening a workbook.
type OpenWorkbookOptions struct {
	// Logger receives diagnostics. When nil a logger writing to stderr at
	// info level is used, raised by Verbosity.
	Logger logrus.FieldLogger

	// Verbosity increases the volume of trace material written by the
	// default logger: 1 enables debug output, 2 and above per-row tracing.
	Verbosity int

	// FileContents is the file contents as bytes.
	// If FileContents is supplied, the filename is only used in messages.
	FileContents []byte
}

// OpenWorkbook opens an xlsx file for data extraction.
//
// It fails with a *FormatError if the file is not a zip package or has no
// xl/workbook.xml part.
func OpenWorkbook(filename string, options *OpenWorkbookOptions) (*Workbook, error) {
	if options == nil {
		options = &OpenWorkbookOptions{}
	}
	log := options.Logger
	if log == nil {
		log = newDefaultLogger(options.Verbosity)
	}

	wb := &Workbook{
		path:    filename,
		content: options.FileContents,
		log:     log.WithField("path", displayName(filename)),
	}

	pkg, err := openPackage(wb.path, wb.content, wb.log)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()
	wb.names = pkg.ComponentNames
	wb.sheets = identifySheets(pkg.partNames)

	info, err := readPart(pkg, partWorkbook, func(r io.Reader, part string) (*workbookInfo, error) {
		return readWorkbookInfo(r, part, wb.log)
	})
	if err != nil {
		return nil, err
	}
	wb.date1904 = info.Date1904
	wb.sheetNames = info.SheetNames

	wb.log.WithFields(logrus.Fields{
		"parts":  len(wb.names),
		"sheets": len(wb.sheets),
	}).Debug("opened workbook")
	return wb, nil
}

func newDefaultLogger(verbosity int) logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	switch {
	case verbosity >= 2:
		l.SetLevel(logrus.TraceLevel)
	case verbosity == 1:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// readPart opens one part, hands it to parse and closes it again.
func readPart[T any](pkg *Package, name string, parse func(io.Reader, string) (T, error)) (T, error) {
	var zero T
	rc, err := pkg.Open(name)
	if err != nil {
		return zero, err
	}
	defer rc.Close()
	return parse(rc, pkg.ComponentNames[normalizePartName(name)])
}

var sheetPartRe = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)

// identifySheets picks the worksheet parts out of the stored part names. The
// number is the one embedded in the part name, which usually but not always
// matches the tab position. When two parts carry the same number (sheet1.xml
// and sheet01.xml) the one later in the archive wins.
func identifySheets(stored []string) map[int]string {
	sheets := make(map[int]string)
	for _, name := range stored {
		m := sheetPartRe.FindStringSubmatch(normalizePartName(name))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		sheets[n] = name
	}
	return sheets
}

// Sheets returns the worksheet parts keyed by sheet number. The mapping is
// fixed when the workbook is opened.
func (wb *Workbook) Sheets() map[int]string {
	sheets := make(map[int]string, len(wb.sheets))
	for n, part := range wb.sheets {
		sheets[n] = part
	}
	return sheets
}

// SheetNumbers returns the sheet numbers in ascending order.
func (wb *Workbook) SheetNumbers() []int {
	numbers := make([]int, 0, len(wb.sheets))
	for n := range wb.sheets {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// SheetNames returns the sheet names declared in the workbook part, in tab
// order. They are informational; sheets are addressed by number.
func (wb *Workbook) SheetNames() []string {
	return wb.sheetNames
}

// Date1904 reports the workbook's date1904 flag. Date cells are decoded with
// the 1900 system regardless of it.
func (wb *Workbook) Date1904() bool {
	return wb.date1904
}

// OpenSheet starts a streaming read of sheet n. The caller must Close the
// returned reader. It fails with a *LookupError if there is no sheet n.
func (wb *Workbook) OpenSheet(n int) (*SheetReader, error) {
	part, ok := wb.sheets[n]
	if !ok {
		return nil, NewLookupError("%s: no sheet %d", displayName(wb.path), n)
	}

	pkg, err := openPackage(wb.path, wb.content, wb.log)
	if err != nil {
		return nil, err
	}

	cells, err := wb.loadTables(pkg)
	if err != nil {
		pkg.Close()
		return nil, err
	}

	sr, err := newSheetReader(pkg, n, part, cells, wb.log)
	if err != nil {
		pkg.Close()
		return nil, err
	}
	return sr, nil
}

// loadTables builds the style and shared string tables, one part at a time.
func (wb *Workbook) loadTables(pkg *Package) (*cellDecoder, error) {
	cd := &cellDecoder{log: wb.log}

	if pkg.Has(partStyles) {
		styles, err := readPart(pkg, partStyles, readStyleTable)
		if err != nil {
			return nil, err
		}
		cd.styles = styles
	}

	if pkg.Has(partSharedStrings) {
		sst, err := readPart(pkg, partSharedStrings, readSharedStrings)
		if err != nil {
			return nil, err
		}
		cd.sst = sst
	}

	wb.log.WithFields(logrus.Fields{
		"xfs":     len(cd.styles.xfList()),
		"strings": cd.sst.Len(),
	}).Debug("loaded tables")
	return cd, nil
}

// ReadSheet returns every row of sheet n. By convention the first row holds
// the column labels; it is returned like any other row.
func (wb *Workbook) ReadSheet(n int) (rows []Row, err error) {
	sr, err := wb.OpenSheet(n)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := sr.Close(); err == nil && cerr != nil {
			rows, err = nil, errors.Wrapf(cerr, "closing sheet %d", n)
		}
	}()

	for {
		row, err := sr.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadAllSheets reads every sheet, keyed by sheet number.
func (wb *Workbook) ReadAllSheets() (map[int][]Row, error) {
	all := make(map[int][]Row)
	for _, n := range wb.SheetNumbers() {
		rows, err := wb.ReadSheet(n)
		if err != nil {
			return nil, err
		}
		all[n] = rows
	}
	return all, nil
}
