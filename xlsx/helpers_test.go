package xlsx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const mainNS = `xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"`

const workbookXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook ` + mainNS + ` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<workbookPr/>
<sheets><sheet name="Sheet1" sheetId="1" r:id="rId1"/></sheets>
</workbook>`

// buildPackage zips parts in name order.
func buildPackage(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(parts[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// writePackage writes a package into the test's temp dir and returns its path.
func writePackage(t *testing.T, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, os.WriteFile(path, buildPackage(t, parts), 0o644))
	return path
}

func quietLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// openContent opens an in-memory package with a quiet logger.
func openContent(t *testing.T, parts map[string]string) *Workbook {
	t.Helper()
	logger, _ := quietLogger()
	wb, err := OpenWorkbook("", &OpenWorkbookOptions{
		Logger:       logger,
		FileContents: buildPackage(t, parts),
	})
	require.NoError(t, err)
	return wb
}

// singleSheet is a package holding the workbook part and one worksheet.
func singleSheet(rows ...string) map[string]string {
	return map[string]string{
		"xl/workbook.xml":          workbookXML,
		"xl/worksheets/sheet1.xml": sheetXML(rows...),
	}
}

func sheetXML(rows ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<worksheet ` + mainNS + `><dimension ref="A1"/><sheetData>`)
	for i, r := range rows {
		fmt.Fprintf(&b, `<row r="%d">%s</row>`, i+1, r)
	}
	b.WriteString(`</sheetData></worksheet>`)
	return b.String()
}

// stylesXML declares one cellXfs record per numFmtId, preceded by a
// cellStyleXfs list that must not be counted.
func stylesXML(numFmtIDs ...int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<styleSheet ` + mainNS + `>`)
	b.WriteString(`<numFmts count="1"><numFmt numFmtId="164" formatCode="yyyy-mm-dd"/></numFmts>`)
	b.WriteString(`<cellStyleXfs count="2"><xf numFmtId="14"/><xf numFmtId="22"/></cellStyleXfs>`)
	fmt.Fprintf(&b, `<cellXfs count="%d">`, len(numFmtIDs))
	for _, id := range numFmtIDs {
		fmt.Fprintf(&b, `<xf numFmtId="%d" fontId="0" fillId="0" borderId="0" xfId="0"><alignment horizontal="left"/></xf>`, id)
	}
	b.WriteString(`</cellXfs></styleSheet>`)
	return b.String()
}

func sstXML(items ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	fmt.Fprintf(&b, `<sst `+mainNS+` count="%d" uniqueCount="%d">`, len(items), len(items))
	for _, it := range items {
		b.WriteString(`<si>` + it + `</si>`)
	}
	b.WriteString(`</sst>`)
	return b.String()
}

func inlineCell(ref, text string) string {
	return fmt.Sprintf(`<c r="%s" t="inlineStr"><is><t>%s</t></is></c>`, ref, text)
}
