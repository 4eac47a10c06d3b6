package xlsx

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FileFormatDescriptions provides descriptions of the file types that can be inspected.
var FileFormatDescriptions = map[string]string{
	"xls":  "Excel xls",
	"xlsb": "Excel 2007 xlsb file",
	"xlsx": "Excel xlsx file",
	"ods":  "Openoffice.org ODS file",
	"zip":  "Unknown ZIP file",
	"":     "Unknown file type",
}

// XLS_SIGNATURE is the magic cookie that should appear in the first 8 bytes of an XLS file.
var XLS_SIGNATURE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ZIP_SIGNATURE is the magic cookie of a zip local file header.
var ZIP_SIGNATURE = []byte("PK\x03\x04")

// PEEK_SIZE is the maximum size needed to peek at file signatures.
const PEEK_SIZE = 8

// InspectFormat inspects the content at the supplied path or the bytes content provided
// and returns the file's type as a string, or empty string if it cannot be determined.
//
// The return value can always be looked up in FileFormatDescriptions
// to return a human-readable description of the format found.
func InspectFormat(path string, content []byte) (string, error) {
	peek, err := peekSignature(path, content, PEEK_SIZE)
	if err != nil {
		return "", err
	}
	if len(peek) < PEEK_SIZE {
		return "", nil
	}
	if format := signatureFormat(peek); format != "zip" {
		return format, nil
	}

	zr, closer, err := openZip(path, content)
	if err != nil {
		return "", err
	}
	if closer != nil {
		defer closer.Close()
	}

	names := componentNames(zr)
	if _, ok := names[partWorkbook]; ok {
		return "xlsx", nil
	}
	if _, ok := names["xl/workbook.bin"]; ok {
		return "xlsb", nil
	}
	if _, ok := names["content.xml"]; ok {
		return "ods", nil
	}
	return "zip", nil
}

// signatureFormat classifies the leading bytes of a file as "xls", "zip" or
// unknown.
func signatureFormat(peek []byte) string {
	switch {
	case bytes.HasPrefix(peek, XLS_SIGNATURE):
		return "xls"
	case bytes.HasPrefix(peek, ZIP_SIGNATURE):
		return "zip"
	}
	return ""
}

// Package is an opened xlsx container. Part names are looked up through
// ComponentNames, so producers that store "XL/Workbook.xml" or use
// backslashes are handled the same way as conforming ones.
type Package struct {
	// ComponentNames maps a lower-cased, forward-slash part name to the
	// name actually stored in the archive.
	ComponentNames map[string]string

	// partNames holds the stored names in archive order.
	partNames []string

	files  map[string]*zip.File
	closer io.Closer
	log    logrus.FieldLogger
}

// openPackage validates the signature, opens the archive and checks that the
// workbook part is present.
func openPackage(path string, content []byte, log logrus.FieldLogger) (*Package, error) {
	peek, err := peekSignature(path, content, PEEK_SIZE)
	if err != nil {
		return nil, err
	}
	switch format := signatureFormat(peek); format {
	case "zip":
	case "xls":
		return nil, NewFormatError("%s: is an %s file, not xlsx", displayName(path), FileFormatDescriptions[format])
	default:
		return nil, NewFormatError("%s: not a zip package (signature %q)", displayName(path), peek)
	}

	zr, closer, err := openZip(path, content)
	if err != nil {
		return nil, NewFormatError("%s: %v", displayName(path), err)
	}

	pkg := &Package{
		ComponentNames: componentNames(zr),
		files:          make(map[string]*zip.File, len(zr.File)),
		closer:         closer,
		log:            log,
	}
	for _, f := range zr.File {
		pkg.files[f.Name] = f
		pkg.partNames = append(pkg.partNames, f.Name)
	}

	if !pkg.Has(partWorkbook) {
		pkg.Close()
		return nil, NewFormatError("%s: missing %s part", displayName(path), partWorkbook)
	}
	return pkg, nil
}

// Has reports whether the package contains the part, compared case-insensitively.
func (p *Package) Has(name string) bool {
	_, ok := p.ComponentNames[normalizePartName(name)]
	return ok
}

// Open returns a reader over the named part. The caller must close it.
func (p *Package) Open(name string) (io.ReadCloser, error) {
	stored, ok := p.ComponentNames[normalizePartName(name)]
	if !ok {
		return nil, NewLookupError("no part named %s", name)
	}
	f := p.files[stored]
	p.log.WithFields(logrus.Fields{
		"part": stored,
		"size": humanize.Bytes(f.UncompressedSize64),
	}).Debug("opening part")

	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening part %s", stored)
	}
	return rc, nil
}

// Close releases the underlying archive. Packages built from in-memory
// content hold nothing and Close is a no-op for them.
func (p *Package) Close() error {
	if p.closer == nil {
		return nil
	}
	err := p.closer.Close()
	p.closer = nil
	return err
}

// componentNames maps the expected name in lowercase to the actual filename
// in the zip container. Some third party files use backslashes and odd casing.
func componentNames(zr *zip.Reader) map[string]string {
	names := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		names[normalizePartName(f.Name)] = f.Name
	}
	return names
}

func normalizePartName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
}

func peekSignature(path string, content []byte, size int) ([]byte, error) {
	if content != nil {
		if len(content) < size {
			return content, nil
		}
		return content[:size], nil
	}

	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(expandedPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	peek := make([]byte, size)
	n, err := io.ReadFull(f, peek)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, errors.Wrapf(err, "reading signature of %s", path)
	}
	return peek[:n], nil
}

func openZip(path string, content []byte) (*zip.Reader, io.Closer, error) {
	if content != nil {
		zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
		if err != nil {
			return nil, nil, errors.Wrap(err, "reading zip content")
		}
		return zr, nil, nil
	}

	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := zip.OpenReader(expandedPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening zip %s", path)
	}
	return &r.Reader, r, nil
}

func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(path, "~", homeDir, 1), nil
}

func displayName(path string) string {
	if path == "" {
		return "<content>"
	}
	return path
}
