package source

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/nao1215/htmlgrader/internal/model"
)

// Document is an unparsed HTML document and where it came from.
type Document struct {
	// Kind is file or url.
	Kind model.SourceKind

	// Location is the file path or the requested URL.
	Location string

	// Raw is the document body.
	Raw []byte

	// StatusCode is the HTTP status for URL documents, 0 for files.
	StatusCode int

	// ContentType is the response Content-Type header, "" for files.
	ContentType string

	// Hash is the hex SHA-256 of Raw.
	Hash string
}

// newDocument builds a Document and computes its hash.
func newDocument(kind model.SourceKind, location string, raw []byte) *Document {
	sum := sha256.Sum256(raw)
	return &Document{
		Kind:     kind,
		Location: location,
		Raw:      raw,
		Hash:     hex.EncodeToString(sum[:]),
	}
}

// ReadFile reads a local HTML file. Existence is expected to have been
// checked already with checks.AssertFileExists.
func ReadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from --file
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML file: %w", err)
	}
	return newDocument(model.SourceFile, path, raw), nil
}

// LookupEncoding resolves a WHATWG encoding label such as "shift_jis".
func LookupEncoding(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	return enc, nil
}

// detectReader returns a UTF-8 reader over the raw bytes. Sniffing only
// looks at the first 1024 bytes and then falls back to windows-1252, so
// that fallback loses to the whole document being valid UTF-8.
func (d *Document) detectReader() io.Reader {
	enc, name, certain := charset.DetermineEncoding(d.Raw, d.ContentType)
	if name == "utf-8" || (!certain && name == "windows-1252" && utf8.Valid(d.Raw)) {
		return bytes.NewReader(d.Raw)
	}
	return enc.NewDecoder().Reader(bytes.NewReader(d.Raw))
}

// Parse decodes the document to UTF-8 and builds a goquery document.
// When encodingLabel is empty the encoding is detected from the BOM, the
// Content-Type header and <meta> tags.
func (d *Document) Parse(encodingLabel string) (*goquery.Document, error) {
	var r io.Reader
	if encodingLabel != "" {
		enc, err := LookupEncoding(encodingLabel)
		if err != nil {
			return nil, err
		}
		r = enc.NewDecoder().Reader(bytes.NewReader(d.Raw))
	} else {
		r = d.detectReader()
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
