// Package document turns fetched bytes into normalised document text.
package document

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ppiankov/ssuula/internal/model"
)

// maxDecompressed bounds the size of an xz-compressed document once expanded
var maxDecompressed int64 = 256 << 20

var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// LineEnding names the line terminator style found in a document
type LineEnding string

const (
	LineEndingLF    LineEnding = "lf"
	LineEndingCRLF  LineEnding = "crlf"
	LineEndingCR    LineEnding = "cr"
	LineEndingMixed LineEnding = "mixed"
	LineEndingNone  LineEnding = "none"
)

// Raw is a decoded source document
type Raw struct {
	Text        string // UTF-8 text with "\n" line endings and no BOM
	Bytes       int    // Size of the fetched bytes
	Digest      string // BLAKE3 of the fetched bytes
	LineEnding  LineEnding
	BOM         bool
	Compressed  bool
	HTML        bool
	ContentType string
}

// Decode decompresses, decodes and normalises a fetched document
func Decode(data []byte, contentType string) (*Raw, error) {
	sum := blake3.Sum256(data)
	raw := &Raw{
		Bytes:       len(data),
		Digest:      hex.EncodeToString(sum[:]),
		ContentType: contentType,
	}

	if bytes.HasPrefix(data, xzMagic) {
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xz stream: %w", err)
		}
		expanded, err := io.ReadAll(io.LimitReader(r, maxDecompressed+1))
		if err != nil {
			return nil, fmt.Errorf("decompress xz: %w", err)
		}
		if int64(len(expanded)) > maxDecompressed {
			return nil, fmt.Errorf("decompressed document exceeds %d bytes", maxDecompressed)
		}
		data = expanded
		raw.Compressed = true
	}

	if hasBOM(data) {
		raw.BOM = true
		decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return nil, fmt.Errorf("decode text: %w", err)
		}
		data = decoded
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	text = strings.TrimPrefix(text, "\ufeff")

	if isHTML(contentType, text) {
		extracted, err := extractText(text)
		if err != nil {
			return nil, err
		}
		text = extracted
		raw.HTML = true
	}

	raw.LineEnding = detectLineEnding(text)
	raw.Text = normalizeLineEndings(text)
	return raw, nil
}

// Empty reports a document with no visible content
func (r *Raw) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Meta summarises the document for load reports
func (r *Raw) Meta() model.DocumentMeta {
	return model.DocumentMeta{
		Bytes:      r.Bytes,
		Digest:     r.Digest,
		LineEnding: string(r.LineEnding),
		BOM:        r.BOM,
		Compressed: r.Compressed,
		HTML:       r.HTML,
	}
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

func isHTML(contentType, text string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(text))
	if len(head) > 64 {
		head = head[:64]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func detectLineEnding(text string) LineEnding {
	crlf := strings.Count(text, "\r\n")
	cr := strings.Count(text, "\r") - crlf
	lf := strings.Count(text, "\n") - crlf

	styles := 0
	for _, n := range []int{crlf, cr, lf} {
		if n > 0 {
			styles++
		}
	}
	switch {
	case styles == 0:
		return LineEndingNone
	case styles > 1:
		return LineEndingMixed
	case crlf > 0:
		return LineEndingCRLF
	case cr > 0:
		return LineEndingCR
	default:
		return LineEndingLF
	}
}

func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
