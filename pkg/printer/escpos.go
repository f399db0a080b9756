package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS control bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Character size
const (
	FontNormal = 0x00
	FontDouble = 0x11
	FontWide   = 0x10
	FontTall   = 0x01
)

// Paper widths in characters at the default font.
const (
	Width58mm = 32
	Width80mm = 48
)

// Most thermal printers run code page 437; anything outside ASCII is
// transliterated or replaced so the print head never receives raw UTF-8.
var transliterations = map[rune]string{
	'₹': "Rs.",
	'–': "-",
	'—': "-",
	'’': "'",
	'‘': "'",
	'“': "\"",
	'”': "\"",
	'×': "x",
}

// Document builds an ESC/POS byte stream for a thermal receipt.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument creates a document for the given paper width in characters.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = Width80mm
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

// Width is the number of characters per line.
func (d *Document) Width() int {
	return d.width
}

// Init sends ESC @ to reset the printer.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes one line, wrapping at the paper width.
func (d *Document) Text(s string) *Document {
	for _, line := range Wrap(Sanitize(s), d.width) {
		d.buf.WriteString(line)
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width rule.
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints key on the left and value flush right.
func (d *Document) KeyValue(key, value string) *Document {
	d.buf.WriteString(Justify(Sanitize(key), Sanitize(value), d.width))
	d.buf.WriteByte(LF)
	return d
}

// Columns prints one table row. widths must sum to at most the paper width;
// the first column is left-aligned and the rest are right-aligned.
func (d *Document) Columns(widths []int, cells ...string) *Document {
	var sb strings.Builder
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = Sanitize(cells[i])
		}
		cell = truncate(cell, w)
		pad := strings.Repeat(" ", w-len(cell))
		if i == 0 {
			sb.WriteString(cell + pad)
		} else {
			sb.WriteString(pad + cell)
		}
	}
	d.buf.WriteString(sb.String())
	d.buf.WriteByte(LF)
	return d
}

// ItemLine prints "qty x name" with the line total flush right.
func (d *Document) ItemLine(qty int, name, total string) *Document {
	return d.KeyValue(fmt.Sprintf("%dx %s", qty, name), total)
}

func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Sanitize reduces s to printable ASCII.
func Sanitize(s string) string {
	if isPlainASCII(s) {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\t':
			sb.WriteByte(' ')
		case r >= 0x20 && r < 0x7F:
			sb.WriteRune(r)
		default:
			if t, ok := transliterations[r]; ok {
				sb.WriteString(t)
			} else if r >= 0x80 {
				sb.WriteByte('?')
			}
		}
	}
	return sb.String()
}

// Justify places left and right on one line of the given width. When they do
// not fit, left is truncated so the value stays readable.
func Justify(left, right string, width int) string {
	space := width - len(left) - len(right)
	if space < 1 {
		left = truncate(left, width-len(right)-1)
		space = width - len(left) - len(right)
		if space < 1 {
			space = 1
		}
	}
	return left + strings.Repeat(" ", space) + right
}

// Wrap splits s on word boundaries into lines no longer than width.
func Wrap(s string, width int) []string {
	if width <= 0 || len(s) <= width {
		return []string{s}
	}

	var lines []string
	var line string
	for _, word := range strings.Fields(s) {
		for len(word) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	if n <= 2 {
		return s[:n]
	}
	return s[:n-2] + ".."
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf || c < 0x20 || c == 0x7F {
			return false
		}
	}
	return true
}
