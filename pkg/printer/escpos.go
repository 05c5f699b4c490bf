package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS command bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Align is a text alignment mode
type Align byte

const (
	AlignLeft   Align = 0
	AlignCenter Align = 1
	AlignRight  Align = 2
)

// FontSize is a GS ! character size
type FontSize byte

const (
	FontNormal FontSize = 0x00
	FontDouble FontSize = 0x11 // double width and height
	FontWide   FontSize = 0x10
	FontTall   FontSize = 0x01
)

// Document builds an ESC/POS byte stream for a thermal printer. Widths are
// counted in runes so names with non-ASCII characters line up.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument creates a document for paper of charWidth columns: 32 for 58mm
// rolls, 48 for 80mm.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = 32
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

// Width returns the column count.
func (d *Document) Width() int {
	return d.width
}

// Init writes ESC @.
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

func (d *Document) SetAlign(align Align) *Document {
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

func (d *Document) SetFontSize(size FontSize) *Document {
	d.buf.Write([]byte{GS, '!', byte(size)})
	return d
}

// Text writes s, wrapping at the paper width.
func (d *Document) Text(s string) *Document {
	for _, l := range wrap(s, d.width) {
		d.buf.WriteString(l)
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator fills one line with char.
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints key on the left and value flush right.
func (d *Document) KeyValue(key, value string) *Document {
	d.row(key, value)
	return d
}

// ItemLine prints "2x Cement     700.00". A name too long for the line
// continues on the lines below, indented under the name.
func (d *Document) ItemLine(qty int, name, total string) *Document {
	prefix := fmt.Sprintf("%dx ", qty)
	room := d.width - runeLen(prefix) - runeLen(total) - 1
	if room < 1 {
		room = 1
	}

	parts := wrap(name, room)
	d.row(prefix+parts[0], total)
	indent := strings.Repeat(" ", runeLen(prefix))
	for _, rest := range parts[1:] {
		d.buf.WriteString(indent + rest)
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Reset clears the buffer and reinitializes the printer.
func (d *Document) Reset() *Document {
	d.buf.Reset()
	d.Init()
	return d
}

func (d *Document) row(left, right string) {
	spaces := d.width - runeLen(left) - runeLen(right)
	if spaces < 1 {
		spaces = 1
	}
	d.buf.WriteString(left)
	d.buf.WriteString(strings.Repeat(" ", spaces))
	d.buf.WriteString(right)
	d.buf.WriteByte(LF)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// wrap splits s into lines of at most width runes, breaking on spaces where
// it can. It always returns at least one line.
func wrap(s string, width int) []string {
	if width < 1 || runeLen(s) <= width {
		return []string{s}
	}

	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(cur) == 0:
			cur = w
		case len(cur)+1+len(w) <= width:
			cur = append(append(cur, ' '), w...)
		default:
			lines = append(lines, string(cur))
			cur = w
		}
	}
	if len(cur) > 0 || len(lines) == 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
