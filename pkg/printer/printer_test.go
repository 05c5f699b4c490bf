package printer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func lines(doc *Document) []string {
	// drop the ESC @ prefix
	body := bytes.TrimPrefix(doc.Bytes(), []byte{ESC, '@'})
	return strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
}

func TestDocument_KeyValueFillsWidth(t *testing.T) {
	doc := NewDocument(20)
	doc.KeyValue("Total:", "₹350.00")

	got := lines(doc)[0]
	if n := runeLen(got); n != 20 {
		t.Errorf("expected 20 runes, got %d in %q", n, got)
	}
	if !strings.HasSuffix(got, "₹350.00") {
		t.Errorf("expected value flush right, got %q", got)
	}
}

func TestDocument_ItemLineWrapsLongNames(t *testing.T) {
	doc := NewDocument(24)
	doc.ItemLine(2, "Asian Paints Apex Ultima Weatherproof", "4800.00")

	got := lines(doc)
	if len(got) < 2 {
		t.Fatalf("expected name to wrap, got %q", got)
	}
	if !strings.HasPrefix(got[0], "2x Asian") || !strings.HasSuffix(got[0], "4800.00") {
		t.Errorf("unexpected first line %q", got[0])
	}
	for _, l := range got {
		if runeLen(l) > 24 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if !strings.HasPrefix(got[1], "   ") {
		t.Errorf("expected continuation indented under the name, got %q", got[1])
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  []string
	}{
		{"short", 10, []string{"short"}},
		{"two words here", 9, []string{"two words", "here"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"", 5, []string{""}},
	}
	for _, tt := range tests {
		got := wrap(tt.in, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrap(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"none", Config{Type: TypeNone}, false},
		{"empty", Config{}, false},
		{"usb", Config{Type: TypeUSB, USBPath: "/dev/usb/lp0"}, false},
		{"usb without path", Config{Type: TypeUSB}, true},
		{"network without address", Config{Type: TypeNetwork}, true},
		{"unknown", Config{Type: "bluetooth"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			}
		})
	}
}

func TestCapture(t *testing.T) {
	c := &Capture{}
	job := []byte("hello")
	if err := c.Print(job); err != nil {
		t.Fatal(err)
	}
	job[0] = 'j'
	if string(c.Jobs()[0]) != "hello" {
		t.Error("expected capture to copy the job")
	}

	c.Err = errors.New("paper out")
	if err := c.Print(job); err == nil || c.IsConnected() {
		t.Error("expected failing capture")
	}
}
