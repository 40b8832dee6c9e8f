// Package brief loads hiring briefs from disk so a first chat turn can be
// sent from a file instead of typed text.
package brief

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxBytes bounds the text taken from a brief.
const MaxBytes = 32 * 1024

// ErrUnsupported is returned for file types Load cannot read.
var ErrUnsupported = errors.New("unsupported brief format")

// ErrEmpty is returned when a brief yields no text.
var ErrEmpty = errors.New("brief contains no text")

// Load reads the brief at path and returns its text. Plain text and markdown
// are read as-is, PDFs by text layer and HTML by visible text.
func Load(path string) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown", "":
		var b []byte
		b, err = os.ReadFile(path)
		text = string(b)
	case ".pdf":
		text, err = loadPDF(path)
	case ".html", ".htm":
		var f *os.File
		f, err = os.Open(path)
		if err == nil {
			text, err = HTMLText(f)
			f.Close()
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	if err != nil {
		return "", fmt.Errorf("reading brief %s: %w", path, err)
	}

	text = Normalize(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func loadPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(plain, MaxBytes*4)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HTMLText returns the visible text of an HTML document. Script, style and
// other non-content elements are skipped; block elements start a new line.
func HTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	walk(doc, &sb)
	return sb.String(), nil
}

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Template: true,
	atom.Svg:      true,
}

var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.Tr: true, atom.Section: true, atom.Article: true,
}

func walk(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && skipped[n.DataAtom] {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, sb)
	}
	if n.Type == html.ElementNode && block[n.DataAtom] {
		sb.WriteByte('\n')
	}
}

var (
	spaces    = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses whitespace runs, trims each line and truncates to MaxBytes.
func Normalize(s string) string {
	s = spaces.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	s = strings.TrimSpace(s)
	if len(s) > MaxBytes {
		s = strings.ToValidUTF8(s[:MaxBytes], "")
	}
	return s
}
