package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported reports whether path has an extension ReadFile understands natively.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown", ".pdf":
		return true
	default:
		return false
	}
}

// ReadFile returns the raw text of a document on disk.
func ReadFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ReadPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return ReadBytes(path, data)
}

// ReadBytes returns the raw text of a document whose format is given by the
// extension of name. Markdown is flattened to plain text, PDF pages are
// extracted, and anything else is decoded as text.
func ReadBytes(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", fmt.Errorf("open pdf: %w", err)
		}
		return pdfText(reader)
	case ".md", ".markdown":
		src, err := DecodeText(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", name, err)
		}
		return FlattenMarkdown([]byte(src)), nil
	default:
		src, err := DecodeText(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", name, err)
		}
		return src, nil
	}
}

// DecodeText reads r as UTF-8, honoring a UTF-8 or UTF-16 byte order mark.
// Undecodable bytes become U+FFFD.
func DecodeText(r io.Reader) (string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// FlattenMarkdown renders markdown source as plain text, one blank line between blocks.
func FlattenMarkdown(src []byte) string {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch n.(type) {
			case *ast.Paragraph, *ast.Heading, *ast.TextBlock, *ast.CodeBlock, *ast.FencedCodeBlock, *ast.ThematicBreak:
				buf.WriteString("\n\n")
			}
			if strings.Contains(n.Kind().String(), "TableRow") || strings.Contains(n.Kind().String(), "TableHeader") {
				buf.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
			return ast.WalkSkipChildren, nil
		default:
			if strings.Contains(n.Kind().String(), "TableCell") && n.PreviousSibling() != nil {
				buf.WriteString(" ")
			}
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}

// ReadPDF extracts the plain text of every page of the file at path.
func ReadPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	return pdfText(reader)
}

// pdfText joins the text of all pages. Pages that fail to decode are skipped.
func pdfText(reader *pdf.Reader) (string, error) {
	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		content = strings.ToValidUTF8(strings.ReplaceAll(content, "\x00", " "), "\uFFFD")
		if strings.TrimSpace(content) != "" {
			pages = append(pages, content)
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no text extracted from PDF")
	}
	return strings.Join(pages, "\n\n"), nil
}
