// Package markdown reads structure out of a prompt written in markdown.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock represents a fenced code block in a prompt.
type CodeBlock struct {
	// Hint is the paragraph immediately preceding the block, if any.
	Hint string
	Lang string
	// Content is the raw text inside the fences.
	Content string
}

// ExtractCodeBlocks finds every fenced code block.
func ExtractCodeBlocks(source []byte) ([]CodeBlock, error) {
	var blocks []CodeBlock
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var block CodeBlock
		if fenced.Info != nil {
			block.Lang = string(fenced.Language(source))
		}
		var content bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		block.Content = content.String()

		if prev := fenced.PreviousSibling(); prev != nil {
			if p, ok := prev.(*ast.Paragraph); ok {
				block.Hint = strings.TrimSpace(string(plainText(p, source)))
			}
		}

		blocks = append(blocks, block)
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}
	return blocks, nil
}

// plainText concatenates the text segments under n.
func plainText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.CodeSpan:
			for s := t.FirstChild(); s != nil; s = s.NextSibling() {
				if txt, ok := s.(*ast.Text); ok {
					buf.Write(txt.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.Bytes()
}

// Summary returns a one-line preview of a prompt: the text of its first
// heading or paragraph, whitespace collapsed, cut to width runes. Prompts
// that start with a code block fall back to the first non-blank line.
func Summary(prompt string, width int) string {
	source := []byte(prompt)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var line string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.Kind() {
		case ast.KindHeading, ast.KindParagraph:
			line = string(plainText(n, source))
		}
		if strings.TrimSpace(line) != "" {
			break
		}
	}
	if strings.TrimSpace(line) == "" {
		for _, l := range strings.Split(prompt, "\n") {
			if strings.TrimSpace(l) != "" {
				line = l
				break
			}
		}
	}
	return truncate(strings.Join(strings.Fields(line), " "), width)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
