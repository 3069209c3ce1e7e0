package export

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText removes the emphasis markers models like to put into answers
// (**bold**, _italic_) and keeps every other character as written, so a
// leading "> 50%", "# of", "2019." or an <https://...> link survives.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "*_") {
		return s
	}
	src := []byte(s)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	drop := make([]bool, len(src))
	dropped := false
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		em, ok := n.(*ast.Emphasis)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		start, stop, ok := childrenSpan(em)
		if !ok || !isDelimiterRun(src, start-em.Level, start) || !isDelimiterRun(src, stop, stop+em.Level) {
			return ast.WalkContinue, nil
		}
		for i := start - em.Level; i < start; i++ {
			drop[i] = true
		}
		for i := stop; i < stop+em.Level; i++ {
			drop[i] = true
		}
		dropped = true
		return ast.WalkContinue, nil
	})
	if !dropped {
		return s
	}

	var b strings.Builder
	b.Grow(len(src))
	for i, c := range src {
		if !drop[i] {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// inlineSpan returns the source range an inline node covers, delimiters
// included for emphasis. Only text and emphasis nodes are resolved.
func inlineSpan(n ast.Node) (start, stop int, ok bool) {
	switch n := n.(type) {
	case *ast.Text:
		return n.Segment.Start, n.Segment.Stop, true
	case *ast.Emphasis:
		start, stop, ok := childrenSpan(n)
		return start - n.Level, stop + n.Level, ok
	}
	return 0, 0, false
}

func childrenSpan(n ast.Node) (start, stop int, ok bool) {
	first, last := n.FirstChild(), n.LastChild()
	if first == nil {
		return 0, 0, false
	}
	start, _, ok = inlineSpan(first)
	if !ok {
		return 0, 0, false
	}
	_, stop, ok = inlineSpan(last)
	return start, stop, ok
}

// isDelimiterRun reports whether src[from:to] is a run of one emphasis
// character.
func isDelimiterRun(src []byte, from, to int) bool {
	if from < 0 || to > len(src) || from >= to {
		return false
	}
	c := src[from]
	if c != '*' && c != '_' {
		return false
	}
	for i := from + 1; i < to; i++ {
		if src[i] != c {
			return false
		}
	}
	return true
}
