package typescript

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// docs returns the JSDoc text attached to a declaration, or "". The doc
// comment is the immediately preceding comment sibling starting with
// "/**"; for declarations wrapped in an export statement the comment
// precedes the export statement itself.
func (ex *extractor) docs(node *sitter.Node) string {
	if c := precedingComment(node); c != nil {
		return cleanJSDoc(c.Content(ex.src))
	}
	if p := node.Parent(); p != nil && p.Type() == "export_statement" {
		if c := precedingComment(p); c != nil {
			return cleanJSDoc(c.Content(ex.src))
		}
	}
	return ""
}

func precedingComment(node *sitter.Node) *sitter.Node {
	prev := node.PrevNamedSibling()
	if prev != nil && prev.Type() == "comment" {
		return prev
	}
	return nil
}

// cleanJSDoc strips the comment markers and per-line asterisks from a
// JSDoc block. Non-JSDoc comments return "".
func cleanJSDoc(text string) string {
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
