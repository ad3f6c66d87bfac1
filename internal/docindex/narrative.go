// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docindex

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/literate/internal/notebook"
	"github.com/pdiddy/literate/pkg/types"
)

// directiveRe matches the head of a MyST directive documenting a Python
// object, e.g. "{autofunction} f" or "{py:class} pkg.mod.C".
var directiveRe = regexp.MustCompile(`^\s*\{(?:py:|auto)?(?:module|function|data|exception|class|decorator|method|attribute)\}\s+([^\s(` + "`" + `]+)`)

// FromNarrative collects the symbols that markdown cells of nb already
// document with explicit directives, either as fenced blocks or as
// single-line code spans. Unqualified names are qualified against module.
// Cells tagged remove-cell are not rendered and are ignored.
func FromNarrative(nb *types.Notebook, module string) Index {
	md := goldmark.New()
	var names []string
	for _, c := range nb.Cells {
		if c.Type != types.CellMarkdown || notebook.HasTag(c, types.TagNameRemoveCell) {
			continue
		}
		src := []byte(c.Source)
		root := md.Parser().Parse(text.NewReader(src))
		_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
			if !entering {
				return gmast.WalkContinue, nil
			}
			switch node := n.(type) {
			case *gmast.FencedCodeBlock:
				if node.Info != nil {
					if name := directiveName(string(node.Info.Segment.Value(src))); name != "" {
						names = append(names, qualify(name, module))
					}
				}
				return gmast.WalkSkipChildren, nil
			case *gmast.CodeSpan:
				if name := directiveName(codeSpanText(node, src)); name != "" {
					names = append(names, qualify(name, module))
				}
				return gmast.WalkSkipChildren, nil
			}
			return gmast.WalkContinue, nil
		})
	}
	return New(names...)
}

func directiveName(s string) string {
	m := directiveRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

func codeSpanText(n *gmast.CodeSpan, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gmast.Text); ok {
			b.Write(t.Segment.Value(src))
		}
	}
	return b.String()
}

// qualify prefixes name with module unless it already starts with the
// module's top-level package.
func qualify(name, module string) string {
	pkg, _, _ := strings.Cut(module, ".")
	if name == pkg || strings.HasPrefix(name, pkg+".") {
		return name
	}
	return module + "." + name
}
