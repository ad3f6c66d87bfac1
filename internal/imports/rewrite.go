// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imports

import (
	"regexp"
	"strings"

	"github.com/pdiddy/literate/pkg/types"
)

var (
	fromRe   = regexp.MustCompile(`^(\s*)from\s+([.\w]+)\s+import(?:\s|\()`)
	importRe = regexp.MustCompile(`^(\s*)import\s+(.+)$`)
	aliasRe  = regexp.MustCompile(`^([A-Za-z_][\w.]*)(?:\s+as\s+([A-Za-z_]\w*))?$`)
)

// Rewriter rewrites import statements in exported cell sources.
type Rewriter struct {
	table Table
}

// NewRewriter returns a Rewriter resolving names against table.
func NewRewriter(table Table) *Rewriter {
	return &Rewriter{table: table}
}

// Table returns the lookup table the rewriter resolves against.
func (r *Rewriter) Table() Table { return r.table }

// Rewrite returns source with every import of a module inside the package
// tree expressed relative to module, the dotted name of the module being
// generated. Imports that resolve outside the tree are left verbatim.
// A pre-existing relative import that names no known module is reported as
// an *types.UnresolvableImportError.
func (r *Rewriter) Rewrite(source, module string) (string, error) {
	current := strings.Split(module, ".")
	lines := strings.Split(source, "\n")
	var q quoteState

	for i, line := range lines {
		inString := q.open()
		q.scan(line)
		if inString || strings.Contains(line, ";") || strings.HasSuffix(strings.TrimRight(line, " \t\r"), `\`) {
			continue
		}

		if m := fromRe.FindStringSubmatchIndex(line); m != nil {
			out, ok := r.rewriteFrom(line, m, current)
			if !ok {
				return "", &types.UnresolvableImportError{Module: module, Statement: strings.TrimSpace(line), Line: i + 1}
			}
			lines[i] = out
			continue
		}
		if m := importRe.FindStringSubmatch(line); m != nil {
			lines[i] = r.rewriteImport(line, m[1], m[2], current)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// rewriteFrom handles "from X import ...". m holds submatch indexes for the
// indentation and the module name. It reports false only for a relative
// import that resolves to nothing.
func (r *Rewriter) rewriteFrom(line string, m []int, current []string) (string, bool) {
	target := line[m[4]:m[5]]

	if strings.HasPrefix(target, ".") {
		_, ok := r.table.Lookup(absoluteFromRelative(target, current))
		return line, ok
	}

	if len(current) < 2 {
		return line, true
	}
	q, ok := r.table.Resolve(target)
	if !ok {
		return line, true
	}
	rel := Relative(q, current)
	if rel == q {
		return line, true
	}
	return line[:m[4]] + rel + line[m[5]:], true
}

// rewriteImport handles "import a.b [as c], d". Internal parts become
// "from <parent> import <leaf>" statements, one per line, in order.
func (r *Rewriter) rewriteImport(line, indent, rest string, current []string) string {
	if len(current) < 2 {
		return line
	}

	body, comment := splitComment(rest)
	parts := strings.Split(body, ",")
	stmts := make([]string, 0, len(parts))
	rewrote := false
	for _, p := range parts {
		p = strings.TrimSpace(p)
		am := aliasRe.FindStringSubmatch(p)
		if am == nil {
			return line
		}
		name, alias := am[1], am[2]

		q, ok := r.table.Resolve(name)
		dot := strings.LastIndex(q, ".")
		if !ok || dot < 0 {
			stmts = append(stmts, indent+"import "+p)
			continue
		}
		stmt := indent + "from " + Relative(q[:dot], current) + " import " + q[dot+1:]
		if alias != "" {
			stmt += " as " + alias
		}
		stmts = append(stmts, stmt)
		rewrote = true
	}
	if !rewrote {
		return line
	}
	if comment != "" {
		stmts[len(stmts)-1] += "  " + comment
	}
	return strings.Join(stmts, "\n")
}

// Relative returns the name to use for target when imported from the
// module current (split on dots). Targets outside current's top-level
// package are returned unchanged.
func Relative(target string, current []string) string {
	name := strings.Split(target, ".")
	parent := current[:len(current)-1]
	common := 0
	for common < len(name) && common < len(parent) && name[common] == parent[common] {
		common++
	}
	if common == 0 {
		return target
	}
	return strings.Repeat(".", len(current)-common) + strings.Join(name[common:], ".")
}

// absoluteFromRelative resolves a leading-dot module reference. It returns ""
// when the dots climb above the top-level package.
func absoluteFromRelative(target string, current []string) string {
	rest := strings.TrimLeft(target, ".")
	dots := len(target) - len(rest)
	keep := len(current) - dots
	if keep < 1 {
		return ""
	}
	base := strings.Join(current[:keep], ".")
	if rest == "" {
		return base
	}
	return base + "." + rest
}

func splitComment(s string) (body, comment string) {
	if i := strings.Index(s, "#"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])
	}
	return strings.TrimSpace(s), ""
}
