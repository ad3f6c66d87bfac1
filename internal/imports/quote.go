// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imports

import "strings"

// quoteState tracks whether a line scan is inside a triple-quoted string, so
// that import-looking text in docstrings is left alone. Single-quoted
// strings are not tracked.
type quoteState struct {
	delim string
}

func (q *quoteState) open() bool { return q.delim != "" }

// scan advances the state over one line.
func (q *quoteState) scan(line string) {
	for len(line) > 0 {
		if q.delim != "" {
			i := strings.Index(line, q.delim)
			if i < 0 {
				return
			}
			line = line[i+3:]
			q.delim = ""
			continue
		}

		next, delim := -1, ""
		for _, d := range []string{`"""`, `'''`} {
			if i := strings.Index(line, d); i >= 0 && (next < 0 || i < next) {
				next, delim = i, d
			}
		}
		if c := strings.IndexByte(line, '#'); c >= 0 && (next < 0 || c < next) {
			return
		}
		if next < 0 {
			return
		}
		q.delim = delim
		line = line[next+3:]
	}
}
