package sqlgen

import (
	"strings"

	"github.com/roach88/relq/internal/header"
)

// Quote backquotes an identifier for the target engine.
func Quote(name string) string {
	return "`" + name + "`"
}

func quotedList(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = Quote(n)
	}
	return strings.Join(parts, ", ")
}

// SelectList renders the header as a select list. Resolved attributes
// emit their quoted column name; pending renames emit `old` AS `new`;
// pending computes emit the expression verbatim followed by AS `new`.
func SelectList(h header.Header) string {
	parts := make([]string, len(h))
	for i, a := range h {
		switch {
		case a.Alias == "":
			parts[i] = Quote(a.Name)
		case a.Computed:
			parts[i] = a.Name + " AS " + Quote(a.Alias)
		default:
			parts[i] = Quote(a.Name) + " AS " + Quote(a.Alias)
		}
	}
	return strings.Join(parts, ", ")
}
