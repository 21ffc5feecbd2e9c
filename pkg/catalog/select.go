package catalog

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/winnow/internal/selector"
)

// Select filters entries through a CEL predicate, compiled once per call.
// An empty expression selects everything. Entries whose evaluation fails
// or yields a non-bool are excluded; the skipped count lets callers log a
// single warning instead of failing the run.
func Select(entries []any, expr string) ([]any, int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return entries, 0, nil
	}

	sel, err := selector.New(expr)
	if err != nil {
		return nil, 0, fmt.Errorf("select expression: %w", err)
	}

	selected := make([]any, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		match, err := sel.Match(entry)
		if err != nil {
			skipped++
			continue
		}
		if match {
			selected = append(selected, entry)
		}
	}
	return selected, skipped, nil
}
