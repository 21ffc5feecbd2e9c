// Package selector compiles CEL predicates used to pick catalog entries.
package selector

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"
)

// Selector is a compiled CEL predicate. The expression sees each candidate
// entry as the variable "_" and must produce a bool, e.g.
// `_.tags.exists(t, t == "dessert")` or `has(_.official_url)`.
type Selector struct {
	program cel.Program
}

// New compiles expr into a Selector. Compilation happens once; Match runs
// the compiled program per entry.
func New(expr string) (*Selector, error) {
	env, err := cel.NewEnv(
		cel.Variable("_", cel.DynType),
		// Extension libraries give predicates richer string/list/math helpers
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	return &Selector{program: program}, nil
}

// Match evaluates the predicate against entry. A non-bool result is an
// error so callers can tell a selection mistake from a plain false.
func (s *Selector) Match(entry any) (bool, error) {
	result, _, err := s.program.Eval(map[string]interface{}{
		"_": entry,
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}

	b, ok := result.(types.Bool)
	if !ok {
		return false, fmt.Errorf("predicate returned %s, want bool", result.Type().TypeName())
	}
	return bool(b), nil
}
