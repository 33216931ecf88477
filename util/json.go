// This file is Free Software under the MIT License
// without warranty, see README.md and LICENSES/MIT.txt for details.
//
// SPDX-License-Identifier: MIT
//
// SPDX-FileCopyrightText: 2021 German Federal Office for Information Security (BSI) <https://www.bsi.bund.de>
// Software-Engineering: 2021 Intevation GmbH <https://intevation.de>

package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
)

// ReMarshalJSON transforms data from src to dst via JSON marshalling.
func ReMarshalJSON(dst, src interface{}) error {
	intermediate, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(intermediate, dst)
}

// compiledEval is a cached, parsed JSONPath expression.
type compiledEval struct {
	eval gval.Evaluable
}

// Eval runs the compiled expression against doc.
func (c *compiledEval) Eval(ctx context.Context, doc interface{}) (interface{}, error) {
	return c.eval(ctx, doc)
}

// EvalInt runs the compiled expression against doc and coerces the
// result to an int.
func (c *compiledEval) EvalInt(ctx context.Context, doc interface{}) (int, error) {
	x, err := c.Eval(ctx, doc)
	if err != nil {
		return 0, err
	}
	switch v := x.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("not an int: %T", x)
	}
}

// PathEval is a helper to evaluate JSON paths on documents. Compiled
// expressions are cached by their source text.
type PathEval struct {
	builder gval.Language
	exprs   map[string]*compiledEval
}

// NewPathEval creates a new PathEval.
func NewPathEval() *PathEval {
	return &PathEval{
		builder: gval.Full(jsonpath.Language()),
		exprs:   map[string]*compiledEval{},
	}
}

// Compile parses expr, caching the result so repeated calls with the
// same expression reuse the same compiled evaluator.
func (pe *PathEval) Compile(expr string) (*compiledEval, error) {
	if c, ok := pe.exprs[expr]; ok {
		return c, nil
	}
	eval, err := pe.builder.NewEvaluable(expr)
	if err != nil {
		return nil, err
	}
	c := &compiledEval{eval: eval}
	pe.exprs[expr] = c
	return c, nil
}

// Eval evalutes expression expr on document doc.
// Returns the result of the expression.
func (pe *PathEval) Eval(expr string, doc interface{}) (interface{}, error) {
	if doc == nil {
		return nil, errors.New("no document to extract data from")
	}
	c, err := pe.Compile(expr)
	if err != nil {
		return nil, err
	}
	return c.Eval(context.Background(), doc)
}

// Extract evaluates expr on doc and passes the result to matcher. If
// the evaluation fails and required is false, the failure is swallowed
// rather than propagated.
func (pe *PathEval) Extract(
	expr string,
	matcher func(interface{}) error,
	required bool,
	doc interface{},
) error {
	x, err := pe.Eval(expr, doc)
	if err != nil {
		if !required {
			return nil
		}
		return err
	}
	return matcher(x)
}

// Strings evaluates each of exprs on doc as a string field, collecting
// the non-empty results in order.
func (pe *PathEval) Strings(exprs []string, required bool, doc interface{}) ([]string, error) {
	var out []string
	for _, expr := range exprs {
		var s string
		if err := pe.Extract(expr, StringMatcher(&s), required, doc); err != nil {
			return nil, err
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// PathEvalMatcher is a pair of an expression and an action
// when doing extractions via PathEval.Match.
type PathEvalMatcher struct {
	// Expr is the expression to evaluate
	Expr string
	// Action is executed with the result of the match.
	Action func(interface{}) error
}

// Match matches a list of PathEvalMatcher pairs against a document.
func (pe *PathEval) Match(matcher []PathEvalMatcher, doc interface{}) error {
	for _, m := range matcher {
		x, err := pe.Eval(m.Expr, doc)
		if err != nil {
			return err
		}
		if err := m.Action(x); err != nil {
			return err
		}
	}
	return nil
}

// ReMarshalMatcher is an action to re-marshal the result to another type.
func ReMarshalMatcher(dst interface{}) func(interface{}) error {
	return func(src interface{}) error {
		return ReMarshalJSON(dst, src)
	}
}

// BoolMatcher stores the matched result in a bool.
func BoolMatcher(dst *bool) func(interface{}) error {
	return func(x interface{}) error {
		b, ok := x.(bool)
		if !ok {
			return errors.New("not a bool")
		}
		*dst = b
		return nil
	}
}

// StringMatcher stores the matched result in a string.
func StringMatcher(dst *string) func(interface{}) error {
	return func(x interface{}) error {
		s, ok := x.(string)
		if !ok {
			return errors.New("not a string")
		}
		*dst = s
		return nil
	}
}

// StringTreeMatcher stores the de-duplicated, sorted strings of a
// []any leaf list in dst. It rejects anything that isn't such a list.
func StringTreeMatcher(dst *[]string) func(interface{}) error {
	return func(x interface{}) error {
		arr, ok := x.([]interface{})
		if !ok {
			return errors.New("not a list")
		}
		set := make(map[string]struct{}, len(arr))
		for _, v := range arr {
			s, ok := v.(string)
			if !ok {
				return errors.New("not a string")
			}
			set[s] = struct{}{}
		}
		result := make([]string, 0, len(set))
		for s := range set {
			result = append(result, s)
		}
		sort.Strings(result)
		*dst = result
		return nil
	}
}

// TimeMatcher stores a time with a given format.
func TimeMatcher(dst *time.Time, format string) func(interface{}) error {
	return func(x interface{}) error {
		s, ok := x.(string)
		if !ok {
			return errors.New("not a string")
		}
		t, err := time.Parse(format, s)
		if err != nil {
			return err
		}
		*dst = t
		return nil
	}
}

// AsStrings converts a []any, as produced by a JSONPath evaluation,
// into a []string. It reports false if any element is not a string.
func AsStrings(x interface{}) ([]string, bool) {
	arr, ok := x.([]interface{})
	if !ok {
		return nil, false
	}
	strs := make([]string, len(arr))
	for i, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		strs[i] = s
	}
	return strs, true
}
