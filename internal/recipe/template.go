package recipe

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mason-org/mason-go/internal/platform"
)

// maxRenderPasses bounds the fixed-point re-render loop (spec.md §4.4: "a
// proper implementation loops until stable, with a small iteration cap").
const maxRenderPasses = 8

var placeholderPattern = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

// renderEngine evaluates the closed filter set over a recipe's serialized
// JSON text. Each evaluation reads the *current* full JSON document via
// gjson path lookups, because recipes can reference their own
// not-yet-rendered fields (source.id, version, ...).
//
// version is bound once, ahead of rendering, from the package PURL's
// version component (the original binds env.globals["version"] from the
// already-parsed Purl, not from a JSON field — the recipe's "version" is
// never itself a key in the document).
type renderEngine struct {
	tags    platform.Tags
	version string
}

// renderOnce performs a single left-to-right substitution pass over every
// {{ ... }} placeholder found in text, evaluating each against text itself
// as the lookup context. It returns the rewritten text.
func (e *renderEngine) renderOnce(text string) (string, error) {
	var evalErr error
	out := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		if evalErr != nil {
			return match
		}
		expr := placeholderPattern.FindStringSubmatch(match)[1]
		result, null, err := e.eval(expr, text)
		if err != nil {
			evalErr = err
			return match
		}
		if null {
			return nullPlaceholder
		}
		return result
	})
	if evalErr != nil {
		return "", evalErr
	}
	// A take_if_not(...) that evaluated to null must drop its surrounding
	// JSON string quotes so the field becomes a real JSON null, not the
	// literal text "null".
	out = collapseNullFields(out)
	return out, nil
}

// nullPlaceholder is a sentinel inserted in place of a filtered-out value;
// collapseNullFields turns `"...nullPlaceholder..."` into a bare `null`
// when the placeholder is the entirety of the string's content.
const nullPlaceholder = "\x00MASON_NULL\x00"

var nullFieldPattern = regexp.MustCompile(`"` + regexp.QuoteMeta(nullPlaceholder) + `"`)

func collapseNullFields(s string) string {
	s = nullFieldPattern.ReplaceAllString(s, "null")
	// A null marker embedded inside a larger string (rare, but possible if
	// a recipe author concatenates text around a take_if_not) degrades to
	// the empty string rather than corrupting the JSON.
	s = strings.ReplaceAll(s, nullPlaceholder, "")
	return s
}

// Render applies the fixed-point loop: re-serialize and re-render until two
// consecutive passes agree, capped at maxRenderPasses. version is the
// package PURL's version component (see renderEngine.version).
func Render(jsonText string, tags platform.Tags, version string) (string, error) {
	e := &renderEngine{tags: tags, version: version}
	current := jsonText
	for i := 0; i < maxRenderPasses; i++ {
		next, err := e.renderOnce(current)
		if err != nil {
			return "", err
		}
		if next == current {
			return next, nil
		}
		current = next
	}
	return current, nil
}

// eval evaluates a single placeholder expression against ctx (the current
// full JSON document). It returns the string form of the result and whether
// the result is "null" (a take_if_not(...) filter dropped the value).
func (e *renderEngine) eval(expr string, ctx string) (string, bool, error) {
	if left, right, ok := splitAlternation(expr); ok {
		leftVal, leftNull, err := e.eval(left, ctx)
		if err != nil {
			return "", false, err
		}
		if !leftNull && leftVal != "" {
			return leftVal, false, nil
		}
		return e.eval(right, ctx)
	}

	stages := splitPipe(expr)
	value, isNull, err := e.evalBase(strings.TrimSpace(stages[0]), ctx)
	if err != nil {
		return "", false, err
	}

	for _, stage := range stages[1:] {
		value, isNull, err = e.applyFilter(strings.TrimSpace(stage), value, isNull, ctx)
		if err != nil {
			return "", false, err
		}
	}
	return value, isNull, nil
}

// splitAlternation finds a top-level `||` (not nested inside quotes or
// parens) and splits on it. This is Open Question O-1: `||` inside a
// placeholder means "left if truthy else right", and must be recognized
// before the expression reaches the `|` filter-pipe splitter, so that a
// legitimate single-pipe filter chain elsewhere in the same placeholder is
// never mistaken for alternation.
func splitAlternation(expr string) (left, right string, ok bool) {
	depth := 0
	inQuote := false
	for i := 0; i < len(expr)-1; i++ {
		c := expr[i]
		switch {
		case c == '"' && !inQuote:
			inQuote = true
		case c == '"' && inQuote:
			inQuote = false
		case inQuote:
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0 && c == '|' && expr[i+1] == '|':
			return expr[:i], expr[i+2:], true
		}
	}
	return "", "", false
}

// splitPipe splits expr on top-level `|` (single-pipe filter chaining),
// respecting quotes and parens so a `|` inside a string literal or a
// nested filter argument list isn't treated as a pipe boundary.
func splitPipe(expr string) []string {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0 && c == '|':
			parts = append(parts, expr[start:i])
			start = i + 1
		}
	}
	parts = append(parts, expr[start:])
	return parts
}

// evalBase evaluates the leftmost term of a placeholder: a quoted string
// literal, the `version` or `is_platform(...)` globals, or a dotted path
// looked up via gjson against ctx.
func (e *renderEngine) evalBase(term string, ctx string) (string, bool, error) {
	if s, ok := unquote(term); ok {
		return s, false, nil
	}
	if strings.HasPrefix(term, "is_platform(") {
		b, err := e.callIsPlatform(term)
		if err != nil {
			return "", false, err
		}
		return strconv.FormatBool(b), false, nil
	}
	if term == "version" {
		return e.version, false, nil
	}

	result := gjson.Get(ctx, term)
	if !result.Exists() {
		return "", false, nil
	}
	return result.String(), false, nil
}

// applyFilter applies one filter stage (e.g. `strip_prefix("v")` or
// `take_if_not(is_platform("win"))`) to value.
func (e *renderEngine) applyFilter(stage string, value string, isNull bool, ctx string) (string, bool, error) {
	name, argsText, ok := splitCall(stage)
	if !ok {
		// Bare identifier piped with no call syntax; nothing to apply.
		return value, isNull, nil
	}

	switch name {
	case "strip_prefix":
		prefix, _ := unquote(strings.TrimSpace(argsText))
		if !isNull && strings.HasPrefix(value, prefix) {
			return strings.TrimPrefix(value, prefix), false, nil
		}
		return value, isNull, nil

	case "take_if_not":
		cond, err := e.evalCondArg(argsText, ctx)
		if err != nil {
			return "", false, err
		}
		if cond {
			return "", true, nil
		}
		return value, isNull, nil

	default:
		return value, isNull, nil
	}
}

// evalCondArg evaluates a filter argument that should reduce to a boolean:
// either an is_platform(...) call or a dotted-path/boolean-literal lookup.
func (e *renderEngine) evalCondArg(arg string, ctx string) (bool, error) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "is_platform(") {
		return e.callIsPlatform(arg)
	}
	if arg == "true" {
		return true, nil
	}
	if arg == "false" || arg == "" {
		return false, nil
	}
	if s, ok := unquote(arg); ok {
		return s != "", nil
	}
	result := gjson.Get(ctx, arg)
	return result.Exists() && result.String() != "" && result.Bool(), nil
}

// callIsPlatform evaluates `is_platform("tag")` or `is_platform(["a","b"])`.
func (e *renderEngine) callIsPlatform(call string) (bool, error) {
	_, argsText, ok := splitCall(call)
	if !ok {
		return false, nil
	}
	argsText = strings.TrimSpace(argsText)

	if strings.HasPrefix(argsText, "[") {
		tags := parseStringList(argsText)
		for _, tag := range tags {
			if e.tags.Has(tag) {
				return true, nil
			}
		}
		return false, nil
	}

	tag, _ := unquote(argsText)
	return e.tags.Has(tag), nil
}

// splitCall parses `name(args)`, returning name, the raw args text, and
// whether the stage was call-shaped at all.
func splitCall(stage string) (name, args string, ok bool) {
	i := strings.Index(stage, "(")
	if i < 0 || !strings.HasSuffix(stage, ")") {
		return "", "", false
	}
	return strings.TrimSpace(stage[:i]), stage[i+1 : len(stage)-1], true
}

// parseStringList parses a minimal `["a", "b"]` literal.
func parseStringList(s string) []string {
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v, ok := unquote(strings.TrimSpace(part)); ok {
			out = append(out, v)
		}
	}
	return out
}

// unquote strips a double-quoted string literal, reporting whether term was
// quoted at all. Inside the serialized recipe a literal appears with
// JSON-escaped quotes (\"...\"); bare quotes are accepted too.
func unquote(term string) (string, bool) {
	if len(term) >= 4 && strings.HasPrefix(term, `\"`) && strings.HasSuffix(term, `\"`) {
		return term[2 : len(term)-2], true
	}
	if len(term) >= 2 && term[0] == '"' && term[len(term)-1] == '"' {
		return term[1 : len(term)-1], true
	}
	return "", false
}
