package macro

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrSyntax is wrapped by every parameter list error.
	ErrSyntax = errors.New("parameter syntax error")

	ErrUnterminatedQuote  = fmt.Errorf("%w: unterminated quote", ErrSyntax)
	ErrUnterminatedEscape = fmt.Errorf("%w: unterminated escape", ErrSyntax)
)

// ParamError reports a token that is not of the form name[=value].
type ParamError struct {
	Index int    // position of the token in the list
	Token string // raw token text
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%v: bad parameter #%d %q", ErrSyntax, e.Index+1, e.Token)
}

func (e *ParamError) Unwrap() error { return ErrSyntax }

var (
	paramPattern   = regexp.MustCompile(`^\s*([A-Za-z]\w*)(?:\s*=\s*(?:"((?:\\[\s\S]|[^"])*)"|([^"\s]+)))?\s*$`)
	escapedPattern = regexp.MustCompile(`\\([\s\S])`)
)

// SplitParams splits a raw parameter list on top-level commas.
// Quotes and backslash escapes are copied through verbatim; commas inside
// quotes do not split. An unterminated quote or escape is an error.
func SplitParams(s string) ([]string, error) {
	var result []string
	var buf strings.Builder
	inQuote := false
	pendingEscape := false

	for _, c := range s {
		switch {
		case c == '\\':
			buf.WriteRune(c)
			pendingEscape = !pendingEscape
		case pendingEscape:
			buf.WriteRune(c)
			pendingEscape = false
		case c == '"':
			buf.WriteRune(c)
			inQuote = !inQuote
		case c == ',' && !inQuote:
			result = append(result, buf.String())
			buf.Reset()
		default:
			buf.WriteRune(c)
		}
	}

	if pendingEscape {
		return nil, ErrUnterminatedEscape
	}
	if inQuote {
		return nil, ErrUnterminatedQuote
	}

	return append(result, buf.String()), nil
}

// ParseParams decodes a raw parameter list into Params.
// Blank input yields empty Params. Repeated names collect their values in
// source order.
func ParseParams(s string) (Params, error) {
	result := Params{}
	if IsBlank(s) {
		return result, nil
	}

	tokens, err := SplitParams(s)
	if err != nil {
		return nil, err
	}

	for i, tok := range tokens {
		m := paramPattern.FindStringSubmatchIndex(tok)
		if m == nil {
			return nil, &ParamError{Index: i, Token: tok}
		}

		name := tok[m[2]:m[3]]
		var v Value
		switch {
		case m[4] >= 0:
			v = Value{String: Unescape(tok[m[4]:m[5]]), Valid: true}
		case m[6] >= 0:
			v = Value{String: Unescape(tok[m[6]:m[7]]), Valid: true}
		}

		result[name] = append(result[name], v)
	}

	return result, nil
}

// Unescape replaces every backslash escape \X with X.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return escapedPattern.ReplaceAllString(s, "$1")
}

// FormatParams renders params back into list syntax that ParseParams accepts.
// Names are sorted; values are always quoted.
func FormatParams(p Params) string {
	var parts []string
	for _, name := range p.Names() {
		for _, v := range p[name] {
			if !v.Valid {
				parts = append(parts, name)
				continue
			}
			parts = append(parts, name+`="`+escapeValue(v.String)+`"`)
		}
	}
	return strings.Join(parts, ", ")
}

func escapeValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
