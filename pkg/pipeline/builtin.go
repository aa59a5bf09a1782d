package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/expr-lang/expr/vm"
)

// BuiltIn is the function library available without a plugin qualifier.
type BuiltIn struct {
	env    *Environment
	logger *slog.Logger

	programMu sync.RWMutex
	programs  map[string]*vm.Program

	tokenMu sync.RWMutex
	tokens  map[string]*regexp.Regexp
}

var _ Library = (*BuiltIn)(nil)

// NewBuiltIn constructs the built-in library. Its signature is the Factory
// contract plugins implement too.
func NewBuiltIn(env *Environment) (Library, error) {
	return &BuiltIn{
		env:      env,
		logger:   env.Logger(),
		programs: make(map[string]*vm.Program),
		tokens:   make(map[string]*regexp.Regexp),
	}, nil
}

// Functions implements Library.
func (b *BuiltIn) Functions() map[string]any {
	return map[string]any{
		// Encoding
		"HtmlEncode":        b.HtmlEncode,
		"HtmlEncodeForJson": b.HtmlEncodeForJson,
		"HtmlDecode":        b.HtmlDecode,

		// Constants
		"ReturnTrue":   b.ReturnTrue,
		"ReturnFalse":  b.ReturnFalse,
		"EmptyString":  b.EmptyString,
		"StaticString": b.StaticString,

		// Strings
		"Concatenate":                       b.Concatenate,
		"ConcatenateWithSemiColonDelimiter": b.ConcatenateWithSemiColonDelimiter,
		"ConcatenateWithPipeDelimiter":      b.ConcatenateWithPipeDelimiter,
		"Prefix":                            b.Prefix,
		"Suffix":                            b.Suffix,
		"PrefixAndSuffix":                   b.PrefixAndSuffix,
		"ToLower":                           b.ToLower,
		"ToUpper":                           b.ToUpper,
		"Trim":                              b.Trim,
		"ReplaceToken":                      b.ReplaceToken,
		"Coalesce":                          b.Coalesce,

		// Conditions
		"IsEmpty":  b.IsEmpty,
		"Equals":   b.Equals,
		"Evaluate": b.Evaluate,

		// URLs
		"ReturnFileName":           b.ReturnFileName,
		"ReturnServerRelativePath": b.ReturnServerRelativePath,
		"SplitUrl":                 b.SplitUrl,

		// Content
		"ExtractJsonProperty": b.ExtractJsonProperty,
		"TextCleanup":         b.TextCleanup,
		"StripHtml":           b.StripHtml,

		// Identifiers
		"NewGuid":    b.NewGuid,
		"FormatGuid": b.FormatGuid,
	}
}

// HtmlEncode escapes <, >, &, ' and ".
func (b *BuiltIn) HtmlEncode(value string) string {
	return html.EscapeString(value)
}

// HtmlEncodeForJson HTML-encodes value and escapes the result for use
// inside a JSON string literal.
func (b *BuiltIn) HtmlEncodeForJson(value string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(html.EscapeString(value)); err != nil {
		return ""
	}
	encoded := bytes.TrimSpace(buf.Bytes())
	return string(encoded[1 : len(encoded)-1])
}

// HtmlDecode reverses HtmlEncode and decodes any other entity.
func (b *BuiltIn) HtmlDecode(value string) string {
	return html.UnescapeString(value)
}

// ReturnTrue always returns true.
func (b *BuiltIn) ReturnTrue() bool { return true }

// ReturnFalse always returns false.
func (b *BuiltIn) ReturnFalse() bool { return false }

// EmptyString always returns "".
func (b *BuiltIn) EmptyString() string { return "" }

// StaticString returns its argument, typically a literal.
func (b *BuiltIn) StaticString(value string) string { return value }

// Concatenate joins its arguments.
func (b *BuiltIn) Concatenate(values ...string) string {
	return strings.Join(values, "")
}

// ConcatenateWithSemiColonDelimiter joins the non-empty arguments with ";".
func (b *BuiltIn) ConcatenateWithSemiColonDelimiter(values ...string) string {
	return joinNonEmpty(values, ";")
}

// ConcatenateWithPipeDelimiter joins the non-empty arguments with "|".
func (b *BuiltIn) ConcatenateWithPipeDelimiter(values ...string) string {
	return joinNonEmpty(values, "|")
}

func joinNonEmpty(values []string, sep string) string {
	kept := values[:0:0]
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

// Prefix prepends prefix to a non-empty value.
func (b *BuiltIn) Prefix(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}

// Suffix appends suffix to a non-empty value.
func (b *BuiltIn) Suffix(suffix, value string) string {
	if value == "" {
		return ""
	}
	return value + suffix
}

// PrefixAndSuffix wraps a non-empty value.
func (b *BuiltIn) PrefixAndSuffix(prefix, suffix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value + suffix
}

// ToLower lowercases value.
func (b *BuiltIn) ToLower(value string) string { return strings.ToLower(value) }

// ToUpper uppercases value.
func (b *BuiltIn) ToUpper(value string) string { return strings.ToUpper(value) }

// Trim removes surrounding whitespace.
func (b *BuiltIn) Trim(value string) string { return strings.TrimSpace(value) }

// ReplaceToken replaces every occurrence of token in text with value,
// ignoring the case of the token.
func (b *BuiltIn) ReplaceToken(text, token, value string) string {
	if token == "" {
		return text
	}
	return b.tokenPattern(token).ReplaceAllLiteralString(text, value)
}

// tokenPattern returns the cached case-insensitive pattern for token.
func (b *BuiltIn) tokenPattern(token string) *regexp.Regexp {
	b.tokenMu.RLock()
	re, ok := b.tokens[token]
	b.tokenMu.RUnlock()
	if ok {
		return re
	}

	b.tokenMu.Lock()
	defer b.tokenMu.Unlock()
	if re, ok := b.tokens[token]; ok {
		return re
	}
	re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(token))
	b.tokens[token] = re
	return re
}

// Coalesce returns the first non-empty argument.
func (b *BuiltIn) Coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsEmpty reports whether value is empty or whitespace.
func (b *BuiltIn) IsEmpty(value string) bool {
	return strings.TrimSpace(value) == ""
}

// Equals compares two values, ignoring case.
func (b *BuiltIn) Equals(a, c string) bool {
	return strings.EqualFold(a, c)
}

// ReturnFileName returns the last path segment of a URL or path, without
// query or fragment.
func (b *BuiltIn) ReturnFileName(value string) string {
	p := value
	if u, err := url.Parse(value); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// ReturnServerRelativePath strips scheme, host, query and fragment from a
// URL. Relative input is returned as its path.
func (b *BuiltIn) ReturnServerRelativePath(value string) string {
	if value == "" {
		return ""
	}
	u, err := url.Parse(value)
	if err != nil {
		return value
	}
	return u.Path
}

// SplitUrl breaks an absolute URL into UrlScheme, UrlHost, UrlPath and
// UrlFileName.
func (b *BuiltIn) SplitUrl(value string) (map[string]string, error) {
	if value == "" {
		return nil, nil
	}
	u, err := url.Parse(value)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("url %q is not absolute", value)
	}
	return map[string]string{
		"UrlScheme":   u.Scheme,
		"UrlHost":     u.Host,
		"UrlPath":     u.Path,
		"UrlFileName": b.ReturnFileName(value),
	}, nil
}
