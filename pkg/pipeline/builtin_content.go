package pipeline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtractJsonProperty returns the value at a JSONPath in a JSON document.
// Paths without a leading "$" are taken relative to the root. Strings come
// back unquoted, other values as JSON. Missing values and documents that
// are not JSON yield "".
func (b *BuiltIn) ExtractJsonProperty(document, path string) (string, error) {
	if !strings.HasPrefix(path, "$") {
		path = "$." + path
	}
	x, err := jp.ParseString(path)
	if err != nil {
		return "", fmt.Errorf("invalid JSONPath %q: %w", path, err)
	}
	if strings.TrimSpace(document) == "" {
		return "", nil
	}
	data, err := oj.ParseString(document)
	if err != nil {
		b.logger.Debug("property is not JSON", "path", path, "error", err)
		return "", nil
	}

	results := x.Get(data)
	if len(results) == 0 || results[0] == nil {
		return "", nil
	}
	if s, ok := results[0].(string); ok {
		return s, nil
	}
	return oj.JSON(results[0]), nil
}

// dropped are removed by TextCleanup together with their content.
var dropped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Object:   true,
	atom.Embed:    true,
}

// TextCleanup normalizes rich text: scripts, styles, embedded objects and
// comments are removed and the remaining markup is re-serialized.
func (b *BuiltIn) TextCleanup(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	body := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := xhtml.ParseFragment(strings.NewReader(text), body)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, n := range nodes {
		if removable(n) {
			continue
		}
		prune(n)
		if err := xhtml.Render(&out, n); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func removable(n *xhtml.Node) bool {
	return n.Type == xhtml.CommentNode || (n.Type == xhtml.ElementNode && dropped[n.DataAtom])
}

func prune(n *xhtml.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if removable(c) {
			n.RemoveChild(c)
		} else {
			prune(c)
		}
		c = next
	}
}

// StripHtml returns the text content of an HTML fragment with whitespace
// collapsed. Script and style content is dropped.
func (b *BuiltIn) StripHtml(text string) string {
	z := xhtml.NewTokenizer(strings.NewReader(text))
	var (
		parts []string
		skip  int
	)
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			if z.Err() != io.EOF {
				b.logger.Debug("html tokenizer stopped", "error", z.Err())
			}
			return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		case xhtml.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
		case xhtml.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
		case xhtml.TextToken:
			if skip == 0 {
				parts = append(parts, string(z.Text()))
			}
		}
	}
}

func isRawText(tag []byte) bool {
	a := atom.Lookup(tag)
	return a == atom.Script || a == atom.Style
}

// NewGuid returns a random GUID in canonical lowercase form.
func (b *BuiltIn) NewGuid() string {
	return uuid.NewString()
}

// FormatGuid normalizes a GUID written with or without braces or a urn
// prefix. Anything else yields "".
func (b *BuiltIn) FormatGuid(value string) string {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return ""
	}
	return id.String()
}

// Evaluate runs an expression over its arguments and returns a boolean or a
// string. The first argument is bound to value, all of them to values:
//
//	Evaluate('value == "Image" || value == "Picture"', {WebPartType})
func (b *BuiltIn) Evaluate(expression string, args ...string) (Value, error) {
	program, err := b.compile(expression)
	if err != nil {
		return None, fmt.Errorf("compile %q: %w", expression, err)
	}

	env := exprEnv(args)
	out, err := expr.Run(program, env)
	if err != nil {
		return None, fmt.Errorf("eval %q: %w", expression, err)
	}

	switch v := out.(type) {
	case nil:
		return None, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return String(strconv.Itoa(v)), nil
	case float64:
		return String(strconv.FormatFloat(v, 'f', -1, 64)), nil
	default:
		return String(fmt.Sprintf("%v", v)), nil
	}
}

func exprEnv(args []string) map[string]any {
	value := ""
	if len(args) > 0 {
		value = args[0]
	}
	if args == nil {
		args = []string{}
	}
	return map[string]any{"value": value, "values": args}
}

// compile returns the cached program for expression, compiling it on first
// use.
func (b *BuiltIn) compile(expression string) (*vm.Program, error) {
	b.programMu.RLock()
	if program, ok := b.programs[expression]; ok {
		b.programMu.RUnlock()
		return program, nil
	}
	b.programMu.RUnlock()

	program, err := expr.Compile(expression, expr.Env(exprEnv(nil)))
	if err != nil {
		return nil, err
	}

	b.programMu.Lock()
	defer b.programMu.Unlock()
	if existing, ok := b.programs[expression]; ok {
		return existing, nil
	}
	b.programs[expression] = program
	return program, nil
}
