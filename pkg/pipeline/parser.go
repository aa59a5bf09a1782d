package pipeline

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pagemigrate/pagemigrate/pkg/mapping"
)

// SelectorOutput names the output of a selector expression, which has no
// owning property.
const SelectorOutput = "SelectedMapping"

// PipelineDelimiter separates the functions of one property pipeline.
const PipelineDelimiter = ';'

// literalMark brackets the index of an extracted literal in a masked
// expression. It cannot appear in mapping files.
const literalMark = '\x1f'

// FunctionParameter is one input or the output of a parsed function.
type FunctionParameter struct {
	Name     string
	Type     string
	Value    string
	IsStatic bool
}

// FunctionDefinition is one parsed function expression.
type FunctionDefinition struct {
	Name   string
	Plugin string
	Output FunctionParameter
	Inputs []FunctionParameter
}

// QualifiedName is Plugin.Name, or Name for built-in functions.
func (d *FunctionDefinition) QualifiedName() string {
	if d.Plugin == "" {
		return d.Name
	}
	return d.Plugin + "." + d.Name
}

// ParseFunction parses one function expression:
//
//	[ "{" output "}" "=" ] [ plugin "." ] name "(" [ arg { "," arg } ] ")"
//
// where an argument is a property reference ({Name} or a bare Name) or a
// single-quoted literal. Without an explicit output the result goes to
// property, or to SelectorOutput when property is empty.
//
// With a non-nil ectx every property reference is bound to its declared
// type; a reference that is neither declared nor present on the control is
// a ParseError unless the template is dynamic. A nil ectx checks syntax
// only.
func ParseFunction(expr string, ectx *EvalContext, property string) (*FunctionDefinition, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return nil, &ParseError{Expression: expr, Err: ErrEmptyExpression}
	}

	masked, literals, ok := extractLiterals(raw)
	if !ok {
		return nil, &ParseError{Expression: raw, Err: ErrUnbalanced}
	}

	def := &FunctionDefinition{}
	call := masked
	open := strings.IndexByte(masked, '(')
	if eq := strings.IndexByte(masked, '='); eq >= 0 && (open < 0 || eq < open) {
		name, ok := unwrapBraces(masked[:eq])
		if !ok {
			return nil, &ParseError{Expression: raw, Err: ErrUnbalanced}
		}
		if name == "" {
			return nil, &ParseError{Expression: raw, Err: ErrEmptyName}
		}
		def.Output.Name = name
		call = strings.TrimSpace(masked[eq+1:])
	} else if property != "" {
		def.Output.Name = property
	} else {
		def.Output.Name = SelectorOutput
	}

	open = strings.IndexByte(call, '(')
	if open < 0 {
		return nil, &ParseError{Expression: raw, Err: ErrNoArgumentList}
	}
	if closeParen(call, open) != len(call)-1 {
		return nil, &ParseError{Expression: raw, Err: ErrUnbalanced}
	}

	qualified := strings.TrimSpace(call[:open])
	if plugin, name, found := strings.Cut(qualified, "."); found {
		def.Plugin = strings.TrimSpace(plugin)
		def.Name = strings.TrimSpace(name)
		if def.Plugin == "" {
			return nil, &ParseError{Expression: raw, Function: qualified, Err: ErrEmptyName}
		}
	} else {
		def.Name = qualified
	}
	if def.Name == "" {
		return nil, &ParseError{Expression: raw, Function: qualified, Err: ErrEmptyName}
	}
	if !isIdentifier(def.Name) || (def.Plugin != "" && !isIdentifier(def.Plugin)) {
		return nil, &ParseError{Expression: raw, Function: qualified, Err: ErrInvalidName}
	}

	inner := call[open+1 : len(call)-1]
	if strings.TrimSpace(inner) != "" {
		for _, arg := range strings.Split(inner, ",") {
			p, err := parseArgument(strings.TrimSpace(arg), literals)
			if err != nil {
				return nil, &ParseError{Expression: raw, Function: def.QualifiedName(), Err: err}
			}
			def.Inputs = append(def.Inputs, p)
		}
	}

	def.Output.Type = mapping.TypeString
	if ectx == nil {
		for i := range def.Inputs {
			if !def.Inputs[i].IsStatic {
				def.Inputs[i].Type = mapping.TypeString
			}
		}
		return def, nil
	}

	if out, ok := ectx.Declared(def.Output.Name); ok && out.Type != "" {
		def.Output.Type = out.Type
	}
	for i := range def.Inputs {
		in := &def.Inputs[i]
		if in.IsStatic {
			continue
		}
		typ, ok := bindType(in.Name, ectx)
		if !ok {
			return nil, &ParseError{
				Expression: raw,
				Function:   def.QualifiedName(),
				Parameter:  in.Name,
				Err:        ErrUnresolvedParameter,
			}
		}
		in.Type = typ
	}
	return def, nil
}

// bindType finds the type of a referenced property: its declaration, else
// a string when the control carries it or the template is dynamic.
func bindType(name string, ectx *EvalContext) (string, bool) {
	if p, ok := ectx.Declared(name); ok {
		if p.Type == "" {
			return mapping.TypeString, true
		}
		return p.Type, true
	}
	if _, ok := ectx.Lookup(name); ok {
		return mapping.TypeString, true
	}
	if ectx.Dynamic() {
		return mapping.TypeString, true
	}
	return "", false
}

func parseArgument(arg string, literals []string) (FunctionParameter, error) {
	if arg == "" {
		return FunctionParameter{}, ErrEmptyArgument
	}
	if strings.ContainsRune(arg, literalMark) {
		return FunctionParameter{
			Type:     mapping.TypeString,
			Value:    restoreLiterals(arg, literals),
			IsStatic: true,
		}, nil
	}
	if strings.ContainsAny(arg, "()") {
		return FunctionParameter{}, ErrUnbalanced
	}
	name, ok := unwrapBraces(arg)
	if !ok {
		return FunctionParameter{}, ErrUnbalanced
	}
	if name == "" {
		return FunctionParameter{}, ErrEmptyName
	}
	return FunctionParameter{Name: name}, nil
}

// extractLiterals replaces every single-quoted literal with an indexed
// placeholder so commas, parentheses, equals signs and semicolons inside
// literals survive the splitting that follows.
func extractLiterals(s string) (string, []string, bool) {
	if !strings.ContainsRune(s, '\'') {
		return s, nil, true
	}
	var (
		b        strings.Builder
		literals []string
	)
	for {
		start := strings.IndexByte(s, '\'')
		if start < 0 {
			b.WriteString(s)
			return b.String(), literals, true
		}
		end := strings.IndexByte(s[start+1:], '\'')
		if end < 0 {
			return "", nil, false
		}
		end += start + 1
		b.WriteString(s[:start])
		b.WriteRune(literalMark)
		b.WriteString(strconv.Itoa(len(literals)))
		b.WriteRune(literalMark)
		literals = append(literals, s[start+1:end])
		s = s[end+1:]
	}
}

// restoreLiterals substitutes placeholders with their literal text. Text
// outside the quotes of a static argument is dropped.
func restoreLiterals(arg string, literals []string) string {
	var b strings.Builder
	for {
		start := strings.IndexRune(arg, literalMark)
		if start < 0 {
			return b.String()
		}
		end := strings.IndexRune(arg[start+1:], literalMark)
		if end < 0 {
			return b.String()
		}
		end += start + 1
		if i, err := strconv.Atoi(arg[start+1 : end]); err == nil && i < len(literals) {
			b.WriteString(literals[i])
		}
		arg = arg[end+1:]
	}
}

// unwrapBraces strips one pair of surrounding braces and whitespace.
func unwrapBraces(s string) (string, bool) {
	s = strings.TrimSpace(s)
	hasOpen := strings.HasPrefix(s, "{")
	hasClose := strings.HasSuffix(s, "}")
	if hasOpen != hasClose {
		return "", false
	}
	if hasOpen {
		s = s[1 : len(s)-1]
	}
	if strings.ContainsAny(s, "{}") {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// closeParen returns the index of the parenthesis closing the one at open,
// or -1.
func closeParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// SplitPipeline splits a property's function pipeline on PipelineDelimiter,
// leaving delimiters inside single-quoted literals alone. Blank segments
// are dropped.
func SplitPipeline(s string) ([]string, error) {
	var (
		segments []string
		current  strings.Builder
		inQuote  bool
	)
	flush := func() {
		if seg := strings.TrimSpace(current.String()); seg != "" {
			segments = append(segments, seg)
		}
		current.Reset()
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			current.WriteByte(ch)
		case ch == PipelineDelimiter && !inQuote:
			flush()
		default:
			current.WriteByte(ch)
		}
	}
	if inQuote {
		return nil, &ParseError{Expression: s, Err: ErrUnbalanced}
	}
	flush()
	return segments, nil
}

// isIdentifier reports whether s is made of letters, digits and underscores
// only.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
