package pipeline

// ResolveParameter returns the runtime value of a parameter. A static
// parameter yields its literal. A property reference yields the live value,
// ignoring case; a declared property the control does not carry yields "",
// as does any missing property of a dynamic template.
func ResolveParameter(p FunctionParameter, ectx *EvalContext) (string, error) {
	if p.IsStatic {
		return p.Value, nil
	}
	if v, ok := ectx.Lookup(p.Name); ok {
		return v, nil
	}
	if _, ok := ectx.Declared(p.Name); ok || ectx.Dynamic() {
		return "", nil
	}
	return "", &ParseError{Parameter: p.Name, Err: ErrUnresolvedParameter}
}

// Resolve fills in the Value of every input of def.
func Resolve(def *FunctionDefinition, ectx *EvalContext) error {
	for i := range def.Inputs {
		v, err := ResolveParameter(def.Inputs[i], ectx)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Function = def.QualifiedName()
			}
			return err
		}
		def.Inputs[i].Value = v
	}
	return nil
}

// Arguments returns the resolved input values in declaration order.
func (d *FunctionDefinition) Arguments() []string {
	args := make([]string, len(d.Inputs))
	for i, in := range d.Inputs {
		args[i] = in.Value
	}
	return args
}
