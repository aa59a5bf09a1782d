// Package pipeline executes the function pipelines of mapping templates.
//
// A template declares, per property, a ";"-separated list of function
// expressions:
//
//	{ImageUrl} = ReturnServerRelativePath({ImageUrl})
//	{FileName} = ReturnFileName({ImageUrl}); {Caption} = Prefix('Image: ', {FileName})
//	Contoso.LookupListId({ListUrl})
//
// Expressions are parsed (ParseFunction), their arguments resolved against
// the control being transformed (ResolveParameter) and the call routed by a
// Dispatcher either to the built-in library or, when qualified with a
// plugin name, to a plugin library built by a Loader. Results are written
// back into an EvalContext so later pipelines see them; the selector then
// picks the target mapping.
//
// # Failure modes
//
// Malformed expressions and unresolvable references produce *ParseError and
// stop the current control. Plugins that cannot be loaded produce
// *LoadError and stop the run. Functions that fail produce *CallError.
// Calling a function or plugin nobody provides is not an error; the call is
// skipped and its output left untouched.
//
// # Plugins
//
// A plugin library implements Library and is constructed by a Factory.
// Libraries compiled into the binary register with RegisterPlugin; others
// are Go plugin modules exporting New<Type>:
//
//	func NewFunctions(env *pipeline.Environment) (pipeline.Library, error)
package pipeline
