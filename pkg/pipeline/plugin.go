package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"plugin"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/pagemigrate/pagemigrate/pkg/logging"
	"github.com/pagemigrate/pagemigrate/pkg/mapping"
)

// Catalog maps plugin type names to factories compiled into the binary.
// It is safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Add registers a factory under a fully qualified type name.
func (c *Catalog) Add(typeName string, f Factory) error {
	if typeName == "" || f == nil {
		return errors.New("plugin type name and factory are required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.factories[typeName]; exists {
		return fmt.Errorf("conflicting plugin type: %s", typeName)
	}
	c.factories[typeName] = f
	return nil
}

// Lookup returns the factory registered for typeName.
func (c *Catalog) Lookup(typeName string) (Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[typeName]
	return f, ok
}

// List returns the registered type names in alphabetical order.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.factories))
	for name := range c.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultCatalog holds the plugin types registered with RegisterPlugin.
var DefaultCatalog = NewCatalog()

// RegisterPlugin adds a compiled-in plugin type to DefaultCatalog. It
// returns an empty struct in order to allow package-level calls:
//
//	var _ = pipeline.RegisterPlugin("contoso.Functions", NewFunctions)
func RegisterPlugin(typeName string, f Factory) struct{} {
	if err := DefaultCatalog.Add(typeName, f); err != nil {
		panic(err)
	}
	return struct{}{}
}

// Module is an opened plugin module.
type Module interface {
	Lookup(symbol string) (plugin.Symbol, error)
}

// OpenFunc opens the plugin module at path.
type OpenFunc func(path string) (Module, error)

func openGoPlugin(path string) (Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Plugin is a loaded plugin: its declaration and its constructed library.
type Plugin struct {
	Name     string
	Path     string
	TypeName string
	Library  Library

	funcs map[string]Callable
}

// Functions returns the names the plugin exposes, sorted.
func (p *Plugin) Functions() []string {
	return names(p.funcs)
}

// Registry holds the plugins of one run, keyed by name ignoring case. It is
// built once by a Loader and read-only afterwards.
type Registry struct {
	byName map[string]*Plugin
	order  []*Plugin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Plugin)}
}

func registryKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Get returns the plugin registered under name, ignoring case.
func (r *Registry) Get(name string) (*Plugin, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.byName[registryKey(name)]
	return p, ok
}

// List returns the plugins in declaration order.
func (r *Registry) List() []*Plugin {
	if r == nil {
		return nil
	}
	return append([]*Plugin(nil), r.order...)
}

// Len returns the number of plugins.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

func (r *Registry) add(p *Plugin) error {
	key := registryKey(p.Name)
	if _, exists := r.byName[key]; exists {
		return ErrDuplicatePlugin
	}
	r.byName[key] = p
	r.order = append(r.order, p)
	return nil
}

// Loader turns plugin declarations into a Registry.
type Loader struct {
	catalog *Catalog
	open    OpenFunc
	baseDir string
	logger  *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCatalog sets the catalog of compiled-in plugin types.
func WithCatalog(c *Catalog) LoaderOption {
	return func(l *Loader) {
		l.catalog = c
	}
}

// WithOpener replaces the Go plugin opener.
func WithOpener(open OpenFunc) LoaderOption {
	return func(l *Loader) {
		l.open = open
	}
}

// WithBaseDir sets the directory relative module paths are resolved
// against when they do not exist as given.
func WithBaseDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithLoaderLogger sets the logger used to report load failures. Without
// one a loader used by NewRun logs through the run logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader using DefaultCatalog, the Go plugin package
// and the directory of the running executable.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		catalog: DefaultCatalog,
		open:    openGoPlugin,
		baseDir: executableDir(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) log() *slog.Logger {
	if l.logger == nil {
		return logging.Nop()
	}
	return l.logger
}

// forRun returns a copy of l whose logs carry the run attribute. A loader
// without its own logger adopts runLogger.
func (l *Loader) forRun(runID string, runLogger *slog.Logger) *Loader {
	cp := *l
	if cp.logger == nil {
		cp.logger = runLogger
	} else {
		cp.logger = cp.logger.With("run", runID)
	}
	return &cp
}

func executableDir() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// Load constructs one library per declaration, in order. A module file is
// opened at most once per call even when several declarations share it. Any
// failure is logged with the plugin's declared name and returned as a
// *LoadError; no partial registry is returned.
func (l *Loader) Load(env *Environment, decls []mapping.PluginDeclaration) (*Registry, error) {
	reg := NewRegistry()
	modules := make(map[string]Module)

	for _, d := range decls {
		p, err := l.load(env, d, modules)
		if err == nil {
			if addErr := reg.add(p); addErr != nil {
				err = &LoadError{Plugin: d.Name, Path: d.Path, TypeName: d.TypeName, Err: addErr}
			}
		}
		if err != nil {
			l.log().Error("plugin load failed",
				"plugin", d.Name,
				"type", d.TypeName,
				"path", d.Path,
				"error", err)
			return nil, err
		}
		l.log().Debug("plugin loaded",
			"plugin", p.Name,
			"type", p.TypeName,
			"functions", len(p.funcs))
	}
	return reg, nil
}

func (l *Loader) load(env *Environment, d mapping.PluginDeclaration, modules map[string]Module) (*Plugin, error) {
	fail := func(path string, err error) error {
		return &LoadError{Plugin: d.Name, Path: path, TypeName: d.TypeName, Err: err}
	}
	if strings.TrimSpace(d.Name) == "" {
		return nil, fail(d.Path, ErrEmptyName)
	}

	path := d.Path
	factory, ok := l.catalog.Lookup(d.TypeName)
	if !ok {
		resolved, err := l.resolvePath(d.Path)
		if err != nil {
			return nil, fail(d.Path, err)
		}
		path = resolved

		mod, cached := modules[resolved]
		if !cached {
			mod, err = l.open(resolved)
			if err != nil {
				return nil, fail(path, fmt.Errorf("open module: %w", err))
			}
			modules[resolved] = mod
		}
		factory, err = lookupFactory(mod, d.TypeName)
		if err != nil {
			return nil, fail(path, err)
		}
	}

	lib, err := construct(factory, env)
	if err != nil {
		return nil, fail(path, err)
	}
	funcs, err := bindLibrary(lib)
	if err != nil {
		return nil, fail(path, err)
	}
	return &Plugin{
		Name:     strings.TrimSpace(d.Name),
		Path:     path,
		TypeName: d.TypeName,
		Library:  lib,
		funcs:    funcs,
	}, nil
}

// resolvePath uses p as given when that file exists, else p relative to the
// loader's base directory.
func (l *Loader) resolvePath(p string) (string, error) {
	if p == "" {
		return "", errors.New("no module path declared")
	}
	if fileExists(p) {
		return p, nil
	}
	if !filepath.IsAbs(p) {
		candidate := filepath.Join(l.baseDir, p)
		if fileExists(candidate) {
			return candidate, nil
		}
		return "", fmt.Errorf("module %s not found (also tried %s): %w", p, candidate, os.ErrNotExist)
	}
	return "", fmt.Errorf("module %s not found: %w", p, os.ErrNotExist)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// ConstructorSymbol is the symbol a module exports for a type name:
// "New" followed by the last dot-separated segment, e.g. NewFunctions for
// contoso.Functions.
func ConstructorSymbol(typeName string) string {
	base := typeName
	if i := strings.LastIndexByte(typeName, '.'); i >= 0 {
		base = typeName[i+1:]
	}
	return "New" + base
}

func lookupFactory(mod Module, typeName string) (Factory, error) {
	if typeName == "" {
		return nil, errors.New("no plugin type declared")
	}
	symbol := ConstructorSymbol(typeName)
	sym, err := mod.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("type %s: %w", typeName, err)
	}
	switch f := sym.(type) {
	case func(*Environment) (Library, error):
		return f, nil
	case Factory:
		return f, nil
	case *Factory:
		return *f, nil
	case *func(*Environment) (Library, error):
		return *f, nil
	default:
		return nil, fmt.Errorf("symbol %s has type %T, want func(*pipeline.Environment) (pipeline.Library, error)", symbol, sym)
	}
}

// construct calls a factory, turning a panic into an error.
func construct(f Factory, env *Environment) (lib Library, err error) {
	defer func() {
		if r := recover(); r != nil {
			lib, err = nil, fmt.Errorf("constructor panicked: %v", r)
		}
	}()
	lib, err = f(env)
	if err == nil && lib == nil {
		err = errors.New("constructor returned no library")
	}
	return lib, err
}
