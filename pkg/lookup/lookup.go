// Package lookup resolves dotted names against a registered namespace for
// completion: attribute candidates, callability, signatures, and docstrings.
// Attribute access may run user-provided hooks, so every walk is guarded; a
// hook that panics produces a miss, never a crash.
package lookup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/myint-archive/brepl/pkg/editor"
)

// Symbol is one entry in the namespace tree.
type Symbol struct {
	Doc      string
	Spec     *editor.ArgSpec
	Callable bool
	Attrs    map[string]*Symbol

	// Dynamic yields additional attribute names on demand. It runs only
	// inside the scoped guard and its results are folded into Attrs by the
	// background prefetch.
	Dynamic func() []string

	prefetched bool
}

// Namespace is the root symbol table.
type Namespace struct {
	root    map[string]*Symbol
	sources []func() []string
	queue   []*Symbol
}

func NewNamespace() *Namespace {
	return &Namespace{root: map[string]*Symbol{}}
}

// Register adds a top-level name. Symbols with dynamic hooks are queued for
// background warm-up.
func (n *Namespace) Register(name string, sym *Symbol) {
	n.root[name] = sym
	if sym.Dynamic != nil {
		n.queue = append(n.queue, sym)
	}
}

// AddSource contributes top-level names computed at query time, e.g. the
// interpreter's live variables.
func (n *Namespace) AddSource(fn func() []string) {
	n.sources = append(n.sources, fn)
}

// Lookup resolves a possibly partial dotted name. "sys.pa" walks to sys and
// returns its attributes starting with "pa", as full dotted candidates. A
// name containing a path separator completes against the filesystem
// instead.
func (n *Namespace) Lookup(dotted string) (editor.LookupResult, error) {
	if strings.Contains(dotted, "/") {
		return n.lookupPath(dotted)
	}

	parts := strings.Split(dotted, ".")
	prefix, path := parts[len(parts)-1], parts[:len(parts)-1]

	attrs, err := n.resolve(path)
	if err != nil {
		return editor.LookupResult{}, err
	}

	var res editor.LookupResult
	head := strings.Join(path, ".")
	if head != "" {
		head += "."
	}
	for _, name := range attrs {
		if strings.HasPrefix(name, prefix) {
			res.Candidates = append(res.Candidates, head+name)
		}
	}
	sort.Strings(res.Candidates)

	// An exact hit carries its signature and docstring along.
	if exact := n.walk(append(path, prefix)); exact != nil {
		res.Callable = exact.Callable
		res.Spec = exact.Spec
		res.Doc = exact.Doc
	}
	return res, nil
}

// Prefetch folds one queued symbol's dynamic names into its attribute map.
// One symbol per call keeps the unit of work small enough for the idle
// tick.
func (n *Namespace) Prefetch() bool {
	for len(n.queue) > 0 {
		sym := n.queue[0]
		n.queue = n.queue[1:]
		if sym.prefetched {
			continue
		}
		sym.prefetched = true
		names, err := guardedDynamic(sym)
		if err != nil {
			continue
		}
		if sym.Attrs == nil {
			sym.Attrs = map[string]*Symbol{}
		}
		for _, name := range names {
			if _, exists := sym.Attrs[name]; !exists {
				sym.Attrs[name] = &Symbol{}
			}
		}
		return len(n.queue) > 0
	}
	return false
}

// resolve walks to the symbol at path and returns its attribute names. An
// empty path is the root.
func (n *Namespace) resolve(path []string) ([]string, error) {
	if len(path) == 0 {
		names := make([]string, 0, len(n.root))
		for name := range n.root {
			names = append(names, name)
		}
		for _, src := range n.sources {
			names = append(names, src()...)
		}
		return names, nil
	}
	sym := n.walk(path)
	if sym == nil {
		return nil, fmt.Errorf("unknown name %q", strings.Join(path, "."))
	}
	return attrNames(sym)
}

func (n *Namespace) walk(path []string) *Symbol {
	if len(path) == 0 {
		return nil
	}
	sym, ok := n.root[path[0]]
	if !ok {
		return nil
	}
	for _, p := range path[1:] {
		sym = sym.Attrs[p]
		if sym == nil {
			return nil
		}
	}
	return sym
}

// attrNames enumerates a symbol's attributes with its dynamic hook
// neutralized, then runs the hook itself under the guard. A misbehaving
// hook contributes nothing.
func attrNames(sym *Symbol) ([]string, error) {
	names := make([]string, 0, len(sym.Attrs))
	for name := range sym.Attrs {
		names = append(names, name)
	}
	if dynamic, err := guardedDynamic(sym); err == nil {
		names = append(names, dynamic...)
	}
	return names, nil
}

// guardedDynamic runs the symbol's dynamic hook with the hook itself
// snapshotted and detached for the duration, so a reentrant lookup from
// inside the hook cannot recurse, and a panic becomes a plain miss.
func guardedDynamic(sym *Symbol) (names []string, err error) {
	hook := sym.Dynamic
	if hook == nil {
		return nil, nil
	}
	sym.Dynamic = nil
	defer func() {
		sym.Dynamic = hook
		if r := recover(); r != nil {
			names = nil
			err = fmt.Errorf("attribute hook panicked: %v", r)
		}
	}()
	return hook(), nil
}

// lookupPath completes a filesystem path, directories with a trailing
// separator.
func (n *Namespace) lookupPath(partial string) (editor.LookupResult, error) {
	dir, base := filepath.Split(partial)
	entries, err := os.ReadDir(dirOrDot(dir))
	if err != nil {
		return editor.LookupResult{}, fmt.Errorf("reading %q: %w", dir, err)
	}
	var res editor.LookupResult
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		full := dir + name
		if e.IsDir() {
			full += "/"
		}
		res.Candidates = append(res.Candidates, full)
	}
	sort.Strings(res.Candidates)
	return res, nil
}

func dirOrDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
