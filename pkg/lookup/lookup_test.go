package lookup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myint-archive/brepl/pkg/editor"
)

func testNamespace() *Namespace {
	n := NewNamespace()
	n.Register("print", &Symbol{
		Callable: true,
		Doc:      "Write values to the output stream.",
		Spec:     &editor.ArgSpec{Name: "print", Params: []string{"value"}},
	})
	n.Register("pow", &Symbol{Callable: true})
	n.Register("sys", &Symbol{Attrs: map[string]*Symbol{
		"path":     {},
		"platform": {Doc: "Host platform id."},
		"version":  {},
	}})
	return n
}

func TestLookupTopLevelPrefix(t *testing.T) {
	n := testNamespace()
	res, err := n.Lookup("p")
	require.NoError(t, err)
	assert.Equal(t, []string{"pow", "print"}, res.Candidates)
}

func TestLookupExactHitCarriesSpecAndDoc(t *testing.T) {
	n := testNamespace()
	res, err := n.Lookup("print")
	require.NoError(t, err)
	assert.Equal(t, []string{"print"}, res.Candidates)
	assert.True(t, res.Callable)
	require.NotNil(t, res.Spec)
	assert.Equal(t, "print", res.Spec.Name)
	assert.Equal(t, "Write values to the output stream.", res.Doc)
}

func TestLookupDottedAttributes(t *testing.T) {
	n := testNamespace()

	res, err := n.Lookup("sys.p")
	require.NoError(t, err)
	assert.Equal(t, []string{"sys.path", "sys.platform"}, res.Candidates)

	// Empty prefix after the dot lists everything.
	res, err = n.Lookup("sys.")
	require.NoError(t, err)
	assert.Equal(t, []string{"sys.path", "sys.platform", "sys.version"}, res.Candidates)

	res, err = n.Lookup("sys.platform")
	require.NoError(t, err)
	assert.Equal(t, "Host platform id.", res.Doc)
}

func TestLookupUnknownHead(t *testing.T) {
	n := testNamespace()
	_, err := n.Lookup("nosuch.attr")
	assert.Error(t, err)
}

func TestLookupMergesQueryTimeSources(t *testing.T) {
	n := testNamespace()
	n.AddSource(func() []string { return []string{"pi", "phi"} })

	res, err := n.Lookup("p")
	require.NoError(t, err)
	assert.Equal(t, []string{"phi", "pi", "pow", "print"}, res.Candidates)
}

func TestDynamicHookContributesNames(t *testing.T) {
	n := NewNamespace()
	n.Register("mod", &Symbol{
		Attrs:   map[string]*Symbol{"static": {}},
		Dynamic: func() []string { return []string{"generated"} },
	})

	res, err := n.Lookup("mod.")
	require.NoError(t, err)
	assert.Equal(t, []string{"mod.generated", "mod.static"}, res.Candidates)
}

func TestPanickingHookIsAMiss(t *testing.T) {
	n := NewNamespace()
	n.Register("bad", &Symbol{
		Attrs:   map[string]*Symbol{"safe": {}},
		Dynamic: func() []string { panic("boom") },
	})

	// The panic is absorbed; the static attributes still complete.
	res, err := n.Lookup("bad.")
	require.NoError(t, err)
	assert.Equal(t, []string{"bad.safe"}, res.Candidates)
}

func TestReentrantHookDoesNotRecurse(t *testing.T) {
	n := NewNamespace()
	calls := 0
	sym := &Symbol{}
	sym.Dynamic = func() []string {
		calls++
		// A hook poking back into the namespace sees itself detached.
		names, _ := attrNames(sym)
		return append(names, "dyn")
	}
	n.Register("tricky", sym)

	res, err := n.Lookup("tricky.")
	require.NoError(t, err)
	assert.Equal(t, []string{"tricky.dyn"}, res.Candidates)
	assert.Equal(t, 1, calls)
}

func TestPrefetchFoldsOneSymbolPerCall(t *testing.T) {
	n := NewNamespace()
	a := &Symbol{Dynamic: func() []string { return []string{"x"} }}
	b := &Symbol{Dynamic: func() []string { return []string{"y"} }}
	n.Register("a", a)
	n.Register("b", b)

	assert.True(t, n.Prefetch(), "one symbol still queued")
	assert.Equal(t, 1, len(a.Attrs))
	assert.Nil(t, b.Attrs)

	assert.False(t, n.Prefetch(), "queue drained")
	assert.Equal(t, 1, len(b.Attrs))

	// Drained queue: further calls are free no-ops.
	assert.False(t, n.Prefetch())
}

func TestLookupPathCompletion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nope.log"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	n := NewNamespace()
	res, err := n.Lookup(dir + "/n")
	require.NoError(t, err)
	assert.Equal(t, []string{
		dir + "/nested/",
		dir + "/nope.log",
		dir + "/notes.txt",
	}, res.Candidates)

	_, err = n.Lookup(dir + "/missing/x")
	assert.Error(t, err)
}
