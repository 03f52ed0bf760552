package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/definition/source"
	"github.com/km-arc/go-container/framework/errors"
	"github.com/km-arc/go-container/framework/introspect"
)

type Store interface{ Get(key string) string }

type memStore struct{ data map[string]string }

func (m *memStore) Get(key string) string { return m.data[key] }

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

type Cache struct {
	store Store
	ttl   int
}

func NewCache(store Store, ttl int) *Cache { return &Cache{store: store, ttl: ttl} }

func types(t *testing.T) *introspect.Registry {
	t.Helper()
	r := introspect.NewRegistry()
	introspect.MustRegisterType[Store](r, "Store")
	introspect.MustRegister(r, "MemStore", newMemStore)
	introspect.MustRegister(r, "Cache", NewCache,
		introspect.Params("store", "ttl"),
		introspect.Default("ttl", 60))
	return r
}

// ── Map ───────────────────────────────────────────────────────────────────────

func TestMap_NormalizesRawValues(t *testing.T) {
	m := source.NewMap(map[string]any{
		"name":  "shop",
		"alias": definition.Get("name"),
	})

	def, err := m.GetDefinition("name")
	require.NoError(t, err)
	require.IsType(t, &definition.ValueDefinition{}, def)
	assert.Equal(t, "shop", def.(*definition.ValueDefinition).Value())
	assert.Equal(t, "name", def.Name())

	def, err = m.GetDefinition("alias")
	require.NoError(t, err)
	require.IsType(t, &definition.AliasDefinition{}, def)
	assert.Equal(t, "name", def.(*definition.AliasDefinition).Target())

	def, err = m.GetDefinition("missing")
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestMap_AddDefinitionLinksDecorators(t *testing.T) {
	m := source.NewMap(nil)
	require.NoError(t, m.AddDefinition(definition.Value(1).Named("n")))
	require.NoError(t, m.AddDefinition(definition.Decorate(func(prev any) any { return prev }).Named("n")))

	def, _ := m.GetDefinition("n")
	dec, ok := def.(*definition.DecoratorDefinition)
	require.True(t, ok)
	require.IsType(t, &definition.ValueDefinition{}, dec.Extended())

	err := m.AddDefinition(definition.Value(1))
	var cfg *errors.ConfigurationError
	assert.ErrorAs(t, err, &cfg)
}

// ── Chain ─────────────────────────────────────────────────────────────────────

func TestChain_FirstFoundWins(t *testing.T) {
	chain := source.NewChain(
		source.NewMap(map[string]any{"a": "first"}),
		source.NewMap(map[string]any{"a": "second", "b": "only"}),
	)

	def, err := chain.GetDefinition("a")
	require.NoError(t, err)
	assert.Equal(t, "first", def.(*definition.ValueDefinition).Value())

	def, err = chain.GetDefinition("b")
	require.NoError(t, err)
	assert.Equal(t, "only", def.(*definition.ValueDefinition).Value())

	defs, err := chain.Definitions()
	require.NoError(t, err)
	assert.Len(t, defs, 2)
}

func TestChain_MutableInFront(t *testing.T) {
	chain := source.NewChain(source.NewMap(map[string]any{"a": "config"}))
	assert.False(t, chain.IsMutable())
	var cfg *errors.ConfigurationError
	assert.ErrorAs(t, chain.AddDefinition(definition.Value("x").Named("a")), &cfg)

	chain.SetMutable(source.NewMap(nil))
	require.NoError(t, chain.AddDefinition(definition.Value("runtime").Named("a")))

	def, err := chain.GetDefinition("a")
	require.NoError(t, err)
	assert.Equal(t, "runtime", def.(*definition.ValueDefinition).Value())
}

func TestChain_LinksAcrossSources(t *testing.T) {
	chain := source.NewChain(
		source.NewMap(map[string]any{
			"tags": definition.Add("c"),
			"svc":  definition.Decorate(func(prev any) any { return prev }),
		}),
		source.NewMap(map[string]any{
			"tags": definition.Array("a", "b"),
			"svc":  definition.Create("MemStore"),
		}),
	)

	def, err := chain.GetDefinition("tags")
	require.NoError(t, err)
	arr, ok := def.(*definition.ArrayDefinition)
	require.True(t, ok, "array additions are flattened")
	values := make([]any, 0, arr.Len())
	for _, e := range arr.Entries() {
		values = append(values, e.Value)
	}
	assert.Equal(t, []any{"a", "b", "c"}, values)

	def, err = chain.GetDefinition("svc")
	require.NoError(t, err)
	dec := def.(*definition.DecoratorDefinition)
	require.IsType(t, &definition.ObjectDefinition{}, dec.Extended())
	assert.Equal(t, definition.Singleton, dec.Scope())
}

func TestChain_AddOnNonArrayIsDefinitionError(t *testing.T) {
	chain := source.NewChain(
		source.NewMap(map[string]any{"x": definition.Add(1)}),
		source.NewMap(map[string]any{"x": "scalar"}),
	)
	_, err := chain.GetDefinition("x")
	var de *errors.DefinitionError
	assert.ErrorAs(t, err, &de)
}

func TestChain_MergesNamedParent(t *testing.T) {
	chain := source.NewChain(
		source.NewMap(map[string]any{
			"child": definition.Create().Extends("parent").
				MethodParameter("add", 0, 0, "bar"),
		}),
		source.NewMap(map[string]any{
			"parent": definition.Create("MemStore").Lazy().
				Method("add", "foo").
				Method("add", "foo"),
		}),
	)

	def, err := chain.GetDefinition("child")
	require.NoError(t, err)
	obj := def.(*definition.ObjectDefinition)
	assert.Equal(t, "child", obj.Name())
	assert.Equal(t, "MemStore", obj.Type())
	assert.True(t, obj.IsLazy())
	assert.Empty(t, obj.ParentName())

	calls := obj.Calls("add")
	require.Len(t, calls, 2)
	first, _ := calls[0].Parameter(0)
	second, _ := calls[1].Parameter(0)
	assert.Equal(t, "bar", first)
	assert.Equal(t, "foo", second)
}

func TestChain_ParentErrors(t *testing.T) {
	chain := source.NewChain(source.NewMap(map[string]any{
		"orphan": definition.Create().Extends("nobody"),
		"self":   definition.Create().Extends("self"),
		"value":  "v",
		"wrong":  definition.Create().Extends("value"),
	}))

	for _, name := range []string{"orphan", "self", "wrong"} {
		_, err := chain.GetDefinition(name)
		var de *errors.DefinitionError
		require.ErrorAs(t, err, &de, name)
		assert.Equal(t, name, de.Entry)
	}
}

// ── Autowiring ────────────────────────────────────────────────────────────────

func TestAutowiring_CompletesConstructor(t *testing.T) {
	r := types(t)
	chain := source.NewChain(source.NewMap(map[string]any{
		"cache": definition.Autowire("Cache"),
	}))
	chain.SetAutowiring(source.NewAutowiring(r, false))

	def, err := chain.GetDefinition("cache")
	require.NoError(t, err)
	ctor := def.(*definition.ObjectDefinition).ConstructorInjection()
	require.NotNil(t, ctor)

	store, ok := ctor.Parameter(0)
	require.True(t, ok)
	assert.Equal(t, "Store", store.(*definition.Reference).Target())

	_, ok = ctor.Parameter(1)
	assert.False(t, ok, "optional parameters keep their default")

	def, err = chain.GetDefinition("MemStore")
	require.NoError(t, err)
	assert.Nil(t, def, "implicit entries are off")
}

func TestAutowiring_Implicit(t *testing.T) {
	auto := source.NewAutowiring(types(t), true)

	def, err := auto.GetDefinition("Cache")
	require.NoError(t, err)
	obj := def.(*definition.ObjectDefinition)
	assert.Equal(t, "Cache", obj.Type())
	assert.True(t, obj.IsAutowired())

	def, err = auto.GetDefinition("Store")
	require.NoError(t, err)
	assert.Nil(t, def, "interfaces are not instantiable")

	def, err = auto.GetDefinition("Unknown")
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestAutowiring_KeepsDeclaredParameters(t *testing.T) {
	auto := source.NewAutowiring(types(t), false)
	obj := definition.Autowire("Cache").Constructor(definition.Get("custom.store"))

	completed := auto.Complete(obj.Named("cache").(*definition.ObjectDefinition))
	v, _ := completed.ConstructorInjection().Parameter(0)
	assert.Equal(t, "custom.store", v.(*definition.Reference).Target())
	assert.Nil(t, obj.ConstructorInjection().Parameters()[1], "input is untouched")
}
