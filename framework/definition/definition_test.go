package definition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/definition"
)

func TestNormalize(t *testing.T) {
	v := definition.Normalize("port", 8080)
	require.IsType(t, &definition.ValueDefinition{}, v)
	assert.Equal(t, "port", v.Name())
	assert.Equal(t, 8080, v.(*definition.ValueDefinition).Value())

	alias := definition.Normalize("db", definition.Get("db.primary"))
	require.IsType(t, &definition.AliasDefinition{}, alias)
	assert.Equal(t, "db.primary", alias.(*definition.AliasDefinition).Target())
	assert.Equal(t, definition.Prototype, alias.Scope())
}

func TestLinkPrevious_InnermostLink(t *testing.T) {
	first := definition.Decorate(func(prev any) any { return prev })
	second := definition.Decorate(func(prev any) any { return prev }).WithExtended(first)
	base := definition.Value("base").Named("svc")

	linked := definition.LinkPrevious(second, base).(*definition.DecoratorDefinition)

	inner := linked.Extended().(*definition.DecoratorDefinition)
	assert.Same(t, base, inner.Extended())
	assert.Nil(t, first.Extended(), "input not modified")
}

func TestLinkPrevious_NonExtendingUnchanged(t *testing.T) {
	v := definition.Value(1)
	assert.Same(t, v, definition.LinkPrevious(v, definition.Value(2)))
}

func TestDecorator_ScopeFollowsDecorated(t *testing.T) {
	d := definition.Decorate(func() {})
	assert.Equal(t, definition.Singleton, d.Scope())

	proto := definition.Factory(func() any { return 1 }).InScope(definition.Prototype)
	assert.Equal(t, definition.Prototype, d.WithExtended(proto).Scope())
}

func TestEnv_DefaultMakesOptional(t *testing.T) {
	assert.False(t, definition.Env("A").IsOptional())

	d := definition.Env("A", nil)
	assert.True(t, d.IsOptional())
	assert.Nil(t, d.Default())
}

// ── arrays ────────────────────────────────────────────────────────────────────

func TestArrayExtension_AppendsToList(t *testing.T) {
	base := definition.Array("a", definition.Get("b")).Named("list")
	ext := definition.Add("c").Named("list").(definition.ExtendsPrevious).WithExtended(base)

	merged, err := ext.(*definition.ArrayExtension).Merged()
	require.NoError(t, err)

	entries := merged.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "2", entries[2].Key)
	assert.Equal(t, "c", entries[2].Value)
	assert.False(t, merged.Keyed())
}

func TestArrayExtension_KeyedReplacesInPlace(t *testing.T) {
	base := definition.Map(definition.KV("x", 1), definition.KV("y", 2))
	ext := definition.AddMap(definition.KV("x", 10), definition.KV("z", 3)).WithExtended(base)

	merged, err := ext.(*definition.ArrayExtension).Merged()
	require.NoError(t, err)
	assert.Equal(t, []definition.ArrayEntry{
		{Key: "x", Value: 10}, {Key: "y", Value: 2}, {Key: "z", Value: 3},
	}, merged.Entries())
	assert.True(t, merged.Keyed())
}

func TestArrayExtension_ChainedAndNonArrayPrevious(t *testing.T) {
	base := definition.Array(1)
	first := definition.Add(2).WithExtended(base)
	second := definition.Add(3).WithExtended(first)

	merged, err := second.(*definition.ArrayExtension).Merged()
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Len())

	bad := definition.Add(1).Named("x").(*definition.ArrayExtension).WithExtended(definition.Value("nope"))
	_, err = bad.(*definition.ArrayExtension).Merged()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "previous definition is a *definition.ValueDefinition")
}
