package definition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/definition"
)

func params(t *testing.T, calls []*definition.MethodInjection) [][]any {
	t.Helper()
	out := make([][]any, len(calls))
	for i, call := range calls {
		p := call.Parameters()
		row := make([]any, len(p))
		for idx, v := range p {
			require.Less(t, idx, len(p), "sparse parameters in %s", call.Method())
			row[idx] = v
		}
		out[i] = row
	}
	return out
}

// ── Merge ─────────────────────────────────────────────────────────────────────

func TestMerge_MethodCallOverrideDoesNotLeak(t *testing.T) {
	parent := definition.Create("Collector").
		Method("Add", "foo").
		Method("Add", "foo")
	child := definition.Create().MethodParameter("Add", 0, 0, "bar")

	merged := child.Merge(parent)

	assert.Equal(t, [][]any{{"bar"}, {"foo"}}, params(t, merged.Calls("Add")))
	assert.Equal(t, [][]any{{"foo"}, {"foo"}}, params(t, parent.Calls("Add")), "parent untouched")
	assert.Equal(t, [][]any{{"bar"}}, params(t, child.Calls("Add")), "child untouched")
}

func TestMerge_ChildFieldsWin(t *testing.T) {
	parent := definition.Create("Mailer").
		Lazy().
		InScope(definition.Prototype).
		Constructor("smtp", 25).
		Property("from", "noreply@example.test").
		Property("retries", 3)
	child := definition.Create().
		Eager().
		ConstructorParameter(1, 2525).
		Property("retries", 5)

	merged := child.Named("mailer").(*definition.ObjectDefinition).Merge(parent)

	assert.Equal(t, "mailer", merged.Name())
	assert.Equal(t, "Mailer", merged.Type())
	assert.False(t, merged.IsLazy())
	assert.Equal(t, definition.Prototype, merged.Scope())

	host, _ := merged.ConstructorInjection().Parameter(0)
	port, _ := merged.ConstructorInjection().Parameter(1)
	assert.Equal(t, "smtp", host)
	assert.Equal(t, 2525, port)

	assert.Equal(t, []definition.PropertyInjection{
		{Property: "retries", Value: 5},
		{Property: "from", Value: "noreply@example.test"},
	}, merged.PropertyInjections())
}

func TestMerge_MethodsFromParentAppendAfterChild(t *testing.T) {
	parent := definition.Create("Logger").Method("SetLevel", "info").Method("AddHandler", "stdout")
	child := definition.Create().Method("AddHandler", "file").Method("AddHandler", "syslog")

	merged := child.Merge(parent)

	var methods []string
	for _, call := range merged.MethodInjections() {
		methods = append(methods, call.Method())
	}
	assert.Equal(t, []string{"AddHandler", "AddHandler", "SetLevel"}, methods)
	assert.Equal(t, [][]any{{"file"}, {"syslog"}}, params(t, merged.Calls("AddHandler")))
}

func TestMerge_NilParentClearsExtends(t *testing.T) {
	d := definition.Create("X").Extends("base")
	merged := d.Merge(nil)
	assert.Equal(t, "", merged.ParentName())
	assert.Equal(t, "base", d.ParentName())
}

// ── Builder ───────────────────────────────────────────────────────────────────

func TestObjectDefinition_DefaultsAndType(t *testing.T) {
	d := definition.Create().Named("svc").(*definition.ObjectDefinition)
	assert.Equal(t, "svc", d.Type())
	assert.Equal(t, definition.Singleton, d.Scope())
	assert.False(t, d.IsLazy())
	assert.False(t, d.IsAutowired())
	assert.True(t, definition.Autowire("T").IsAutowired())
}

func TestObjectDefinition_PropertySetTwiceKeepsLast(t *testing.T) {
	d := definition.Create("T").Property("a", 1).Property("a", 2)
	assert.Equal(t, []definition.PropertyInjection{{Property: "a", Value: 2}}, d.PropertyInjections())
}

func TestObjectDefinition_NamedIsACopy(t *testing.T) {
	d := definition.Create("T").Method("Add", 1)
	named := d.Named("t").(*definition.ObjectDefinition)
	d.Method("Add", 2)

	assert.Len(t, named.Calls("Add"), 1)
	assert.Len(t, d.Calls("Add"), 2)
}
