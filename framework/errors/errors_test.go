package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/errors"
)

func TestDependencyError_UnwrapsToNotFound(t *testing.T) {
	err := errors.Dependency(errors.NotFound("db"), "Repo property conn")

	var nf *errors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "db", nf.Entry)
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, errors.IsNotFoundOf(err, "db"), "wrapped not-found belongs to a dependency")
	assert.Contains(t, err.Error(), "Repo property conn")
}

func TestDefinitionError_Message(t *testing.T) {
	err := errors.InvalidDefinition("mailer", "type %s is not instantiable", "Mailer")
	assert.Equal(t, "entry 'mailer' cannot be resolved: type Mailer is not instantiable", err.Error())

	bare := &errors.DefinitionError{Message: "boom"}
	assert.Equal(t, "boom", bare.Error())
}

func TestWrapf_KeepsCause(t *testing.T) {
	root := errors.Circular("a")
	err := errors.Wrapf(root, "loading %s", "module.yaml")

	var cd *errors.CircularDependencyError
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, "a", cd.Entry)
}

func TestConfigurationError_Message(t *testing.T) {
	err := errors.Configuration("cannot set definition %q", "x")
	assert.Equal(t, `container configuration: cannot set definition "x"`, err.Error())
}
