package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/gia/pkg/iga"
)

func answers(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestInteractiveBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("object types with properties", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		in := answers(
			"HR Export",   // name
			"From HR",     // description
			"",            // add object types? default yes
			"__ACCOUNT__", // id
			"",            // kind, default account
			"y",           // add properties
			"userName",
			"",
			"active",
			"bool", // invalid choice
			"boolean",
			"", // done with properties
			"y",
			"__GROUP__",
			"RESOURCE",
			"n",
			"n",
		)

		app, err := NewInteractiveBuilder(in, &out).Build()
		require.NoError(t, err)

		assert.Equal(t, "HR Export", app.Name)
		assert.Equal(t, "From HR", app.Description)
		assert.Equal(t, []string{"__ACCOUNT__", "__GROUP__"}, app.ObjectTypeIDs())

		account := app.ObjectTypes()["__ACCOUNT__"]
		assert.Equal(t, iga.ObjectKindAccount, account.Type)
		assert.Equal(t, map[string]interface{}{
			"userName": map[string]interface{}{"type": "string"},
			"active":   map[string]interface{}{"type": "boolean"},
		}, account.Properties)

		group := app.ObjectTypes()["__GROUP__"]
		assert.Equal(t, iga.ObjectKindResource, group.Type)
		assert.Empty(t, group.Properties)

		assert.Contains(t, out.String(), `Invalid choice "bool"`)
		assert.Contains(t, out.String(), "Added object type '__GROUP__'")
		assert.Contains(t, out.String(), "configured with 2 object type(s)")
	})

	t.Run("duplicate object type is skipped", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		in := answers("App", "", "y", "__ACCOUNT__", "account", "n", "y", "__ACCOUNT__", "resource", "n", "n")

		app, err := NewInteractiveBuilder(in, &out).Build()
		require.NoError(t, err)
		assert.Equal(t, iga.ObjectKindAccount, app.ObjectTypes()["__ACCOUNT__"].Type)
		assert.Contains(t, out.String(), "Skipped:")
	})

	t.Run("no object types", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		app, err := NewInteractiveBuilder(answers("App", "", "n"), &out).Build()
		require.NoError(t, err)
		assert.Empty(t, app.ObjectTypes())
	})

	t.Run("closed input", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		_, err := NewInteractiveBuilder(strings.NewReader(""), &out).Build()
		require.ErrorIs(t, err, errInputClosed)
	})
}

func TestPrompter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	p := NewPrompter(answers("", "value", "", "", "YES", "maybe"), &out)

	value, err := p.Ask("Base URL", "https://default")
	require.NoError(t, err)
	assert.Equal(t, "https://default", value)

	value, err = p.AskRequired("Client ID")
	require.NoError(t, err)
	assert.Equal(t, "value", value)

	confirmed, err := p.Confirm("Continue?", true)
	require.NoError(t, err)
	assert.True(t, confirmed)

	confirmed, err = p.Confirm("Continue?", false)
	require.NoError(t, err)
	assert.False(t, confirmed)

	confirmed, err = p.Confirm("Continue?", false)
	require.NoError(t, err)
	assert.True(t, confirmed)

	confirmed, err = p.Confirm("Continue?", true)
	require.NoError(t, err)
	assert.False(t, confirmed)

	// Input is exhausted: defaults apply.
	value, err = p.Ask("Scopes", "")
	require.NoError(t, err)
	assert.Empty(t, value)

	confirmed, err = p.Confirm("Continue?", true)
	require.NoError(t, err)
	assert.True(t, confirmed)

	assert.Contains(t, out.String(), "Base URL [https://default]: ")
	assert.Contains(t, out.String(), "Continue? [y/N]: ")
}

func TestConfirmDeletion(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, confirmDeletion(strings.NewReader(""), &out, true, "Delete?"))
	assert.Empty(t, out.String())

	require.NoError(t, confirmDeletion(answers("y"), &out, false, "Delete?"))
	require.Error(t, confirmDeletion(answers("n"), &out, false, "Delete?"))
	require.Error(t, confirmDeletion(strings.NewReader(""), &out, false, "Delete?"))
}
