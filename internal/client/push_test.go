package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/gia/pkg/iga"
)

func newTestApplication(t *testing.T) *iga.DisconnectedApplication {
	t.Helper()

	csvPath := filepath.Join(t.TempDir(), "accounts.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("id,userName\n1,alice\n"), 0o600))

	app := iga.NewDisconnectedApplication("TestApp",
		iga.WithDescription("Pushed from tests"),
		iga.WithOwnerIDs("owner-1"),
	)

	_, err := app.AddObjectType("__ACCOUNT__", iga.ObjectKindAccount, map[string]interface{}{
		"userName": map[string]interface{}{"type": "string"},
	})
	require.NoError(t, err)

	_, err = app.AddFileUpload(csvPath, "__ACCOUNT__")
	require.NoError(t, err)

	return app
}

func TestPush_EndToEnd(t *testing.T) {
	t.Parallel()

	fake := newFakeIGA(t)
	apps := fake.newClient(t, 0).Applications()
	app := newTestApplication(t)

	result, err := app.Push(context.Background(), apps, false)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.callCount("create"))
	assert.Equal(t, 0, fake.callCount("update"))
	assert.Equal(t, 1, fake.callCount("addObjectType"))
	assert.Equal(t, 1, fake.callCount("upload"))
	assert.Equal(t, 1, fake.callCount("token"))

	assert.Equal(t, result.ApplicationResponse.String("id"), result.ApplicationID)
	assert.Contains(t, result.ObjectTypeResponses, "__ACCOUNT__")
	assert.Len(t, result.UploadResponses, 1)
	assert.Empty(t, result.Warnings)

	stored, exists := fake.application(result.ApplicationID)
	require.True(t, exists)
	assert.Equal(t, "disconnected", stored.String("datasourceId"))
	assert.Equal(t, false, stored["authoritative"])
}

func TestPush_ExistingApplication(t *testing.T) {
	t.Parallel()

	t.Run("conflict without upsert", func(t *testing.T) {
		t.Parallel()

		fake := newFakeIGA(t)
		existingID := fake.seedApplication("TestApp")
		apps := fake.newClient(t, 0).Applications()

		result, err := newTestApplication(t).Push(context.Background(), apps, false)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, iga.IsConfigurationError(err))
		require.ErrorIs(t, err, iga.ErrApplicationExists)
		assert.Contains(t, err.Error(), existingID)

		assert.Equal(t, 0, fake.callCount("create"))
		assert.Equal(t, 0, fake.callCount("update"))
		assert.Equal(t, 0, fake.callCount("upload"))
	})

	t.Run("upsert updates and reconciles", func(t *testing.T) {
		t.Parallel()

		fake := newFakeIGA(t)
		apps := fake.newClient(t, 0).Applications()

		first, err := newTestApplication(t).Push(context.Background(), apps, false)
		require.NoError(t, err)

		second, err := newTestApplication(t).Push(context.Background(), apps, true)
		require.NoError(t, err)

		assert.Equal(t, first.ApplicationID, second.ApplicationID)
		assert.Equal(t, 1, fake.callCount("create"))
		assert.Equal(t, 1, fake.callCount("update"))
		assert.Equal(t, 1, fake.callCount("addObjectType"))
		assert.Equal(t, 1, fake.callCount("updateObjectType"))
		assert.Equal(t, 2, fake.callCount("upload"))
		require.Len(t, second.Warnings, 1)
		assert.Equal(t, first.ApplicationID, second.Warnings[0].ApplicationID)
	})

	t.Run("push to a known id", func(t *testing.T) {
		t.Parallel()

		fake := newFakeIGA(t)
		id := fake.seedApplication("Old name")
		apps := fake.newClient(t, 0).Applications()

		result, err := newTestApplication(t).PushTo(context.Background(), apps, id)
		require.NoError(t, err)

		assert.Equal(t, id, result.ApplicationID)
		stored, _ := fake.application(id)
		assert.Equal(t, "TestApp", stored.String("name"))
		assert.Equal(t, 0, fake.callCount("list"))
		assert.Equal(t, 1, fake.callCount("addObjectType"))
	})
}

func TestPush_UploadFailureAborts(t *testing.T) {
	t.Parallel()

	fake := newFakeIGA(t)
	apps := fake.newClient(t, 0).Applications()

	app := newTestApplication(t)
	_, err := app.AddObjectType("__RESOURCE__", iga.ObjectKindResource, nil)
	require.NoError(t, err)

	_, err = app.AddFileUpload(filepath.Join(t.TempDir(), "missing.csv"), "__RESOURCE__")
	require.NoError(t, err)

	_, err = app.AddFileUpload(filepath.Join(t.TempDir(), "never.csv"), "__ACCOUNT__")
	require.NoError(t, err)

	result, err := app.Push(context.Background(), apps, false)
	require.Error(t, err)
	assert.Nil(t, result)

	assert.Equal(t, 1, fake.callCount("create"))
	assert.Equal(t, 2, fake.callCount("addObjectType"))
	assert.Equal(t, 1, fake.callCount("upload"))
	assert.Equal(t, 1, fake.applicationCount())
}
