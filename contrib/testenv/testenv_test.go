package testenv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFake(t *testing.T) {
	t.Setenv(EnvAtomPubURL, "")

	env, err := New(context.Background())
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Server)
	assert.Equal(t, DefaultRepositoryID, env.RepositoryID)
	assert.True(t, env.Session.Links().HasRepository(DefaultRepositoryID))

	obj, err := env.Session.GetObjectByPath(context.Background(), env.RepositoryID, "/Sites/report.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, "report", obj.ID())
}

func TestNewUnreachable(t *testing.T) {
	t.Setenv(EnvAtomPubURL, "http://127.0.0.1:1/atom")

	_, err := New(context.Background())
	assert.Error(t, err)
}
