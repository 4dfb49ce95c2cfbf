package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"
)

func TestSetGetDelete(t *testing.T) {
	gokeyring.MockInit()

	_, err := Get()
	assert.True(t, IsNotFound(err))

	require.NoError(t, Set("s3cret"))
	token, err := Get()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", token)

	require.NoError(t, Delete())
	_, err = Get()
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, ErrNotFound)
}
