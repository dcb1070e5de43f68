package s3

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectorcore/internal/blob/core"
	"inspectorcore/internal/infra/blob/blobtest"
)

func TestContract(t *testing.T) {
	s, err := NewMock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inspector-test", s.Bucket())
	assert.Equal(t, core.DriverS3, s.Driver())
	blobtest.RunContract(t, s)
}

func TestListFollowsContinuation(t *testing.T) {
	ctx := context.Background()
	s, err := NewMock(ctx)
	require.NoError(t, err)
	for i := range 5 {
		_, err := s.Put(ctx, fmt.Sprintf("img/%d.png", i), bytes.NewReader([]byte{byte(i)}), core.PutOptions{})
		require.NoError(t, err)
	}
	infos, err := s.List(ctx, "img/")
	require.NoError(t, err)
	require.Len(t, infos, 5)
	assert.Equal(t, "img/0.png", infos[0].Key)
	assert.Equal(t, "img/4.png", infos[4].Key)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
