package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientIsAlwaysAMiss(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)

	c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute)
	var out map[string]int
	assert.False(t, c.GetJSON(ctx, "k", &out))

	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	// Nothing listens on port 1, so every command fails fast with a dial error.
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestClient_RoundTripAgainstRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	type entry struct {
		Title string `json:"title"`
		Views int    `json:"views"`
	}
	c.SetJSON(ctx, "blogs:published", []entry{{Title: "Hello World", Views: 2}}, time.Minute)
	assert.True(t, mr.Exists("blogdesk:blogs:published"))

	var got []entry
	require.True(t, c.GetJSON(ctx, "blogs:published", &got))
	assert.Equal(t, []entry{{Title: "Hello World", Views: 2}}, got)

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.GetJSON(ctx, "blogs:published", &got))

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, c.Delete(ctx, "a", "b"))
	data, err := c.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.False(t, mr.Exists("blogdesk:b"))
}
