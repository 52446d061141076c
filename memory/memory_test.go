package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/sift/models"
)

func sampleSet() FieldSet {
	return FieldSet{
		{
			ID:         "f1",
			Name:       "Product Name",
			Type:       models.TypeTitle,
			Selectors:  []models.Selector{models.Scoped(`[class*="product"]`, "h2")},
			Elements:   4,
			SampleData: []string{"Lamp", "Desk"},
			Confidence: 92,
			Selected:   true,
		},
		{
			Name:       "Email Address",
			Type:       models.TypeEmail,
			Selectors:  []models.Selector{models.SemanticPattern(models.TypeEmail)},
			Elements:   2,
			Confidence: 75,
		},
	}
}

func TestLocal_GetMiss(t *testing.T) {
	s := NewLocal()
	fields, ok, err := s.Get(context.Background(), "example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, fields)
}

func TestLocal_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewLocal()

	require.NoError(t, s.Put(ctx, "example.com", sampleSet()))
	require.NoError(t, s.Put(ctx, "example.com", sampleSet()[:1]))

	fields, ok, err := s.Get(ctx, "example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, fields, 1)
	assert.Equal(t, 1, s.Len())
}

func TestLocal_ReturnedSetIsIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewLocal()
	require.NoError(t, s.Put(ctx, "example.com", sampleSet()))

	fields, _, _ := s.Get(ctx, "example.com")
	fields[0].Confidence = 1
	fields[0].SampleData[0] = "changed"

	again, _, _ := s.Get(ctx, "example.com")
	assert.Equal(t, 92, again[0].Confidence)
	assert.Equal(t, "Lamp", again[0].SampleData[0])
}

func TestLocal_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	s := NewLocal()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Put(ctx, "example.com", sampleSet())
			_, _, _ = s.Get(ctx, "example.com")
		}()
	}
	wg.Wait()

	fields, ok, err := s.Get(ctx, "example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, fields, 2)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)
	s := NewRedisStore(client, "", 0)

	_, ok, err := s.Get(ctx, "example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "example.com", sampleSet()))

	fields, ok, err := s.Get(ctx, "example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, "Product Name", fields[0].Name)
	assert.Equal(t, `[class*="product"] h2`, fields[0].Selectors[0].String())
	assert.True(t, fields[1].Selectors[0].IsSemantic())
	assert.Equal(t, models.TypeEmail, fields[1].Selectors[0].Pattern)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	s := NewRedisStore(client, "test:", time.Minute)

	require.NoError(t, s.Put(ctx, "example.com", sampleSet()))
	assert.True(t, mr.Exists("test:example.com"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := s.Get(ctx, "example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	s := NewRedisStore(client, "", 0)

	require.NoError(t, mr.Set(defaultKeyPrefix+"example.com", "not json"))
	_, ok, err := s.Get(ctx, "example.com")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr, client := newRedis(t)
	s := NewRedisStore(client, "", 0)
	mr.Close()

	_, _, err := s.Get(context.Background(), "example.com")
	assert.Error(t, err)
}
