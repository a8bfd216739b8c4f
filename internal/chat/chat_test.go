package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/lorebook/internal/model"
	"github.com/rcliao/lorebook/internal/store"
)

// exerciseSource runs the same contract checks against any Source.
func exerciseSource(t *testing.T, src Source, chatID string) {
	t.Helper()
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		require.NoError(t, src.Append(ctx, chatID, model.Message{Name: "n", Text: fmt.Sprintf("m%d", i)}))
	}

	msgs, err := src.Recent(ctx, chatID, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"m2", "m3", "m4"}, []string{msgs[0].Text, msgs[1].Text, msgs[2].Text})
	assert.False(t, msgs[0].SendDate.IsZero())

	msgs, err = src.Recent(ctx, chatID, 50)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)

	msgs, err = src.Recent(ctx, chatID, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, src.Clear(ctx, chatID))
	msgs, err = src.Recent(ctx, chatID, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSQLiteSource(t *testing.T) {
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	exerciseSource(t, s.ChatLog(), "c1")
}

func TestRedisSource(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	src, err := NewRedisSource(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	exerciseSource(t, src, "test-"+ulid.Make().String())
}

func TestNewRedisSourceRequiresURL(t *testing.T) {
	_, err := NewRedisSource(context.Background(), "")
	assert.Error(t, err)

	_, err = NewRedisSource(context.Background(), "not a url")
	assert.Error(t, err)
}
