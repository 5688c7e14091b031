package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendapos/backend/internal/store/memory"
)

func TestLabelService_RenderLabel(t *testing.T) {
	ctx := context.Background()

	t.Run("renders a PNG without redis", func(t *testing.T) {
		s := memory.New()
		seedProduct(t, s, "p1", "Milk", "10.00", 5)
		svc := NewLabelService(s, nil)

		label, err := svc.RenderLabel(ctx, "p1")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(label)
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(raw[:4]))
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := NewLabelService(memory.New(), nil)
		_, err := svc.RenderLabel(ctx, "ghost")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("cache hit skips rendering", func(t *testing.T) {
		s := memory.New()
		seedProduct(t, s, "p1", "Milk", "10.00", 5)

		db, mock := redismock.NewClientMock()
		key := fmt.Sprintf("label:%s:%d", "p1", 1)
		mock.ExpectGet(key).SetVal("cached-label")

		svc := NewLabelService(s, db)
		label, err := svc.RenderLabel(ctx, "p1")
		assert.NoError(t, err)
		assert.Equal(t, "cached-label", label)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss renders and stores", func(t *testing.T) {
		s := memory.New()
		seedProduct(t, s, "p1", "Milk", "10.00", 5)

		db, mock := redismock.NewClientMock()
		key := fmt.Sprintf("label:%s:%d", "p1", 1)
		mock.ExpectGet(key).RedisNil()
		mock.Regexp().ExpectSet(key, `.+`, time.Hour).SetVal("OK")

		svc := NewLabelService(s, db)
		label, err := svc.RenderLabel(ctx, "p1")
		assert.NoError(t, err)
		assert.NotEmpty(t, label)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
