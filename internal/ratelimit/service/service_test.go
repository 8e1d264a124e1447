package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"people/internal/ratelimit/models"
	"people/internal/ratelimit/store/bucket"
)

func TestCheckIP(t *testing.T) {
	ctx := context.Background()
	svc := New(bucket.NewInMemoryBucketStore(),
		WithLimit(models.ClassWrite, models.Limit{Requests: 1, Window: time.Minute}),
	)

	t.Run("write budget is per ip", func(t *testing.T) {
		res, err := svc.CheckIP(ctx, "10.0.0.1", models.ClassWrite)
		require.NoError(t, err)
		assert.True(t, res.Allowed)

		res, err = svc.CheckIP(ctx, "10.0.0.1", models.ClassWrite)
		require.NoError(t, err)
		assert.False(t, res.Allowed)

		res, err = svc.CheckIP(ctx, "10.0.0.2", models.ClassWrite)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("classes do not share a window", func(t *testing.T) {
		res, err := svc.CheckIP(ctx, "10.0.0.1", models.ClassRead)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 300, res.Limit)
	})

	t.Run("reset clears one class", func(t *testing.T) {
		require.NoError(t, svc.ResetIP(ctx, "10.0.0.1", models.ClassWrite))
		res, err := svc.CheckIP(ctx, "10.0.0.1", models.ClassWrite)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := svc.CheckIP(ctx, "10.0.0.1", models.EndpointClass("admin"))
		assert.Error(t, err)
	})
}
