package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailkit/internal/model"
	"github.com/nhle/mailkit/tests/testutil"
)

func TestRecordAndListDispatches(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	older := model.Dispatch{
		Subject:    "first",
		FromAddr:   "jane@example.com",
		Recipients: []string{"bob@example.com"},
		Host:       "smtp.example.com",
		Status:     model.DispatchSent,
		SentAt:     time.Now().Add(-time.Hour),
	}
	newer := model.Dispatch{
		Subject:    "second",
		FromAddr:   "jane@example.com",
		Recipients: []string{"bob@example.com", "eve@example.com"},
		Host:       "smtp.example.com",
		Status:     model.DispatchFailed,
		Detail:     "SMTP auth: 535",
		SentAt:     time.Now(),
	}

	require.NoError(t, s.RecordDispatch(ctx, older))
	require.NoError(t, s.RecordDispatch(ctx, newer))

	dispatches, err := s.ListDispatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, dispatches, 2)

	// Newest first.
	assert.Equal(t, "second", dispatches[0].Subject)
	assert.Equal(t, "first", dispatches[1].Subject)

	assert.Equal(t, []string{"bob@example.com", "eve@example.com"}, dispatches[0].Recipients)
	assert.Equal(t, model.DispatchFailed, dispatches[0].Status)
	assert.Equal(t, "SMTP auth: 535", dispatches[0].Detail)
	assert.NotEmpty(t, dispatches[0].ID)
}

func TestListDispatchesLimit(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordDispatch(ctx, model.Dispatch{
			Subject:    "msg",
			FromAddr:   "jane@example.com",
			Recipients: []string{"bob@example.com"},
			Host:       "smtp.example.com",
			Status:     model.DispatchSent,
			SentAt:     time.Now().Add(time.Duration(i) * time.Minute),
		}))
	}

	dispatches, err := s.ListDispatches(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, dispatches, 3)
}
