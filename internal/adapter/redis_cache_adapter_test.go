package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"wikiquiz/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheAdapter_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(db)

	mock.ExpectGet("wikiquiz:quiz:payload:abc").SetVal(`{"quiz":[]}`)

	val, err := cacheAdapter.Get(context.Background(), "wikiquiz:quiz:payload:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"quiz":[]}`, val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(db)

	mock.ExpectGet("missing").RedisNil()

	_, err := cacheAdapter.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(db)

	bang := errors.New("connection reset")
	mock.ExpectGet("key").SetErr(bang)

	_, err := cacheAdapter.Get(context.Background(), "key")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCacheAdapter_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(db)

	mock.ExpectSet("key", "value", 6*time.Hour).SetVal("OK")

	err := cacheAdapter.Set(context.Background(), "key", "value", 6*time.Hour)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(db)

	mock.ExpectDel("key").SetVal(1)

	err := cacheAdapter.Delete(context.Background(), "key")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cacheAdapter := NewRedisCacheAdapter(db)

	mock.ExpectPing().SetVal("PONG")

	assert.NoError(t, cacheAdapter.Ping(context.Background()))
}
