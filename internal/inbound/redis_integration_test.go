//go:build integration

package inbound_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"staff-absence-backend/internal/inbound"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

// RedisDeduplicatorTestSuite runs the deduplicator against a real Redis
type RedisDeduplicatorTestSuite struct {
	suite.Suite
	pool     *dockertest.Pool
	resource *dockertest.Resource
	client   *redis.Client
}

func (suite *RedisDeduplicatorTestSuite) SetupSuite() {
	pool, err := dockertest.NewPool("")
	suite.Require().NoError(err, "could not connect to docker")
	suite.pool = pool

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	suite.Require().NoError(err, "could not start redis")
	suite.resource = resource

	addr := fmt.Sprintf("127.0.0.1:%s", resource.GetPort("6379/tcp"))
	pool.MaxWait = 2 * time.Minute
	suite.Require().NoError(pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			return err
		}
		suite.client = client
		return nil
	}))
}

func (suite *RedisDeduplicatorTestSuite) TearDownSuite() {
	if suite.client != nil {
		_ = suite.client.Close()
	}
	if suite.pool != nil && suite.resource != nil {
		_ = suite.pool.Purge(suite.resource)
	}
}

func (suite *RedisDeduplicatorTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.FlushDB(context.Background()).Err())
}

func (suite *RedisDeduplicatorTestSuite) TestSeenAndForget() {
	ctx := context.Background()
	d := inbound.NewRedisDeduplicator(suite.client, "test:event:", time.Minute)

	seen, err := d.Seen(ctx, "ev-1")
	suite.NoError(err)
	suite.False(seen)

	seen, err = d.Seen(ctx, "ev-1")
	suite.NoError(err)
	suite.True(seen)

	ttl, err := suite.client.TTL(ctx, "test:event:ev-1").Result()
	suite.NoError(err)
	suite.Greater(ttl, time.Duration(0))

	suite.NoError(d.Forget(ctx, "ev-1"))
	seen, err = d.Seen(ctx, "ev-1")
	suite.NoError(err)
	suite.False(seen)
}

func (suite *RedisDeduplicatorTestSuite) TestSharedBetweenInstances() {
	ctx := context.Background()
	first := inbound.NewRedisDeduplicator(suite.client, "", 0)
	second := inbound.NewRedisDeduplicator(suite.client, "", 0)

	seen, err := first.Seen(ctx, "ev-2")
	suite.NoError(err)
	suite.False(seen)

	seen, err = second.Seen(ctx, "ev-2")
	suite.NoError(err)
	suite.True(seen)
}

func TestRedisDeduplicatorTestSuite(t *testing.T) {
	suite.Run(t, new(RedisDeduplicatorTestSuite))
}
