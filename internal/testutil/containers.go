// Package testutil provides shared test infrastructure for container-backed stores.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ContainerTestsEnv must be set to a non-empty value to run container tests.
const ContainerTestsEnv = "MOVERWATCH_CONTAINER_TESTS"

// RequireContainers skips t unless container tests are enabled.
func RequireContainers(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if os.Getenv(ContainerTestsEnv) == "" {
		t.Skipf("skipping container test: set %s=1 to enable", ContainerTestsEnv)
	}
}

// Container wraps a started testcontainers instance with its mapped endpoint.
type Container struct {
	container testcontainers.Container
	host      string
	port      string
}

// Host returns the mapped host.
func (c *Container) Host() string { return c.host }

// Port returns the mapped port.
func (c *Container) Port() string { return c.port }

// Cleanup terminates the container. Call from TestMain if needed.
func (c *Container) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}

var (
	surrealOnce      sync.Once
	surrealContainer *Container
	surrealError     error

	redisOnce      sync.Once
	redisContainer *Container
	redisError     error
)

// StartSurrealDB starts a shared SurrealDB container for the test run.
// Uses sync.Once so only one container is created per process.
func StartSurrealDB(t *testing.T) *Container {
	t.Helper()
	RequireContainers(t)

	surrealOnce.Do(func() {
		surrealContainer, surrealError = start(testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--user", "root", "--pass", "root"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("8000/tcp"),
				wait.ForLog("Started web server"),
			).WithDeadline(60 * time.Second),
		}, func(ctx context.Context, c testcontainers.Container) (string, error) {
			p, err := c.MappedPort(ctx, "8000/tcp")
			return p.Port(), err
		})
	})

	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}
	return surrealContainer
}

// SurrealAddress returns the WebSocket RPC address for a SurrealDB container.
func (c *Container) SurrealAddress() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.host, c.port)
}

// StartRedis starts a shared Redis container for the test run.
func StartRedis(t *testing.T) *Container {
	t.Helper()
	RequireContainers(t)

	redisOnce.Do(func() {
		redisContainer, redisError = start(testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("6379/tcp"),
				wait.ForLog("Ready to accept connections"),
			).WithDeadline(60 * time.Second),
		}, func(ctx context.Context, c testcontainers.Container) (string, error) {
			p, err := c.MappedPort(ctx, "6379/tcp")
			return p.Port(), err
		})
	})

	if redisError != nil {
		t.Fatalf("Redis container failed: %v", redisError)
	}
	return redisContainer
}

// Address returns host:port for the container.
func (c *Container) Address() string {
	return fmt.Sprintf("%s:%s", c.host, c.port)
}

func start(req testcontainers.ContainerRequest, mappedPort func(context.Context, testcontainers.Container) (string, error)) (*Container, error) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s container: %w", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get %s host: %w", req.Image, err)
	}

	port, err := mappedPort(ctx, container)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get %s port: %w", req.Image, err)
	}

	return &Container{
		container: container,
		host:      host,
		port:      port,
	}, nil
}
