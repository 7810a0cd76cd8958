// Package integration_testing runs the whole service against a redis started
// in docker.
package integration_testing

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/2beens/fitnesstracker/internal"
	"github.com/2beens/fitnesstracker/internal/config"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverHost  = "127.0.0.1"
	serverPort  = 9000
	metricsPort = "9001"

	checkinRateLimit = 20
	cacheVersion     = "fitness-tracker-it-v1"
)

var serverEndpoint = "http://" + net.JoinHostPort(serverHost, strconv.Itoa(serverPort))

// Env is a running service with its redis and app shell origin.
type Env struct {
	Redis    *redis.Client
	Origin   *httptest.Server
	server   *internal.Server
	pool     *dockertest.Pool
	teardown []func()
}

func newEnv(ctx context.Context) (_ *Env, err error) {
	env := &Env{}
	defer func() {
		if err != nil {
			env.Cleanup()
		}
	}()

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	env.pool, err = dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not create new dockertest pool: %w", err)
	}

	// uses pool to try to connect to Docker
	if err = env.pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping dockertest pool: %w", err)
	}

	redisPort, err := env.redisSetup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup redis: %w", err)
	}

	env.Origin = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprintf(w, "app shell %s", r.URL.Path)
	}))
	env.teardown = append(env.teardown, env.Origin.Close)

	cfg := getTestConfig(redisPort, env.Origin.URL)
	env.server, err = internal.NewServer(ctx, internal.NewServerParams{
		Config:                  cfg,
		VersionInfo:             "test-version-info",
		HoneycombTracingEnabled: false,
	})
	if err != nil {
		return nil, fmt.Errorf("new server: %w", err)
	}

	env.server.Serve(ctx, cfg.Host, cfg.Port)
	return env, nil
}

func (env *Env) Cleanup() {
	if env.server != nil {
		env.server.GracefulShutdown()
	}
	if env.Redis != nil {
		_ = env.Redis.Close()
	}
	for i := len(env.teardown) - 1; i >= 0; i-- {
		env.teardown[i]()
	}
}

func (env *Env) redisSetup(ctx context.Context) (string, error) {
	redisResource, err := env.pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %w", err)
	}

	env.teardown = append(env.teardown, func() {
		if err := redisResource.Close(); err != nil {
			fmt.Printf("redis teardown: %s\n", err)
		}
	})

	redisPort := redisResource.GetPort("6379/tcp")
	env.Redis = redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort("localhost", redisPort),
	})

	env.pool.MaxWait = time.Minute
	if err := env.pool.Retry(func() error {
		return env.Redis.Ping(ctx).Err()
	}); err != nil {
		return "", fmt.Errorf("wait for redis: %w", err)
	}
	return redisPort, nil
}

func getTestConfig(redisPort, originURL string) *config.Config {
	return &config.Config{
		Environment:           "development",
		Host:                  serverHost,
		Port:                  serverPort,
		LogLevel:              "debug",
		PrometheusMetricsHost: serverHost,
		PrometheusMetricsPort: metricsPort,
		StorageBackend:        "redis",
		RedisHost:             "localhost",
		RedisPort:             redisPort,
		FlushInterval:         config.Duration{Duration: time.Second},
		MorningReminderTime:   "05:45",
		EveningPrepTime:       "21:00",
		CheckinRateLimit:      checkinRateLimit,
		CacheVersion:          cacheVersion,
		CacheBackend:          "redis",
		AppShellOrigin:        originURL,
		AppShellManifest:      []string{"/", "/index.html", "/app.js"},
		AdvisoryProvider:      "static",
	}
}
