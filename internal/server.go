package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/2beens/fitnesstracker/internal/advisory"
	"github.com/2beens/fitnesstracker/internal/config"
	"github.com/2beens/fitnesstracker/internal/middleware"
	"github.com/2beens/fitnesstracker/internal/offline"
	"github.com/2beens/fitnesstracker/internal/progress"
	"github.com/2beens/fitnesstracker/internal/progress/storage"
	"github.com/2beens/fitnesstracker/internal/scheduler"
	"github.com/2beens/fitnesstracker/internal/telemetry/metrics"
	"github.com/2beens/fitnesstracker/internal/telemetry/tracing"
	"github.com/2beens/fitnesstracker/internal/tracker"
	"github.com/2beens/fitnesstracker/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config        *config.Config
	store         *progress.Store
	storageCloser io.Closer
	storageLease  storage.Leaser
	leaseOwner    string
	leaseTTL      time.Duration
	advisor       advisory.Advisor
	notifier      *offline.LogNotifier
	offlineApp    *offline.Controller
	initialCache  *offline.Manager
	scheduler     *scheduler.Scheduler

	redisClient *redis.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	OpenWeatherApiKey       string
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
	// LeaseOwner names this instance on the progress storage lease,
	// defaults to service@<hostname>.
	LeaseOwner string
}

// slotStorage is a progress storage the service can lease.
type slotStorage interface {
	progress.SlotStorage
	storage.Leaser
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("tracker", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	var rdb *redis.Client
	if needsRedis(cfg) {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fitness-tracker", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}

	slots, storageCloser, err := newSlotStorage(ctx, cfg, rdb)
	if err != nil {
		otelShutdown()
		return nil, err
	}

	leaseOwner := params.LeaseOwner
	if leaseOwner == "" {
		leaseOwner = defaultLeaseOwner()
	}
	leaseTTL := storageLeaseTTL(cfg.FlushInterval.Duration)
	if err := acquireStorageLease(ctx, slots, leaseOwner, leaseTTL); err != nil {
		closeStorage(storageCloser)
		otelShutdown()
		return nil, err
	}

	store := progress.Load(ctx, slots, progress.WithMetrics(metricsManager))
	log.Infof("progress loaded: week %d, started %s", store.CurrentWeek(), store.Snapshot().StartDate)

	notifier := offline.NewLogNotifier(0, metricsManager)

	var cacheStorage offline.CacheStorage
	switch cfg.CacheBackend {
	case "redis":
		cacheStorage = offline.NewRedisStorage(rdb, offline.DefaultRedisKeyPrefix)
	default:
		cacheStorage = offline.NewMemoryStorage(cfg.CacheMemorySizeMB)
	}

	cacheManager, err := offline.NewManager(offline.ManagerParams{
		Version:        cfg.CacheVersion,
		Origin:         cfg.AppShellOrigin,
		Manifest:       cfg.AppShellManifest,
		Storage:        cacheStorage,
		Notifier:       notifier,
		HTTPClient:     tracedHttpClient,
		MetricsManager: metricsManager,
	})
	if err != nil {
		releaseStorageLease(ctx, slots, leaseOwner)
		closeStorage(storageCloser)
		otelShutdown()
		return nil, fmt.Errorf("new offline cache manager: %w", err)
	}

	return &Server{
		versionInfo: params.VersionInfo,

		config:        cfg,
		store:         store,
		storageCloser: storageCloser,
		storageLease:  slots,
		leaseOwner:    leaseOwner,
		leaseTTL:      leaseTTL,
		advisor:       newAdvisor(cfg, params.OpenWeatherApiKey, tracedHttpClient),
		notifier:      notifier,
		offlineApp:    offline.NewController(cacheManager),
		initialCache:  cacheManager,
		scheduler:     scheduler.New(),

		redisClient: rdb,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func needsRedis(cfg *config.Config) bool {
	return cfg.StorageBackend == "redis" ||
		cfg.CacheBackend == "redis" ||
		cfg.CheckinRateLimit > 0
}

func newSlotStorage(ctx context.Context, cfg *config.Config, rdb *redis.Client) (slotStorage, io.Closer, error) {
	switch cfg.StorageBackend {
	case "redis":
		log.Debugf("progress slots stored in redis [%s]", net.JoinHostPort(cfg.RedisHost, cfg.RedisPort))
		// the redis client is closed on its own
		return storage.NewRedis(rdb, storage.DefaultRedisKeyPrefix), nil, nil
	default:
		sqliteStorage, err := storage.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		log.Debugf("progress slots stored in sqlite [%s]", cfg.SQLitePath)
		return sqliteStorage, sqliteStorage, nil
	}
}

func defaultLeaseOwner() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return "service@" + hostname
}

// storageLeaseTTL outlives a few missed flush runs.
func storageLeaseTTL(flushInterval time.Duration) time.Duration {
	return max(3*flushInterval, 30*time.Second)
}

func acquireStorageLease(ctx context.Context, leaser storage.Leaser, owner string, ttl time.Duration) error {
	acquired, err := leaser.AcquireLease(ctx, storage.ServiceLease, owner, ttl)
	if err != nil {
		return fmt.Errorf("acquire progress storage lease: %w", err)
	}
	if !acquired {
		holder, _, _ := leaser.LeaseHolder(ctx, storage.ServiceLease)
		return fmt.Errorf("progress storage is leased by [%s]", holder)
	}
	log.Debugf("progress storage leased by [%s] for %s", owner, ttl)
	return nil
}

func releaseStorageLease(ctx context.Context, leaser storage.Leaser, owner string) {
	if err := leaser.ReleaseLease(ctx, storage.ServiceLease, owner); err != nil {
		log.Errorf("release progress storage lease: %s", err)
	}
}

func closeStorage(closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		log.Errorf("failed to close progress storage: %s", err)
	}
}

func newAdvisor(cfg *config.Config, openWeatherApiKey string, httpClient *http.Client) advisory.Advisor {
	switch cfg.AdvisoryProvider {
	case "openweather":
		if openWeatherApiKey == "" {
			log.Errorf("open weather advisory configured without API key, falling back to static advice")
			return advisory.NewStatic()
		}
		return advisory.NewOpenWeather(cfg.OpenWeatherURL, openWeatherApiKey, cfg.WeatherCityID, httpClient)
	case "random":
		return advisory.NewRandom(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)), advisory.DefaultRandomChance)
	default:
		return advisory.NewStatic()
	}
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("tracker-router"))

	r.HandleFunc("/", s.handleRoot).Methods("GET", "OPTIONS").Name("root")
	r.HandleFunc("/version", s.handleVersion).Methods("GET", "OPTIONS").Name("version")

	// the app shell is served through the offline cache
	r.PathPrefix("/app/").Handler(http.StripPrefix("/app", s.offlineApp)).Name("app-shell")

	var rateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		rateLimiter = redis_rate.NewLimiter(s.redisClient)
	}

	trackerHandler := tracker.NewHandler(tracker.NewHandlerParams{
		Store:         s.store,
		Advisor:       s.advisor,
		Offline:       s.offlineApp,
		Notifications: s.notifier,
	})
	trackerHandler.SetupRoutes(r, rateLimiter, s.metricsManager, s.config.CheckinRateLimit)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowLocalhost, s.config.AppShellOrigin))
	r.Use(middleware.DrainAndCloseRequest(tracker.MaxRequestBodySize))

	return r, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponse(w, pkg.ContentType.Text, "I'm OK, thanks ;)", http.StatusOK)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponse(w, pkg.ContentType.Text, s.versionInfo, http.StatusOK)
}

func (s *Server) schedulerSetup() error {
	morningReminder, err := scheduler.ParseDailyAt(s.config.MorningReminderTime, time.Local)
	if err != nil {
		return err
	}
	eveningPrep, err := scheduler.ParseDailyAt(s.config.EveningPrepTime, time.Local)
	if err != nil {
		return err
	}

	tasks := []struct {
		name     string
		schedule scheduler.Schedule
		run      scheduler.TaskFunc
	}{
		{"flush", scheduler.Every(s.config.FlushInterval.Duration), s.flushTask},
		{"morning-greeting", scheduler.Every(time.Minute), s.morningGreetingTask},
		{"morning-reminder", morningReminder, func(ctx context.Context) error {
			_, err := s.offlineApp.HandlePeriodicSync(ctx, offline.SyncTagMorningReminder)
			return err
		}},
		{"evening-prep", eveningPrep, s.offlineApp.ShowEveningPrep},
		{"week-progression", scheduler.DailyAt{Hour: 7, Location: time.Local}, s.weekProgressionTask},
		{"cache-activate", scheduler.Every(time.Minute), s.offlineApp.ActivatePending},
	}
	for _, t := range tasks {
		if err := s.scheduler.Add(t.name, t.schedule, t.run); err != nil {
			return fmt.Errorf("add task: %w", err)
		}
	}
	return nil
}

func (s *Server) flushTask(ctx context.Context) error {
	// the lease is renewed even when there is nothing to flush
	if err := acquireStorageLease(ctx, s.storageLease, s.leaseOwner, s.leaseTTL); err != nil {
		s.metricsManager.CounterFlushFailures.Inc()
		return err
	}
	// failures are logged and counted by the store, the next run retries
	_ = s.store.Flush(ctx)
	return nil
}

func (s *Server) morningGreetingTask(ctx context.Context) error {
	if !s.store.MarkMorningGreeting(time.Now()) {
		return nil
	}
	return s.notifier.Show(ctx, offline.MorningGreeting)
}

func (s *Server) weekProgressionTask(ctx context.Context) error {
	if !s.store.CheckWeekProgression(s.store.Today()) {
		return nil
	}
	return s.notifier.Show(ctx, offline.WeekProgression(s.store.CurrentWeek()))
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	if err := s.schedulerSetup(); err != nil {
		log.Fatalf("failed to setup scheduler: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	// until the install finishes the app shell goes straight to the origin
	go func() {
		if err := s.offlineApp.Deploy(ctx, s.initialCache); err != nil {
			log.Errorf("offline cache [%s] not deployed: %s", s.initialCache.Version(), err)
			return
		}
		log.Infof("offline cache [%s] active", s.initialCache.Version())
	}()

	if err := s.scheduler.Start(ctx); err != nil {
		log.Errorf("start scheduler: %s", err)
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.scheduler.Stop()
	log.Trace("scheduler stopped ...")

	if err := s.store.Flush(ctx); err != nil {
		log.Errorf("final progress flush: %s", err)
	}

	releaseStorageLease(ctx, s.storageLease, s.leaseOwner)
	closeStorage(s.storageCloser)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
