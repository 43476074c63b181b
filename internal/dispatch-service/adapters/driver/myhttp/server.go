package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"instantfix/internal/config"
	"instantfix/internal/dispatch-service/adapters/driven/bm"
	"instantfix/internal/dispatch-service/adapters/driven/cache"
	"instantfix/internal/dispatch-service/adapters/driven/db"
	"instantfix/internal/dispatch-service/adapters/driven/fanout"
	"instantfix/internal/dispatch-service/adapters/driver/myhttp/handle"
	"instantfix/internal/dispatch-service/adapters/driver/myhttp/middleware"
	"instantfix/internal/dispatch-service/adapters/driver/myhttp/ws"
	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/dispatch-service/core/services"
	"instantfix/internal/mylogger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const WaitTime = 10

type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	srv    *http.Server
	mylog  mylogger.Logger
	db     *db.DB
	mb     ports.IEventBroker
	rdb    *cache.RedisClient
	ctx    context.Context
	appCtx context.Context
	mu     sync.Mutex
	wg     sync.WaitGroup
}

func NewServer(ctx, appCtx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	return &Server{
		ctx:    ctx,
		appCtx: appCtx,
		cfg:    cfg,
		mylog:  mylog,
		mux:    http.NewServeMux(),
	}
}

// Run connects the infrastructure, wires routes and starts listening.
// It returns when the server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	database, err := db.New(s.ctx, s.cfg.DB, mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = database
	mylog.Info("Successful database connection")

	mb, err := bm.New(s.appCtx, *s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	s.mb = mb
	mylog.Info("Successful message broker connection")

	s.rdb = cache.New(s.cfg.Redis)
	if err := s.rdb.Ping(s.ctx); err != nil {
		// the limiter degrades to open; intake still works
		mylog.Warn("redis unavailable, rate limiting disabled", "error", err.Error())
	} else {
		mylog.Info("Successful redis connection")
	}

	if err := s.Configure(); err != nil {
		return fmt.Errorf("failed to configure server: %w", err)
	}

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.DispatchServicePort),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.DispatchServicePort)

	mylog.Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("Shutting down HTTP server...")

	s.wg.Wait()

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			s.mylog.Error("Failed to close message broker", err)
		}
	}

	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.mylog.Error("Failed to close redis", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.mylog.Error("Failed to close database", err)
			return fmt.Errorf("db close: %w", err)
		}
		s.mylog.Info("Database closed")
	}

	s.mylog.Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Configure builds the repo / service / handler graph and registers routes.
func (s *Server) Configure() error {
	// Repositories
	requestRepo := db.NewRequestRepo(s.db)
	workerRepo := db.NewWorkerRepo(s.db)
	notificationRepo := db.NewNotificationRepo(s.db)

	// Services
	dispatchService := services.NewDispatchService(s.appCtx, s.mylog, requestRepo, workerRepo, notificationRepo, s.mb)
	matchService := services.NewMatchService(s.appCtx, s.mylog, requestRepo, workerRepo,
		s.cfg.Dispatch.MaxDistanceMeters, s.cfg.Dispatch.PageLimit)
	workerService := services.NewWorkerService(s.appCtx, s.mylog, workerRepo)
	notificationService := services.NewNotificationService(s.appCtx, s.mylog, notificationRepo, s.cfg.Dispatch.PageLimit)

	// Handlers
	requestHandler := handle.NewRequestHandler(dispatchService, s.mylog)
	dispatchHandler := handle.NewDispatchHandler(dispatchService, matchService, s.mylog)
	workerHandler := handle.NewWorkerHandler(workerService, s.mylog)
	notificationHandler := handle.NewNotificationHandler(notificationService, s.mylog)

	auth := middleware.NewAuthMiddleware(s.cfg.App.JwtSecret)
	createLimiter := middleware.NewRateLimiter(s.rdb.Client, s.mylog, "rl:create",
		s.cfg.Dispatch.CreateLimit, time.Duration(s.cfg.Dispatch.CreateWindowSeconds)*time.Second)

	// Live delivery: broker -> fanout worker -> websocket hub
	dispatcher := ws.NewDispatcher(s.mylog)
	fan := fanout.New(s.appCtx, &s.wg, s.mylog, dispatcher, s.mb)
	if err := fan.Run(); err != nil {
		return fmt.Errorf("start fanout worker: %w", err)
	}

	// Customer surface
	s.mux.Handle("POST /requests",
		auth.Wrap(createLimiter.Wrap(requestHandler.CreateRequest()), model.RoleCustomer))
	s.mux.Handle("GET /requests", auth.Wrap(requestHandler.ListMyRequests(), model.RoleCustomer))
	s.mux.Handle("GET /requests/{request_id}", auth.Wrap(requestHandler.GetRequest()))
	s.mux.Handle("POST /requests/{request_id}/cancel",
		auth.Wrap(requestHandler.CancelRequest(), model.RoleCustomer))

	// Worker surface
	s.mux.Handle("GET /worker/requests/nearby", auth.Wrap(dispatchHandler.NearbyRequests(), model.RoleElectrician))
	s.mux.Handle("GET /worker/requests/assigned", auth.Wrap(dispatchHandler.ListAssigned(), model.RoleElectrician))
	s.mux.Handle("GET /worker/requests/completed", auth.Wrap(dispatchHandler.ListCompleted(), model.RoleElectrician))
	s.mux.Handle("POST /worker/requests/{request_id}/accept",
		auth.Wrap(dispatchHandler.AcceptRequest(), model.RoleElectrician))
	s.mux.Handle("POST /worker/requests/{request_id}/reject",
		auth.Wrap(dispatchHandler.RejectRequest(), model.RoleElectrician))
	s.mux.Handle("POST /worker/requests/{request_id}/start",
		auth.Wrap(dispatchHandler.StartRequest(), model.RoleElectrician))
	s.mux.Handle("POST /worker/requests/{request_id}/complete",
		auth.Wrap(dispatchHandler.CompleteRequest(), model.RoleElectrician))

	// Worker profile
	s.mux.Handle("PUT /worker/location", auth.Wrap(workerHandler.SetLocation(), model.RoleElectrician))
	s.mux.Handle("PUT /worker/availability", auth.Wrap(workerHandler.SetAvailability(), model.RoleElectrician))

	// Notifications
	s.mux.Handle("GET /notifications", auth.Wrap(notificationHandler.ListNotifications()))
	s.mux.Handle("POST /notifications/{notification_id}/read", auth.Wrap(notificationHandler.MarkRead()))
	s.mux.Handle("DELETE /notifications/{notification_id}", auth.Wrap(notificationHandler.DeleteNotification()))

	// Live updates
	s.mux.Handle("GET /ws/users/{user_id}", auth.Wrap(dispatcher.WsHandler()))

	// Operational
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /health", s.healthHandler)

	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.IsAlive(); err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
