package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/commercekit/shopchat/config"
	"github.com/commercekit/shopchat/internal/chat"
	"github.com/commercekit/shopchat/internal/knowledge"
	"github.com/commercekit/shopchat/internal/knowledge/docs"
	"github.com/commercekit/shopchat/internal/metrics"
	"github.com/commercekit/shopchat/internal/session"
	inmemory_session "github.com/commercekit/shopchat/internal/session/inmemory"
	redis_session "github.com/commercekit/shopchat/internal/session/redis"
	"github.com/commercekit/shopchat/internal/store"
	"github.com/commercekit/shopchat/provider"
	"github.com/commercekit/shopchat/provider/abacus"
)

// Run wires every dependency and starts the HTTP server
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })

	m := metrics.New()
	if cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	ctx := context.Background()

	// knowledge store (Postgres): wait for the database, then migrate
	st, err := store.Open(cfg.Storage.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("postgres open: %w", err)
	}
	if err := st.WaitReady(ctx, cfg.Storage.Postgres.Timeout); err != nil {
		return fmt.Errorf("postgres not ready: %w", err)
	}
	if err := Migrate("file://migrations", cfg.Storage.Postgres.DSN(), "up", 0); err != nil {
		log.Printf("migrate: %v (continuing, schema may already be current)", err)
	}

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}

	// LLM clients
	if err := cfg.LLM.Validate(); err != nil {
		return err
	}
	if err := cfg.Generation.Validate(); err != nil {
		return err
	}
	llm, err := provider.NewProvider(provider.Client(cfg.LLM.Provider), cfg.LLM)
	if err != nil {
		return err
	}
	gen := abacus.NewClient(cfg.Generation)

	// knowledge sources: one per store category plus the support docs index
	var sources []knowledge.Source
	for _, category := range cfg.Knowledge.Categories {
		sources = append(sources, knowledge.NewStoreSource(st, category))
	}
	if cfg.Knowledge.Docs.Enabled {
		docsSource, err := docs.NewSourceFromDir(cfg.Knowledge.Docs.Name, cfg.Knowledge.Docs.Dir)
		if err != nil {
			log.Printf("support docs source disabled: %v", err)
		} else {
			sources = append(sources, docsSource)
		}
	}

	chatLogger := log.New(log.Writer(), "[CHAT] ", log.LstdFlags)
	orch := chat.NewOrchestrator(cfg.Chat, chatLogger, llm, gen, sessions, sources, m)

	api := e.Group("/api")
	ch := &ChatHandler{Chat: orch}
	ch.Register(api)
	kh := &KnowledgeHandler{Store: st, Categories: cfg.Knowledge.Categories}
	kh.Register(api.Group("/knowledge"))

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":10002"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// newSessionStore picks the session backend: redis when a host is configured,
// in-process otherwise.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Storage.Redis.Host == "" {
		log.Printf("redis not configured, using in-memory session store")
		return inmemory_session.NewStore(cfg.Chat.SessionTTL), nil
	}
	if err := cfg.Storage.Redis.Validate(); err != nil {
		return nil, err
	}
	rdb, err := redis_session.Conn(ctx, cfg.Storage.Redis.Host, cfg.Storage.Redis.Port, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB, cfg.Storage.Redis.Timeout)
	if err != nil {
		return nil, fmt.Errorf("redis connection failed (%s:%s): %w", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port, err)
	}
	return redis_session.NewStore(rdb, cfg.Chat.SessionTTL), nil
}
