package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pelusa-v/chatline/internal/chat"
	"github.com/pelusa-v/chatline/internal/config"
	"github.com/pelusa-v/chatline/internal/handlers"
	"github.com/pelusa-v/chatline/internal/ready"
	"github.com/pelusa-v/chatline/internal/session"
	"github.com/pelusa-v/chatline/internal/store"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.ParseEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	st := store.New(store.WithFile(cfg.DBFile), store.WithLogger(logger))
	sessions := session.NewManager()
	mgr := chat.NewManager(st, logger, prometheus.DefaultRegisterer)

	// Flips once the readiness gate opens and the inbox is hydrated.
	var loaded atomic.Bool

	h := &handlers.ChatHandler{
		Mgr:      mgr,
		Sessions: sessions,
		Log:      logger,
		Ready:    loaded.Load,
	}

	engine := html.New(cfg.Views, ".html")
	app := fiber.New(fiber.Config{
		Views:                 engine,
		DisableStartupMessage: true,
	})

	// WS & APIs
	app.Get("/api/ws/register/:nick", websocket.New(h.Register))
	app.Get("/api/clients", h.Clients) // ?exclude=nickOrId

	app.Get("/api/inbox/:nick", h.Inbox)
	app.Get("/api/inbox/:nick/unread", h.Unread)
	app.Post("/api/inbox/read", h.MarkRead)        // ?nick=&thread_id=
	app.Post("/api/inbox/delete", h.DeleteThread)  // ?nick=&thread_id=
	app.Get("/api/inbox/settings", h.Settings)     // ?nick=
	app.Post("/api/inbox/settings", h.SetSettings) // ?nick=&muted=

	app.Post("/api/session/:nick", h.Login)
	app.Post("/api/session/logout", h.Logout) // ?token=

	app.Get("/api/rooms", h.Rooms)                       // ?nick=
	app.Post("/api/room/create", h.CreateRoom)           // ?nick=&room=
	app.Post("/api/room/delete", h.DeleteRoom)           // ?nick=&room=
	app.Post("/api/room/subscribe", h.SubscribeRoom)     // ?nick=&room=
	app.Post("/api/room/unsubscribe", h.UnsubscribeRoom) // ?nick=&room=

	app.Get("/healthz", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Pages
	app.Get("/", func(c *fiber.Ctx) error { return c.Render("register", fiber.Map{}) })
	app.Get("/inbox", func(c *fiber.Ctx) error { return c.Render("inbox", fiber.Map{}) })

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		mgr.Start(gctx)
		return nil
	})

	g.Go(func() error {
		go sessions.Restore()

		gate := ready.NewGate()
		err := gate.Wait(gctx, func() ready.Snapshot {
			return ready.Snapshot{
				SessionPresent: sessions.Restored(),
				StorageReady:   st.Ready(),
			}
		}, st.Initialize)
		if errors.Is(err, ready.ErrNotReady) {
			logger.Error().Msg("giving up on initial inbox load: session/store never became ready")
			return nil
		}
		if err != nil {
			return nil // shutting down
		}

		if err := mgr.Hydrate(); err != nil {
			logger.Warn().Err(err).Msg("hydrate inbox")
			return nil
		}
		loaded.Store(true)
		return nil
	})

	g.Go(func() error {
		logger.Info().Str("addr", cfg.Addr).Msg("chatline listening")
		return app.Listen(cfg.Addr)
	})

	g.Go(func() error {
		<-gctx.Done()
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("server exited")
	}
	_ = st.Close()
}
