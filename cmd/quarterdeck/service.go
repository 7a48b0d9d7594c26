package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"github.com/urfave/cli/v2"

	"github.com/shipboard-social/quarterdeck/apiv3"
	"github.com/shipboard-social/quarterdeck/moderation"
	"github.com/shipboard-social/quarterdeck/moderation/titlecache"
	"github.com/shipboard-social/quarterdeck/pkg/robusthttp"
)

//go:embed static/*
var StaticFS embed.FS

type Server struct {
	echo       *echo.Echo
	httpd      *http.Server
	api        *apiv3.Client
	cookies    *sessions.CookieStore
	titles     titlecache.TitleStore
	thresholds moderation.QuarantineThresholds
}

func serve(cctx *cli.Context) error {
	debug := cctx.Bool("debug")
	httpAddress := cctx.String("bind")
	apiHost := cctx.String("api-host")

	api := &apiv3.Client{
		Client:         robusthttp.NewClient(robusthttp.WithLogger(slog)),
		MutationClient: robusthttp.NewMutationClient(robusthttp.WithLogger(slog)),
		Host:           apiHost,
	}

	var titles titlecache.TitleStore
	if redisURL := cctx.String("redis-url"); redisURL != "" {
		rts, err := titlecache.NewRedisTitleStore(redisURL, time.Hour)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		titles = rts
	} else {
		titles = titlecache.NewMemTitleStore(1_000, time.Hour)
	}

	e := echo.New()

	// httpd
	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)

	srv := &Server{
		echo:    e,
		api:     api,
		cookies: sessions.NewCookieStore([]byte(cctx.String("session-secret"))),
		titles:  titles,
		thresholds: moderation.QuarantineThresholds{
			Twarrt:    cctx.Int("twarrt-quarantine-threshold"),
			ForumPost: cctx.Int("forumpost-quarantine-threshold"),
			User:      cctx.Int("user-quarantine-threshold"),
		},
	}
	srv.httpd = &http.Server{
		Handler:        srv,
		Addr:           httpAddress,
		WriteTimeout:   httpTimeout,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}

	e.HideBanner = true
	e.Use(slogecho.New(slog))
	e.Use(middleware.Recover())
	e.Use(echoprometheus.NewMiddleware("quarterdeck"))
	e.Use(middleware.BodyLimit("64K"))
	e.HTTPErrorHandler = srv.errorHandler
	e.Renderer = NewRenderer("templates/", &TemplateFS, debug)
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         31536000, // 365 days
	}))

	// redirect trailing slash to non-trailing slash.
	// all of our current endpoints have no trailing slash.
	e.Use(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusFound,
	}))

	staticHandler := http.FileServer(func() http.FileSystem {
		if debug {
			return http.FS(os.DirFS("static"))
		}
		fsys, err := fs.Sub(StaticFS, "static")
		if err != nil {
			slog.Error("static template error", "err", err)
			os.Exit(-1)
		}
		return http.FS(fsys)
	}())

	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", staticHandler)))
	e.GET("/robots.txt", echo.WrapHandler(staticHandler))

	e.GET("/_health", srv.HandleHealthCheck)
	e.GET("/metrics", echoprometheus.NewHandler())

	e.GET("/", srv.WebHome)
	e.GET("/login", srv.WebLogin)
	e.POST("/login", srv.WebLoginPost)
	e.POST("/logout", srv.WebLogout)

	mod := e.Group("", srv.requireModerator)
	mod.GET("/reports", srv.WebReports)
	mod.POST("/reports/:id/handleall", srv.WebReportsHandleAll)
	mod.POST("/reports/:id/closeall", srv.WebReportsCloseAll)
	mod.GET("/moderate/:type/:id", srv.WebModerateContent)
	mod.POST("/moderate/:type/:id/setstate/:state", srv.WebSetModerationState)
	mod.GET("/user/:userid", srv.WebModerateUser)
	mod.POST("/user/:userid/setaccesslevel/:level", srv.WebSetAccessLevel)
	mod.POST("/user/:userid/tempquarantine/:seconds", srv.WebTempQuarantine)

	// the store owns auto-quarantine counting; we just hand it the policy
	// numbers at startup. The console still works if the store is down.
	if serviceToken := cctx.String("service-token"); serviceToken != "" {
		svcAPI := *api
		svcAPI.Auth = &apiv3.AuthInfo{Token: serviceToken}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := svcAPI.SetQuarantineThresholds(ctx, srv.thresholds); err != nil {
			slog.Warn("failed to push quarantine thresholds", "err", err)
		}
		cancel()
	} else {
		slog.Info("no service token configured, skipping quarantine threshold push")
	}

	// Start the server
	slog.Info("starting server", "bind", httpAddress, "apiHost", apiHost)
	go func() {
		if err := srv.httpd.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				slog.Error("HTTP server shutting down unexpectedly", "err", err)
			}
		}
	}()

	// Wait for a signal to exit.
	slog.Info("registering OS exit signal handler")
	quit := make(chan struct{})
	exitSignals := make(chan os.Signal, 1)
	signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exitSignals
		slog.Info("received OS exit signal", "signal", sig)

		// Shut down the HTTP server
		if err := srv.Shutdown(); err != nil {
			slog.Error("HTTP server shutdown error", "err", err)
		}

		// Trigger the return that causes an exit.
		close(quit)
	}()
	<-quit
	slog.Info("graceful shutdown complete")
	return nil
}

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func (srv *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var errorMessage string

	var he *echo.HTTPError
	var ue *moderation.UpstreamError
	var ite *moderation.InvalidTransitionError
	switch {
	case errors.As(err, &he):
		code = he.Code
		errorMessage = fmt.Sprintf("%s", he.Message)
	case errors.As(err, &ue):
		// surface the store's status verbatim
		code = ue.StatusCode
		errorMessage = ue.Reason
		upstreamErrorCount.WithLabelValues(fmt.Sprint(code)).Inc()
	case errors.As(err, &ite):
		code = http.StatusBadRequest
		errorMessage = ite.Error()
	case errors.Is(err, moderation.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, moderation.ErrNotFound):
		code = http.StatusNotFound
	}
	if code >= 500 {
		slog.Warn("quarterdeck-http-internal-error", "err", err)
	}
	data := pongo2.Context{
		"statusCode":   code,
		"errorMessage": errorMessage,
	}
	if !c.Response().Committed {
		c.Render(code, "error.html", data)
	}
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

func (srv *Server) Shutdown() error {
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.httpd.Shutdown(ctx)
}

func (s *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(200, GenericStatus{Status: "ok", Daemon: "quarterdeck"})
}
