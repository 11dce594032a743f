package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpctx "github.com/avasilenko/authgate-server/internal/api/http/context"
	"github.com/avasilenko/authgate-server/internal/api/http/handler"
	"github.com/avasilenko/authgate-server/internal/api/http/router"
	httpServer "github.com/avasilenko/authgate-server/internal/api/http/server"
	"github.com/avasilenko/authgate-server/internal/config"
	"github.com/avasilenko/authgate-server/internal/logger"
	"github.com/avasilenko/authgate-server/internal/model"
	"github.com/avasilenko/authgate-server/internal/oauth"
	"github.com/avasilenko/authgate-server/internal/repository/postgres"
	"github.com/avasilenko/authgate-server/internal/server"
	"github.com/avasilenko/authgate-server/internal/service"
	"github.com/avasilenko/authgate-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	tokenCodec, err := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		logger.Fatal("failed to initialize token codec", "error", err)
	}

	directory := service.NewDirectory(userRepo, logger)
	authService := service.NewAuth(directory, sessionRepo, tokenCodec, logger)

	oauthClients := buildOAuthClients(ctx, cfg, logger)

	ctxMgr := httpctx.NewManager()
	authHandler := handler.NewAuth(authService, ctxMgr, cfg.HTTP.SecureCookies, logger)
	oauthHandler := handler.NewOAuth(oauthClients, authService, cfg.Frontend.RedirectURL, cfg.HTTP.SecureCookies, logger)

	r := router.New(authHandler, oauthHandler, tokenCodec, authService, ctxMgr, cfg.HTTP.AllowedOrigins, logger)
	srv := httpServer.NewHTTPServer(r.Handler(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// buildOAuthClients wires the providers that have credentials configured.
// A provider without a client id is simply not offered.
func buildOAuthClients(ctx context.Context, cfg *config.Config, logger *logger.Logger) []oauth.Client {
	var clients []oauth.Client

	if cfg.OAuth.Google.ClientID != "" {
		google, err := oauth.NewGoogle(ctx, cfg.OAuth.Google)
		if err != nil {
			logger.Fatal("failed to initialize google oauth client", "error", err)
		}
		clients = append(clients, google)
	}

	if cfg.OAuth.Kakao.ClientID != "" {
		clients = append(clients, oauth.NewKakao(cfg.OAuth.Kakao))
	}

	if len(clients) == 0 {
		logger.Info("no oauth providers configured; federated login disabled")
	}

	return clients
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
