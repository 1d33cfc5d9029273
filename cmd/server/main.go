package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/readrover/internal/app"
	"github.com/readrover/internal/config"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	envAdminUsername = "RR_DEFAULT_ADMIN_USERNAME"
	envAdminPassword = "RR_DEFAULT_ADMIN_PASSWORD"
	minSecretLength  = 32
)

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all | api | worker")
	flag.Parse()

	fmt.Printf("\033[36m\033[1mReadRover bookstore API\033[0m  mode=%s\n", *mode)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	if err := run(cfg, *mode); err != nil {
		logger.StdLogger().Fatalf("服务启动失败: %v", err)
	}
}

func run(cfg *config.Config, mode string) error {
	release := cfg.Server.Mode == "release"
	if err := checkSecrets(cfg, release); err != nil {
		return err
	}

	if err := models.InitDB(cfg.Database, cfg.Server.Mode == "debug"); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	adminPassword := os.Getenv(envAdminPassword)
	switch {
	case release && adminPassword == "":
		logger.Warnw("default_admin_skipped", "reason", envAdminPassword+" not set")
	default:
		if err := models.InitDefaultAdmin(os.Getenv(envAdminUsername), adminPassword); err != nil {
			logger.Warnw("default_admin_init_failed", "error", err)
		}
	}

	if release {
		gin.SetMode(gin.ReleaseMode)
	}
	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
}

// checkSecrets release 模式下拒绝弱密钥，其余模式仅告警
func checkSecrets(cfg *config.Config, release bool) error {
	var weak []string
	for name, secret := range map[string]string{"jwt.secret": cfg.JWT.SecretKey, "user_jwt.secret": cfg.UserJWT.SecretKey} {
		if isWeakSecret(secret) {
			weak = append(weak, name)
		}
	}
	if len(weak) == 0 {
		return nil
	}
	if release {
		return errors.New("weak or default secrets: " + strings.Join(weak, ", "))
	}
	logger.Warnw("weak_secret_in_non_release_mode", "keys", weak)
	return nil
}

func isWeakSecret(secret string) bool {
	lower := strings.ToLower(secret)
	return len(secret) < minSecretLength || strings.Contains(lower, "change-me") || strings.Contains(lower, "secret-key")
}
