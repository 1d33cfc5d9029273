package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/readrover/internal/config"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 全局数据库连接
var DB *gorm.DB

const slowQueryThreshold = 200 * time.Millisecond

// sqlite 默认开启外键并等待写锁，避免并发下单时立即返回 SQLITE_BUSY
var sqlitePragmas = []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}

// InitDB 按配置打开数据库并设置连接池
func InitDB(cfg config.DatabaseConfig, debug bool) error {
	dialector, isSQLite, err := openDialector(cfg.Driver, cfg.DSN)
	if err != nil {
		return err
	}
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(zapWriter{}, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	pool := cfg.Pool
	if isSQLite && pool.MaxOpenConns <= 0 {
		pool.MaxOpenConns = 1
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
	DB = db
	return nil
}

func openDialector(driver, dsn string) (gorm.Dialector, bool, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(withSQLitePragmas(dsn)), true, nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), false, nil
	default:
		return nil, false, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// withSQLitePragmas 补齐未显式配置的 pragma
func withSQLitePragmas(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	for _, pragma := range sqlitePragmas {
		name := pragma[:strings.Index(pragma, "(")]
		if strings.Contains(dsn, name) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + pragma
	}
	return dsn
}

// AutoMigrate 迁移全局连接
func AutoMigrate() error {
	return MigrateAll(DB)
}

// MigrateAll 迁移指定连接（测试库复用）
func MigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&Admin{},
		&User{},
		&Book{},
		&Coupon{},
		&Order{},
		&OrderItem{},
		&Address{},
		&WatchlistItem{},
		&ContactMessage{},
		&Review{},
		&NewsletterSubscriber{},
		&AdminAuditLog{},
		&Banner{},
		&UserLoginLog{},
	)
}
