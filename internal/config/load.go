package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/readrover/internal/logger"

	"github.com/spf13/viper"
)

// configFileEnv 显式指定配置文件路径
const configFileEnv = "READROVER_CONFIG"

const (
	defaultJWTSecret     = "change-me-in-production"
	defaultUserJWTSecret = "user-change-me-in-production"
)

var defaults = map[string]interface{}{
	"server.host":                  "0.0.0.0",
	"server.port":                  "8080",
	"server.mode":                  "debug",
	"server.read_timeout_seconds":  15,
	"server.write_timeout_seconds": 15,

	"log.level":        "",
	"log.dir":          "",
	"log.filename":     "readrover.log",
	"log.max_size_mb":  100,
	"log.max_backups":  7,
	"log.max_age_days": 30,
	"log.compress":     true,

	"database.driver":                          "sqlite",
	"database.dsn":                             "./db/readrover.db",
	"database.pool.max_open_conns":             1,
	"database.pool.max_idle_conns":             1,
	"database.pool.conn_max_lifetime_seconds":  0,
	"database.pool.conn_max_idle_time_seconds": 0,

	"jwt.secret":            defaultJWTSecret,
	"jwt.expire_hours":      24,
	"user_jwt.secret":       defaultUserJWTSecret,
	"user_jwt.expire_hours": 336,

	"redis.enabled":  true,
	"redis.host":     "127.0.0.1",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,
	"redis.prefix":   "rr",

	"queue.enabled":     true,
	"queue.host":        "127.0.0.1",
	"queue.port":        6379,
	"queue.password":    "",
	"queue.db":          1,
	"queue.concurrency": 10,
	"queue.queues":      map[string]int{"critical": 6, "default": 3},

	"cors.allowed_origins":   []string{"*"},
	"cors.allowed_methods":   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
	"cors.allowed_headers":   []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control", "X-Requested-With", "X-Request-ID"},
	"cors.allow_credentials": true,
	"cors.max_age":           600,

	"security.login_rate_limit.window_seconds": 300,
	"security.login_rate_limit.max_attempts":   5,
	"security.login_rate_limit.block_seconds":  900,
	"security.order_rate_limit.window_seconds": 60,
	"security.order_rate_limit.max_attempts":   10,
	"security.order_rate_limit.block_seconds":  300,
	"security.track_rate_limit.window_seconds": 60,
	"security.track_rate_limit.max_attempts":   20,
	"security.track_rate_limit.block_seconds":  300,
	"security.password_policy.min_length":      8,
	"security.password_policy.require_upper":   false,
	"security.password_policy.require_lower":   false,
	"security.password_policy.require_number":  false,
	"security.password_policy.require_special": false,

	"email.enabled":   false,
	"email.host":      "",
	"email.port":      587,
	"email.username":  "",
	"email.password":  "",
	"email.from":      "",
	"email.from_name": "ReadRover",
	"email.use_tls":   true,
	"email.use_ssl":   false,

	"order.free_shipping_threshold": 1500,
	"order.delivery_fee":            60,
	"order.order_no_prefix":         "RR",
	"order.max_place_attempts":      3,
	"order.notify_timeout_seconds":  10,

	"catalog.cache_ttl_seconds": 60,
	"catalog.max_page_size":     50,

	"captcha.provider":              "none",
	"captcha.scenes.register":       false,
	"captcha.scenes.contact_submit": false,
	"captcha.scenes.order_create":   false,
	"captcha.image.length":          5,
	"captcha.image.width":           240,
	"captcha.image.height":          80,
	"captcha.image.noise_count":     2,
	"captcha.image.show_line":       2,
	"captcha.image.expire_seconds":  300,
	"captcha.image.max_store":       10240,
}

// Load 读取 config.yml（或 READROVER_CONFIG 指定的文件），环境变量覆盖同名键
// 例如 order.delivery_fee 对应 ORDER_DELIVERY_FEE。
func Load() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range []string{".", "..", "./etc"} {
			v.AddConfigPath(dir)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed", "error", err, "fallback", "env_or_defaults")
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config unmarshal failed: %w", err))
	}
	for _, problem := range cfg.Check() {
		logger.Warnw("config_check_warning", "detail", problem)
	}
	return cfg
}

// Check 返回不阻断启动但需要处理的配置问题
func (c *Config) Check() []string {
	var problems []string
	release := strings.EqualFold(c.Server.Mode, "release")
	if release && c.JWT.SecretKey == defaultJWTSecret {
		problems = append(problems, "jwt.secret uses the built-in default")
	}
	if release && c.UserJWT.SecretKey == defaultUserJWTSecret {
		problems = append(problems, "user_jwt.secret uses the built-in default")
	}
	if c.JWT.SecretKey != "" && c.JWT.SecretKey == c.UserJWT.SecretKey {
		problems = append(problems, "jwt.secret and user_jwt.secret should differ")
	}
	if c.Email.Enabled && (c.Email.Host == "" || c.Email.From == "") {
		problems = append(problems, "email is enabled without host or from")
	}
	if c.Email.UseSSL && c.Email.UseTLS {
		problems = append(problems, "email.use_ssl and email.use_tls are both set; implicit TLS wins")
	}
	return problems
}
