package service

import (
	"strings"
	"sync"
	"time"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/constants"

	"github.com/mojocn/base64Captcha"
)

const captchaCharset = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// CaptchaVerifyPayload 验证码校验请求载荷
type CaptchaVerifyPayload struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaPublicSetting 前台可见的验证码配置
type CaptchaPublicSetting struct {
	Provider string          `json:"provider"`
	Scenes   map[string]bool `json:"scenes"`
}

// CaptchaService 验证码服务
// 按场景开关决定是否需要验证码，当前仅支持图片验证码。
type CaptchaService struct {
	cfg config.CaptchaConfig

	once  sync.Once
	store base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{cfg: normalizeCaptchaConfig(cfg)}
}

// PublicSetting 前台下发配置
func (s *CaptchaService) PublicSetting() CaptchaPublicSetting {
	cfg := s.config()
	return CaptchaPublicSetting{
		Provider: cfg.Provider,
		Scenes: map[string]bool{
			constants.CaptchaSceneRegister:      s.SceneEnabled(constants.CaptchaSceneRegister),
			constants.CaptchaSceneContactSubmit: s.SceneEnabled(constants.CaptchaSceneContactSubmit),
			constants.CaptchaSceneOrderCreate:   s.SceneEnabled(constants.CaptchaSceneOrderCreate),
		},
	}
}

// SceneEnabled 场景是否需要验证码
func (s *CaptchaService) SceneEnabled(scene string) bool {
	cfg := s.config()
	if cfg.Provider != constants.CaptchaProviderImage {
		return false
	}
	switch scene {
	case constants.CaptchaSceneRegister:
		return cfg.Scenes.Register
	case constants.CaptchaSceneContactSubmit:
		return cfg.Scenes.ContactSubmit
	case constants.CaptchaSceneOrderCreate:
		return cfg.Scenes.OrderCreate
	default:
		return false
	}
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	cfg := s.config()
	if cfg.Provider != constants.CaptchaProviderImage {
		return nil, ErrCaptchaConfigInvalid
	}
	driver := base64Captcha.NewDriverString(
		cfg.Image.Height,
		cfg.Image.Width,
		cfg.Image.NoiseCount,
		cfg.Image.ShowLine,
		cfg.Image.Length,
		captchaCharset,
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	id, b64s, _, err := base64Captcha.NewCaptcha(driver, s.imageStore()).Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify 按场景校验验证码（一次性）
func (s *CaptchaService) Verify(scene string, payload CaptchaVerifyPayload) error {
	if !s.SceneEnabled(scene) {
		return nil
	}
	captchaID := strings.TrimSpace(payload.CaptchaID)
	captchaCode := strings.TrimSpace(payload.CaptchaCode)
	if captchaID == "" || captchaCode == "" {
		return ErrCaptchaRequired
	}
	if !s.imageStore().Verify(captchaID, captchaCode, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *CaptchaService) config() config.CaptchaConfig {
	if s == nil {
		return normalizeCaptchaConfig(config.CaptchaConfig{})
	}
	return s.cfg
}

func (s *CaptchaService) imageStore() base64Captcha.Store {
	s.once.Do(func() {
		if s.store == nil {
			s.store = base64Captcha.NewMemoryStore(s.cfg.Image.MaxStore, time.Duration(s.cfg.Image.ExpireSeconds)*time.Second)
		}
	})
	return s.store
}

func normalizeCaptchaConfig(cfg config.CaptchaConfig) config.CaptchaConfig {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider != constants.CaptchaProviderImage {
		cfg.Provider = constants.CaptchaProviderNone
	}
	image := &cfg.Image
	if image.Length < 4 || image.Length > 8 {
		image.Length = 5
	}
	if image.Width < 120 || image.Width > 480 {
		image.Width = 240
	}
	if image.Height < 40 || image.Height > 160 {
		image.Height = 80
	}
	if image.NoiseCount < 0 || image.NoiseCount > 20 {
		image.NoiseCount = 2
	}
	if image.ShowLine < 0 || image.ShowLine > 20 {
		image.ShowLine = 2
	}
	if image.ExpireSeconds < 30 || image.ExpireSeconds > 3600 {
		image.ExpireSeconds = 300
	}
	if image.MaxStore < 100 || image.MaxStore > 100000 {
		image.MaxStore = 10240
	}
	return cfg
}
