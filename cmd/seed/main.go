package main

import (
	"os"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func demoCoupons() []models.Coupon {
	return []models.Coupon{
		{Code: "WELCOME50", Type: constants.CouponTypeFixed, Value: 50, MinSubtotal: 500, Active: true},
		{Code: "SAVE10", Type: constants.CouponTypePercent, Value: 10, MinSubtotal: 1000, MaxDiscount: int64Ptr(300), Active: true},
		{Code: "FESTIVE100", Type: constants.CouponTypeFixed, Value: 100, MinSubtotal: 2000, Active: true},
	}
}

func demoBooks() []models.Book {
	return []models.Book{
		{
			Slug:        "atomic-habits-bn",
			Title:       "Atomic Habits (Bangla Translation)",
			Author:      "James Clear",
			Publisher:   "Sample Publisher",
			Language:    "Bangla",
			Category:    "Self-Help",
			Tags:        "habits,productivity,psychology",
			Description: "Build good habits and break bad ones with clear, practical steps.",
			Price:       550,
			SalePrice:   int64Ptr(499),
			Stock:       25,
			CoverURL:    "https://images.unsplash.com/photo-1524995997946-a1c2e315a42f?auto=format&fit=crop&w=900&q=60",
			RatingAvg:   4.7,
			RatingCount: 123,
			Active:      true,
		},
		{
			Slug:        "clean-code",
			Title:       "Clean Code",
			Author:      "Robert C. Martin",
			Publisher:   "Prentice Hall",
			Language:    "English",
			Category:    "Programming",
			Tags:        "software engineering,best practices,clean code",
			Description: "A handbook of agile software craftsmanship: principles, patterns and practices.",
			Price:       850,
			SalePrice:   int64Ptr(799),
			Stock:       15,
			CoverURL:    "https://images.unsplash.com/photo-1455885666463-009c34b2ef86?auto=format&fit=crop&w=900&q=60",
			RatingAvg:   4.6,
			RatingCount: 98,
			Active:      true,
		},
		{
			Slug:        "shesher-kobita",
			Title:       "শেষের কবিতা",
			Author:      "Rabindranath Tagore",
			Publisher:   "Classic House",
			Language:    "Bangla",
			Category:    "Novel",
			Tags:        "classic,bangla literature,romance",
			Description: "A timeless Bengali classic.",
			Price:       320,
			Stock:       40,
			CoverURL:    "https://images.unsplash.com/photo-1473755504818-b72b6dfdc226?auto=format&fit=crop&w=900&q=60",
			RatingAvg:   4.8,
			RatingCount: 205,
			Active:      true,
		},
		{
			Slug:        "ai-for-beginners",
			Title:       "AI for Beginners",
			Author:      "Tech Author",
			Publisher:   "Tech Press",
			Language:    "English",
			Category:    "AI/ML",
			Tags:        "ai,ml,beginner,career",
			Description: "A practical introduction to AI concepts and projects.",
			Price:       600,
			SalePrice:   int64Ptr(540),
			Stock:       30,
			CoverURL:    "https://images.unsplash.com/photo-1519681393784-d120267933ba?auto=format&fit=crop&w=900&q=60",
			RatingAvg:   4.3,
			RatingCount: 57,
			Active:      true,
		},
	}
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database, cfg.Server.Mode == "debug"); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitDefaultAdmin(os.Getenv("RR_DEFAULT_ADMIN_USERNAME"), os.Getenv("RR_DEFAULT_ADMIN_PASSWORD")); err != nil {
		stdLog.Printf("Failed to create default admin: %v", err)
	}

	// 优惠券与图书按唯一键覆盖写入，可重复执行
	for _, coupon := range demoCoupons() {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).Assign(coupon).FirstOrCreate(&existing).Error; err != nil {
			stdLog.Printf("Failed to seed coupon %s: %v", coupon.Code, err)
			continue
		}
		stdLog.Printf("Seeded coupon: %s", coupon.Code)
	}
	for _, book := range demoBooks() {
		var existing models.Book
		if err := models.DB.Where("slug = ?", book.Slug).Assign(book).FirstOrCreate(&existing).Error; err != nil {
			stdLog.Printf("Failed to seed book %s: %v", book.Slug, err)
			continue
		}
		stdLog.Printf("Seeded book: %s", book.Slug)
	}
	stdLog.Printf("Seed completed")
}
