package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"

	"gorm.io/gorm"
)

func newTestOrderService(db *gorm.DB, notifier Notifier) *OrderService {
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewBookRepository(db),
		repository.NewCouponRepository(db),
		notifier,
		OrderOptions{
			Rule:          PricingRule{FreeShippingThreshold: 1500, DeliveryFee: 60},
			OrderNoPrefix: "RR",
			NotifyTimeout: time.Second,
		},
	)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	svc.couponService.now = svc.now
	return svc
}

func testPlaceInput(items ...CartLine) PlaceOrderInput {
	return PlaceOrderInput{
		Name:    "Rahim Uddin",
		Phone:   "01712345678",
		Address: "House 12, Road 5, Dhanmondi, Dhaka",
		Items:   items,
	}
}

func TestMergeCartLines(t *testing.T) {
	merged, err := MergeCartLines([]CartLine{
		{BookID: 2, Quantity: 1},
		{BookID: 1, Quantity: 2},
		{BookID: 2, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(merged))
	}
	if merged[0].BookID != 2 || merged[0].Quantity != 4 {
		t.Fatalf("unexpected first line: %+v", merged[0])
	}

	if _, err := MergeCartLines(nil); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected empty cart, got %v", err)
	}
	if _, err := MergeCartLines([]CartLine{{BookID: 1, Quantity: 0}}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := MergeCartLines([]CartLine{{BookID: 0, Quantity: 1}}); !errors.Is(err, ErrInvalidBook) {
		t.Fatalf("expected invalid book, got %v", err)
	}
}

func TestPricingRule(t *testing.T) {
	rule := PricingRule{FreeShippingThreshold: 1500, DeliveryFee: 60}
	cases := []struct {
		subtotal, discount int64
		items              int
		fee                int64
	}{
		{subtotal: 0, discount: 0, items: 0, fee: 0},
		{subtotal: 799, discount: 0, items: 1, fee: 60},
		{subtotal: 1500, discount: 0, items: 1, fee: 0},
		{subtotal: 1550, discount: 100, items: 2, fee: 60},
		{subtotal: 2000, discount: 200, items: 1, fee: 0},
	}
	for _, tc := range cases {
		if got := rule.ComputeDeliveryFee(tc.subtotal, tc.discount, tc.items); got != tc.fee {
			t.Fatalf("fee(%d,%d,%d) expected %d, got %d", tc.subtotal, tc.discount, tc.items, tc.fee, got)
		}
	}
	if got := ComputeTotal(100, 300, 60); got != 60 {
		t.Fatalf("total should clamp discount, got %d", got)
	}
}

func TestGenerateOrderNo(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	orderNo, err := GenerateOrderNo("RR", now)
	if err != nil {
		t.Fatalf("generate order no failed: %v", err)
	}
	if len(orderNo) != len("RR-20250310-ABCDEF") || orderNo[:12] != "RR-20250310-" {
		t.Fatalf("unexpected order no: %s", orderNo)
	}
	for _, ch := range orderNo[12:] {
		if !(ch >= 'A' && ch <= 'Z') && !(ch >= '0' && ch <= '9') {
			t.Fatalf("unexpected suffix char %q in %s", ch, orderNo)
		}
	}
}

func TestPlaceOrderUsesServerPrices(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "padma-nadir-majhi", 850, int64Ptr(799), 15)
	notifier := newRecordingNotifier()
	svc := newTestOrderService(db, notifier)

	result, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if result.Subtotal != 799 || result.DeliveryFee != 60 || result.Total != 859 {
		t.Fatalf("unexpected totals: %+v", result)
	}
	if result.CouponCode != nil || result.CouponDiscount != 0 {
		t.Fatalf("expected no coupon: %+v", result)
	}
	notifier.wait(t)

	result, err = svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 2}))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if result.Subtotal != 1598 || result.DeliveryFee != 0 || result.Total != 1598 {
		t.Fatalf("unexpected totals for free shipping: %+v", result)
	}
	if got := reloadBook(t, db, book.ID).Stock; got != 12 {
		t.Fatalf("expected stock 12, got %d", got)
	}

	var items []models.OrderItem
	if err := db.Where("order_id = ?", result.OrderID).Find(&items).Error; err != nil {
		t.Fatalf("load items failed: %v", err)
	}
	if len(items) != 1 || items[0].UnitPrice != 799 || items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestPlaceOrderAppliesPercentCoupon(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "gitanjali", 1000, nil, 10)
	coupon := seedCoupon(t, db, models.Coupon{
		Code:        "SAVE10",
		Type:        constants.CouponTypePercent,
		Value:       10,
		MinSubtotal: 1000,
		MaxDiscount: int64Ptr(300),
		Active:      true,
	})
	svc := newTestOrderService(db, nil)

	input := testPlaceInput(CartLine{BookID: book.ID, Quantity: 2})
	input.CouponCode = " save10 "
	result, err := svc.Place(input)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if result.Subtotal != 2000 || result.CouponDiscount != 200 || result.DeliveryFee != 0 || result.Total != 1800 {
		t.Fatalf("unexpected totals: %+v", result)
	}
	if result.CouponCode == nil || *result.CouponCode != "SAVE10" {
		t.Fatalf("unexpected coupon code: %v", result.CouponCode)
	}
	var stored models.Coupon
	if err := db.First(&stored, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("expected used count 1, got %d", stored.UsedCount)
	}
}

func TestPlaceOrderIgnoresInvalidCoupon(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "shesher-kobita", 300, nil, 10)
	seedCoupon(t, db, models.Coupon{
		Code:        "WELCOME50",
		Type:        constants.CouponTypeFixed,
		Value:       50,
		MinSubtotal: 500,
		Active:      true,
	})
	svc := newTestOrderService(db, nil)

	input := testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})
	input.CouponCode = "WELCOME50"
	result, err := svc.Place(input)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if result.CouponCode != nil || result.CouponDiscount != 0 || result.Total != 360 {
		t.Fatalf("invalid coupon should be ignored: %+v", result)
	}
}

func TestPlaceOrderOutOfStockHasNoSideEffects(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "debdas", 500, nil, 3)
	coupon := seedCoupon(t, db, models.Coupon{
		Code:   "FESTIVE100",
		Type:   constants.CouponTypeFixed,
		Value:  100,
		Active: true,
	})
	svc := newTestOrderService(db, nil)

	input := testPlaceInput(CartLine{BookID: book.ID, Quantity: 5})
	input.CouponCode = coupon.Code
	_, err := svc.Place(input)
	var stockErr *OutOfStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected out of stock error, got %v", err)
	}
	if stockErr.Title != book.Title || err.Error() != "Out of stock: "+book.Title {
		t.Fatalf("unexpected error message: %v", err)
	}
	if got := countRows(t, db, &models.Order{}); got != 0 {
		t.Fatalf("expected no orders, got %d", got)
	}
	if got := reloadBook(t, db, book.ID).Stock; got != 3 {
		t.Fatalf("stock changed: %d", got)
	}
	var stored models.Coupon
	if err := db.First(&stored, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if stored.UsedCount != 0 {
		t.Fatalf("coupon usage changed: %d", stored.UsedCount)
	}
}

func TestPlaceOrderRejectsInactiveBook(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "hidden", 500, nil, 3)
	if err := db.Model(book).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate book failed: %v", err)
	}
	svc := newTestOrderService(db, nil)

	if _, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})); !errors.Is(err, ErrInvalidBook) {
		t.Fatalf("expected invalid book, got %v", err)
	}
	if _, err := svc.Place(testPlaceInput(CartLine{BookID: 9999, Quantity: 1})); !errors.Is(err, ErrInvalidBook) {
		t.Fatalf("expected invalid book for unknown id, got %v", err)
	}
}

func TestPlaceOrderLastUnitSequential(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "last-copy", 400, nil, 1)
	svc := newTestOrderService(db, nil)

	if _, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})); err != nil {
		t.Fatalf("first order failed: %v", err)
	}
	if _, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}
	if got := reloadBook(t, db, book.ID).Stock; got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func openFileTestDB(t *testing.T, maxOpenConns int) *gorm.DB {
	t.Helper()
	previous := models.DB
	t.Cleanup(func() { models.DB = previous })

	dsn := "file:" + filepath.Join(t.TempDir(), "readrover.db")
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    dsn,
		Pool:   config.DatabasePoolConfig{MaxOpenConns: maxOpenConns},
	}
	if err := models.InitDB(cfg, false); err != nil {
		t.Fatalf("init db failed: %v", err)
	}
	db := models.DB
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	return db
}

func TestPlaceOrderConcurrentLastUnit(t *testing.T) {
	for _, conns := range []int{1, 4} {
		t.Run(fmt.Sprintf("max_open_conns_%d", conns), func(t *testing.T) {
			db := openFileTestDB(t, conns)
			book := seedBook(t, db, "last-copy", 400, nil, 1)
			svc := newTestOrderService(db, nil)

			const buyers = 8
			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				placed   int
				sold     int
				failures []error
			)
			start := make(chan struct{})
			for i := 0; i < buyers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					_, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1}))
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						placed++
					case errors.Is(err, ErrOutOfStock):
						sold++
					default:
						failures = append(failures, err)
					}
				}()
			}
			close(start)
			wg.Wait()

			if len(failures) > 0 {
				t.Fatalf("unexpected placement errors: %v", failures)
			}
			if placed != 1 || sold != buyers-1 {
				t.Fatalf("expected 1 order and %d out of stock, got %d and %d", buyers-1, placed, sold)
			}
			if got := reloadBook(t, db, book.ID).Stock; got != 0 {
				t.Fatalf("expected stock 0, got %d", got)
			}
			if got := countRows(t, db, &models.Order{}); got != 1 {
				t.Fatalf("expected one stored order, got %d", got)
			}
		})
	}
}

// staleBookRepo 返回过期库存，模拟解析与提交之间被其他订单抢购
type staleBookRepo struct {
	repository.BookRepository
	stock int
}

func (r staleBookRepo) ListActiveByIDs(ids []uint) ([]models.Book, error) {
	books, err := r.BookRepository.ListActiveByIDs(ids)
	for i := range books {
		books[i].Stock = r.stock
	}
	return books, err
}

func TestPlaceOrderGuardedDecrementRollsBack(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "race", 400, nil, 0)
	svc := newTestOrderService(db, nil)
	svc.resolver = NewPricingResolver(staleBookRepo{BookRepository: repository.NewBookRepository(db), stock: 5})

	_, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1}))
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock at commit, got %v", err)
	}
	if got := countRows(t, db, &models.Order{}); got != 0 {
		t.Fatalf("order should be rolled back, got %d", got)
	}
	if got := countRows(t, db, &models.OrderItem{}); got != 0 {
		t.Fatalf("order items should be rolled back, got %d", got)
	}
	if got := reloadBook(t, db, book.ID).Stock; got != 0 {
		t.Fatalf("stock must not go negative: %d", got)
	}
}

func TestPlaceOrderRetriesOrderNoCollision(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "collision", 400, nil, 5)
	svc := newTestOrderService(db, nil)

	first, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("first order failed: %v", err)
	}
	calls := 0
	svc.newOrderNo = func(prefix string, now time.Time) (string, error) {
		calls++
		if calls == 1 {
			return first.OrderNo, nil
		}
		return GenerateOrderNo(prefix, now)
	}

	second, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("second order should succeed after retry: %v", err)
	}
	if calls != 2 || second.OrderNo == first.OrderNo {
		t.Fatalf("expected fresh order number, calls=%d no=%s", calls, second.OrderNo)
	}
	if got := reloadBook(t, db, book.ID).Stock; got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}

	svc.newOrderNo = func(string, time.Time) (string, error) {
		return first.OrderNo, nil
	}
	if _, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})); !errors.Is(err, ErrPlaceOrderRetry) {
		t.Fatalf("expected retries exhausted, got %v", err)
	}
}

// staleCouponRepo 首次查询返回未用完的优惠券快照
type staleCouponRepo struct {
	repository.CouponRepository
	calls *int
}

func (r staleCouponRepo) GetByCode(code string) (*models.Coupon, error) {
	coupon, err := r.CouponRepository.GetByCode(code)
	*r.calls++
	if coupon != nil && *r.calls == 1 {
		coupon.UsedCount = 0
	}
	return coupon, err
}

func TestPlaceOrderCouponExhaustedAtCommitRetriesWithoutDiscount(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "coupon-race", 1000, nil, 5)
	seedCoupon(t, db, models.Coupon{
		Code:       "ONCE",
		Type:       constants.CouponTypeFixed,
		Value:      100,
		Active:     true,
		UsageLimit: intPtr(1),
		UsedCount:  1,
	})
	svc := newTestOrderService(db, nil)
	calls := 0
	svc.couponService = NewCouponService(staleCouponRepo{CouponRepository: repository.NewCouponRepository(db), calls: &calls})

	input := testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})
	input.CouponCode = "ONCE"
	result, err := svc.Place(input)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected coupon re-evaluation, calls=%d", calls)
	}
	if result.CouponCode != nil || result.CouponDiscount != 0 || result.Total != 1060 {
		t.Fatalf("expected no discount after exhaustion: %+v", result)
	}
	var stored models.Coupon
	if err := db.Where("code = ?", "ONCE").First(&stored).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("usage limit overshot: %d", stored.UsedCount)
	}
	if got := countRows(t, db, &models.Order{}); got != 1 {
		t.Fatalf("expected one order, got %d", got)
	}
}

func TestPlaceOrderNotifierFailureDoesNotRollback(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "notify", 400, nil, 5)
	notifier := newRecordingNotifier()
	notifier.err = errors.New("smtp down")
	svc := newTestOrderService(db, notifier)

	input := testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})
	input.Email = "Reader@Example.com"
	result, err := svc.Place(input)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	notifier.wait(t)
	if got := countRows(t, db, &models.Order{}); got != 1 {
		t.Fatalf("expected committed order, got %d", got)
	}
	var order models.Order
	if err := db.First(&order, result.OrderID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if order.Email != "reader@example.com" || order.Status != constants.OrderStatusPending {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestTrackOrder(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "track", 400, nil, 5)
	svc := newTestOrderService(db, nil)
	result, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 2}))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	order, err := svc.Track(result.OrderNo, "01712345678")
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].Book == nil || order.Items[0].Book.Title != book.Title {
		t.Fatalf("expected items with book titles: %+v", order.Items)
	}
	if _, err := svc.Track(result.OrderNo, "01800000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for wrong phone, got %v", err)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "status", 400, nil, 5)
	notifier := newRecordingNotifier()
	svc := newTestOrderService(db, notifier)
	result, err := svc.Place(testPlaceInput(CartLine{BookID: book.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	notifier.wait(t)

	order, err := svc.UpdateStatus(result.OrderID, "delivered")
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if order.Status != constants.OrderStatusDelivered {
		t.Fatalf("unexpected status: %s", order.Status)
	}
	notifier.wait(t)

	// 状态可任意回退
	if _, err := svc.UpdateStatus(result.OrderID, constants.OrderStatusPending); err != nil {
		t.Fatalf("permissive transition failed: %v", err)
	}
	notifier.wait(t)
	if _, err := svc.UpdateStatus(result.OrderID, "LOST"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateStatus(9999, constants.OrderStatusShipped); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}

func TestListOrdersByPhoneAndUser(t *testing.T) {
	db := setupServiceTestDB(t)
	book := seedBook(t, db, "history", 400, nil, 10)
	svc := newTestOrderService(db, nil)
	userID := uint(7)

	input := testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})
	input.UserID = &userID
	if _, err := svc.Place(input); err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	other := testPlaceInput(CartLine{BookID: book.ID, Quantity: 1})
	other.Name = "Karim"
	if _, err := svc.Place(other); err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	orders, err := svc.ListByPhone("01712345678", "rahim")
	if err != nil {
		t.Fatalf("list by phone failed: %v", err)
	}
	if len(orders) != 1 || orders[0].Name != "Rahim Uddin" {
		t.Fatalf("unexpected orders by phone: %+v", orders)
	}
	if _, err := svc.ListByPhone(" ", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	mine, err := svc.ListByUser(userID)
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 user order, got %d", len(mine))
	}

	all, total, err := svc.ListForAdmin(repository.OrderListFilter{Status: "pending"})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("unexpected admin list: total=%d len=%d", total, len(all))
	}
}
