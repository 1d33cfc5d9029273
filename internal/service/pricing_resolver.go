package service

import (
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

const maxLineQuantity = 99

// CartLine 客户端提交的下单项（仅信任 ID 与数量）
type CartLine struct {
	BookID   uint
	Quantity int
}

// ResolvedLine 按服务端价格解析后的下单项
type ResolvedLine struct {
	Book      models.Book
	Quantity  int
	UnitPrice int64
}

// LineTotal 行金额
func (l ResolvedLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// MergeCartLines 合并重复图书的下单项，保持首次出现的顺序
func MergeCartLines(lines []CartLine) ([]CartLine, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	merged := make([]CartLine, 0, len(lines))
	indexMap := make(map[uint]int, len(lines))
	for _, line := range lines {
		if line.BookID == 0 {
			return nil, ErrInvalidBook
		}
		if line.Quantity <= 0 || line.Quantity > maxLineQuantity {
			return nil, ErrInvalidQuantity
		}
		if idx, ok := indexMap[line.BookID]; ok {
			merged[idx].Quantity += line.Quantity
			continue
		}
		indexMap[line.BookID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

// PricingResolver 加载图书的权威价格与库存
type PricingResolver struct {
	bookRepo repository.BookRepository
}

// NewPricingResolver 创建价格解析器
func NewPricingResolver(bookRepo repository.BookRepository) *PricingResolver {
	return &PricingResolver{bookRepo: bookRepo}
}

// Resolve 解析下单项，校验图书是否上架及库存是否充足
func (r *PricingResolver) Resolve(lines []CartLine) ([]ResolvedLine, error) {
	merged, err := MergeCartLines(lines)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(merged))
	for _, line := range merged {
		ids = append(ids, line.BookID)
	}
	books, err := r.bookRepo.ListActiveByIDs(ids)
	if err != nil {
		return nil, err
	}
	bookMap := make(map[uint]models.Book, len(books))
	for _, book := range books {
		bookMap[book.ID] = book
	}

	resolved := make([]ResolvedLine, 0, len(merged))
	for _, line := range merged {
		book, ok := bookMap[line.BookID]
		if !ok {
			return nil, ErrInvalidBook
		}
		if line.Quantity > book.Stock {
			return nil, &OutOfStockError{BookID: book.ID, Title: book.Title}
		}
		resolved = append(resolved, ResolvedLine{
			Book:      book,
			Quantity:  line.Quantity,
			UnitPrice: book.EffectivePrice(),
		})
	}
	return resolved, nil
}
