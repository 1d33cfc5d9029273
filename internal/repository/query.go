package repository

import (
	"errors"

	"gorm.io/gorm"
)

// firstOrNil 查询首条记录，不存在时返回 (nil, nil)
func firstOrNil[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	row := new(T)
	err := query.First(row, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// findPage 统计总数后按 order 取当前页
func findPage[T any](query *gorm.DB, page, pageSize int, order string) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]T, 0)
	if total == 0 {
		return rows, 0, nil
	}
	if err := query.Scopes(paginate(page, pageSize)).Order(order).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// whereEq 值非零时追加等值条件
func whereEq[V comparable](query *gorm.DB, column string, value V) *gorm.DB {
	var zero V
	if value == zero {
		return query
	}
	return query.Where(column+" = ?", value)
}
