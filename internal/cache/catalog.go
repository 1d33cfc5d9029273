package cache

import (
	"context"
	"fmt"
	"strings"
)

const catalogVersionKey = "catalog:version"

// CatalogVersion 当前目录缓存版本，写操作后自增使旧键失效
func CatalogVersion(ctx context.Context) int64 {
	version, err := GetInt64(ctx, catalogVersionKey)
	if err != nil {
		return 0
	}
	return version
}

// BumpCatalogVersion 使全部目录缓存失效
func BumpCatalogVersion(ctx context.Context) error {
	_, err := Incr(ctx, catalogVersionKey)
	return err
}

// CatalogBookKey 图书详情缓存键
func CatalogBookKey(version int64, slug string) string {
	return fmt.Sprintf("catalog:v%d:book:%s", version, strings.ToLower(strings.TrimSpace(slug)))
}

// CatalogListKey 图书列表缓存键
func CatalogListKey(version int64, search, category string, page, pageSize int) string {
	return fmt.Sprintf("catalog:v%d:list:%s:%s:%d:%d",
		version,
		strings.ToLower(strings.TrimSpace(search)),
		strings.ToLower(strings.TrimSpace(category)),
		page,
		pageSize,
	)
}
