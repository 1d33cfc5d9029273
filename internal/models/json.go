package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON 任意 JSON 对象字段
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	raw, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口（兼容 []byte 与 string）
func (j *JSON) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = JSON{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil
	}
	if len(raw) == 0 {
		*j = JSON{}
		return nil
	}
	return json.Unmarshal(raw, j)
}
