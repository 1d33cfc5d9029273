package models

import "github.com/shopspring/decimal"

// PercentOf 按百分比计算金额并向下取整
func PercentOf(amount int64, percent int64) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
}

// ClampAmount 将金额限制在 [min, max] 区间
func ClampAmount(value, min, max int64) int64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RoundRating 评分保留 1 位小数
func RoundRating(sum int64, count int64) float64 {
	if count <= 0 {
		return 0
	}
	avg, _ := decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(1).Float64()
	return avg
}
