// Package entity 定义领域实体
package entity

import (
	"strconv"
	"time"
)

// UnlimitedMonthlyLimit 月度上限哨兵值：不限量
const UnlimitedMonthlyLimit = -1

// UsageRecord 用户月度生成用量（每个用户一条）
type UsageRecord struct {
	UserID              string    `json:"user_id" gorm:"type:varchar(64);primaryKey"`
	CurrentMonthCount   int       `json:"current_month_count" gorm:"not null;default:0"`
	MonthlyLimit        int       `json:"monthly_limit" gorm:"not null;default:10"`
	LastResetAt         time.Time `json:"last_reset_at" gorm:"not null"`
	TotalGeneratedCount int       `json:"total_generated_count" gorm:"not null;default:0"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 表名
func (UsageRecord) TableName() string {
	return "usage_records"
}

// NewUsageRecord 创建新用户的用量记录
func NewUsageRecord(userID string, monthlyLimit int, now time.Time) *UsageRecord {
	return &UsageRecord{
		UserID:       userID,
		MonthlyLimit: monthlyLimit,
		LastResetAt:  now,
	}
}

// IsUnlimited 是否不限量
func (u *UsageRecord) IsUnlimited() bool {
	return u.MonthlyLimit == UnlimitedMonthlyLimit
}

// NeedsReset 上次重置时间是否落在 now 之前的自然月（UTC）
func (u *UsageRecord) NeedsReset(now time.Time) bool {
	last := u.LastResetAt.UTC()
	cur := now.UTC()
	if cur.Year() != last.Year() {
		return cur.Year() > last.Year()
	}
	return cur.Month() > last.Month()
}

// EffectiveCount 返回考虑月度滚动后的本月用量，不修改记录
func (u *UsageRecord) EffectiveCount(now time.Time) int {
	if u.NeedsReset(now) {
		return 0
	}
	return u.CurrentMonthCount
}

// LimitLabel 返回可展示的上限
func (u *UsageRecord) LimitLabel() string {
	if u.IsUnlimited() {
		return "unlimited"
	}
	return strconv.Itoa(u.MonthlyLimit)
}

// NextResetAt 下一个自然月第一天 00:00 UTC
func NextResetAt(now time.Time) time.Time {
	cur := now.UTC()
	return time.Date(cur.Year(), cur.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}
