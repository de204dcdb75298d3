package entity

import (
	"bytes"
	"strconv"
	"time"
)

// Time 以毫秒时间戳序列化的时间类型，兼容旧版快照格式
// （旧系统所有日期字段均为 epoch 毫秒数）
type Time struct {
	time.Time
}

// NewTime 从 time.Time 构造
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// Now 当前时间
func Now() Time {
	return Time{Time: time.Now()}
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	t.Time = time.UnixMilli(ms)
	return nil
}

// DayKey 归一化到本地零点的日期键，用于按天比较交付日期
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Midnight 归一化到本地零点
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
