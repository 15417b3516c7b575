package util

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/haierkeys/interview-link-service/pkg/convert"
)

// ParseDuration parses duration string, supports 'd' (day) suffix
// ParseDuration 解析时间字符串，支持 'd' (天) 后缀
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		daysStr := strings.TrimSuffix(s, "d")
		days, err := convert.StrTo(daysStr).Int()
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	// If it is pure numbers, default to seconds
	// 如果是纯数字，默认为秒
	if _, err := strconv.Atoi(s); err == nil {
		s += "s"
	}
	return time.ParseDuration(s)
}

// ParseDurationOr parses s and returns fallback when s is empty or malformed
// ParseDurationOr 解析失败时返回默认值
func ParseDurationOr(s string, fallback time.Duration) time.Duration {
	if d, err := ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}

// MinutesUntil returns floor((target - now) / 1 minute)
// Negative when target is in the past.
// MinutesUntil 返回距目标时间的分钟数（向下取整）
func MinutesUntil(target, now time.Time) int {
	return int(math.Floor(target.Sub(now).Minutes()))
}
