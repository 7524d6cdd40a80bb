package provider

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseISO8601Duration 解析 YouTube contentDetails.duration 的 ISO-8601
// 时长（如 "PT1H30M15S"），返回总秒数。
//
// 解析失败不报错：返回 0，下游特征提取按文档化默认落 medium 桶。
// 时长是排序特征的一个维度，坏数据不值得让整条结果失效。
func ParseISO8601Duration(s string) int {
	if len(s) < 3 || !strings.HasPrefix(s, "PT") {
		return 0
	}

	total := 0
	num := strings.Builder{}
	for _, r := range s[2:] {
		if unicode.IsDigit(r) {
			num.WriteRune(r)
			continue
		}

		n, err := strconv.Atoi(num.String())
		if err != nil {
			return 0
		}
		num.Reset()

		switch r {
		case 'H':
			total += n * 3600
		case 'M':
			total += n * 60
		case 'S':
			total += n
		default:
			return 0
		}
	}
	// 数字后面没有单位字母，视为非法
	if num.Len() > 0 {
		return 0
	}
	return total
}
