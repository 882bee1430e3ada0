// Package normalize 提供人工录入字段的归一化，
// 查重（地址/手机号/公司名）全部基于归一化值的精确匹配。
package normalize

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
	multiSpace = regexp.MustCompile(`\s+`)
	nonDigitRe = regexp.MustCompile(`[^0-9]`)
)

// Key 归一化通用文本：小写、去首尾空白、非字母数字替换为空格、压缩空白。
func Key(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRe.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Phone 归一化手机号：仅保留数字，前导 + 保留。
func Phone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	plus := strings.HasPrefix(s, "+")
	digits := nonDigitRe.ReplaceAllString(s, "")
	if digits == "" {
		return ""
	}
	if plus {
		return "+" + digits
	}
	return digits
}

const adNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewAdNumber 生成 6 位 base36 广告编号（调用方负责唯一性冲突重试）
func NewAdNumber() (string, error) {
	b := make([]byte, 6)
	max := big.NewInt(int64(len(adNumberAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = adNumberAlphabet[n.Int64()]
	}
	return string(b), nil
}
