package util

import (
	"crypto/rand"
	"math/big"
)

const (
	alphaNumeric      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	upperAlphaNumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GetRandomString 生成指定长度的随机字符串
func GetRandomString(n int) string {
	return randomFrom(alphaNumeric, n)
}

// GetRandomUpperString 生成指定长度的大写字母数字随机串
func GetRandomUpperString(n int) string {
	return randomFrom(upperAlphaNumeric, n)
}

func randomFrom(charset string, n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			b[i] = charset[i%len(charset)]
			continue
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
