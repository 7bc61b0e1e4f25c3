package util

import (
	"strings"

	"github.com/google/uuid"
)

const RoastIDPrefix = "roast_"

// NewRoastID 生成 roast_ 前缀加 8 位十六进制的标识
func NewRoastID() string {
	return RoastIDPrefix + uuid.NewString()[:8]
}

// NewReferralCode 生成 8 位大写推荐码
func NewReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}
