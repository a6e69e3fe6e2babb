package model

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// StreamURLTag 直播地址校验标签：http(s) + 域名/localhost/IPv4 + 可选端口 + 可选路径
const StreamURLTag = "streamurl"

var streamURLPattern = regexp.MustCompile(`(?i)^https?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|` +
	`localhost|` +
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// ValidStreamURL 机器人录入、服务层与管理接口共用同一条规则
func ValidStreamURL(s string) bool {
	return streamURLPattern.MatchString(s)
}

// RegisterValidations 在 validator 上注册自定义标签（服务层与 gin binding 各注册一次）
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation(StreamURLTag, func(fl validator.FieldLevel) bool {
		return ValidStreamURL(fl.Field().String())
	})
}
