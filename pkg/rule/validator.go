// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
package rule

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

// AudioMimePrefix 音频内容类型前缀.
const AudioMimePrefix = "audio/"

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建. 随后注册内置规则.
func initValidator() {
	inst = nil

	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
		}
	}

	if inst == nil {
		inst = validator.New()
	}

	inst.SetTagName("rule")
	_ = inst.RegisterValidation("audio_mime", validateAudioMime)
	_ = inst.RegisterValidation("safe_key", validateSafeKey)
}

// IsAudioMime 判断内容类型是否为音频（忽略大小写与参数部分）.
func IsAudioMime(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	return strings.HasPrefix(mt, AudioMimePrefix) && len(mt) > len(AudioMimePrefix)
}

// validateAudioMime audio_mime: 字段必须是 audio/* 内容类型.
func validateAudioMime(fl validator.FieldLevel) bool {
	return IsAudioMime(fl.Field().String())
}

// validateSafeKey safe_key: 不含路径分隔符、不是 . 或 ..、不含控制字符.
func validateSafeKey(fl validator.FieldLevel) bool {
	return IsSafeKey(fl.Field().String())
}

// IsSafeKey 判断存储键是否为扁平安全文件名.
func IsSafeKey(key string) bool {
	if key == "" || key == "." || key == ".." || len(key) > 255 {
		return false
	}

	for _, r := range key {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate，若未初始化则先初始化.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 代理 RegisterValidation，确保已初始化.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// ValidationErrors 是格式化后的验证错误字典，键为字段名（受 RegisterTagNameFunc 影响），值为可读错误信息.
type ValidationErrors map[string]string

// ValidateStruct 对结构体执行完整校验，返回原始 error（可用 Errors 解析）.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("abc", "required,email").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// RegisterAlias 包装 RegisterAlias，便于注册别名规则.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}
