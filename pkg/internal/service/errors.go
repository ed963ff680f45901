package service

import (
	"errors"
	"fmt"
)

// 服务层错误分类，调用方用 errors.Is 判断并映射为对外状态.
var (
	ErrAdmission  = errors.New("only audio files are allowed")
	ErrSizeLimit  = errors.New("file exceeds the maximum upload size")
	ErrValidation = errors.New("invalid audio file")
	ErrNotFound   = errors.New("audio file not found")
	ErrConflict   = errors.New("audio file already exists")
	ErrStorage    = errors.New("audio storage failure")
)

var publicErrors = []error{ErrAdmission, ErrSizeLimit, ErrValidation, ErrNotFound, ErrConflict, ErrStorage}

// PublicMessage 返回可以展示给调用方的错误文本，不包含内部路径等细节.
func PublicMessage(err error) string {
	for _, e := range publicErrors {
		if errors.Is(err, e) {
			return e.Error()
		}
	}

	return ErrStorage.Error()
}

func wrap(kind error, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}
