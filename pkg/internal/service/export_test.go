package service

import "time"

var FileExt = fileExt

// SetClock 替换服务使用的时钟.
func SetClock(s *AudioService, now func() time.Time) {
	s.now = now
}

// SetUUIDGenerator 替换 uuid 生成函数.
func SetUUIDGenerator(s *AudioService, fn func() string) {
	s.newUUID = fn
}
