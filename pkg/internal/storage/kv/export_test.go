package kv

import "time"

// SetClock 替换内存实现的时钟.
func SetClock(s KVStore, now func() time.Time) {
	if m, ok := s.(*MemoryKV); ok {
		m.now = now
	}
}

var (
	EncodeWithTTL = encodeWithTTL
	DecodeWithTTL = decodeWithTTL
)
