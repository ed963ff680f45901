package handle

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ETag 由 uuid 与文件大小计算强校验值. 文件写入后不会改变.
func ETag(uuid string, size int64) string {
	d := xxhash.New()
	_, _ = d.WriteString(uuid)
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.FormatInt(size, 10))

	return `"` + strconv.FormatUint(d.Sum64(), 16) + `"`
}
