package service

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize 以 1024 为进制格式化字节数，保留一位小数，例如 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	v := float64(bytes)
	i := 0

	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}

	return fmt.Sprintf("%.1f %s", v, sizeUnits[i])
}

var extPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,16}$`)

// fileExt 取原始文件名的扩展名（含点）. 不合法或没有扩展名时返回空串.
func fileExt(name string) string {
	name = name[strings.LastIndexAny(name, `/\`)+1:]

	ext := path.Ext(name)
	if ext == name || !extPattern.MatchString(ext) {
		return ""
	}

	return ext
}
