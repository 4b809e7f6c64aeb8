package id

import (
	"github.com/google/uuid"
)

// New 生成新的任务/资源ID（UUID v4 字符串）
func New() string {
	return uuid.New().String()
}

// IsValid 检查ID是否为合法的UUID格式
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
