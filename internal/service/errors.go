package service

import (
	"errors"
	"fmt"

	"github.com/yuqie6/planly/internal/schema"
)

// ErrNotFound 资源不存在（习惯、分类或统计行）
var ErrNotFound = errors.New("资源不存在")

// ScopeUpdateError 单个统计维度更新失败，聚合错误里靠它定位失败的维度
type ScopeUpdateError struct {
	Scope schema.StatsScope
	Err   error
}

func (e *ScopeUpdateError) Error() string {
	return fmt.Sprintf("%s 维度统计更新失败: %v", e.Scope, e.Err)
}

func (e *ScopeUpdateError) Unwrap() error { return e.Err }
