package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrCourseNotPublished = errors.New("course not published")
)

// AggregationError 聚合查询失败或超时。不在本层重试，
// 由调用方决定降级策略（兜底旧值、整体报错等）。
type AggregationError struct {
	Op  string // 失败的汇总操作，如 "global_rollup"
	Err error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation %s: %v", e.Op, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// NewAggregationError 包装底层查询错误，nil 原样返回
func NewAggregationError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &AggregationError{Op: op, Err: err}
}

// IsAggregationError 判断错误链上是否有聚合查询错误
func IsAggregationError(err error) bool {
	var aggErr *AggregationError
	return errors.As(err, &aggErr)
}
