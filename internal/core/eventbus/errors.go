// Package eventbus 实现事件总线
package eventbus

import (
	"errors"
	"fmt"
)

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrHandlerPanic 处理器发生 panic
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrTypeMismatch 缓存值类型与类型化处理器不匹配
	ErrTypeMismatch = errors.New("event value type mismatch")

	// ErrInvalidKey 事件键不可比较
	ErrInvalidKey = errors.New("event key is not comparable")
)

// HandlerError 处理器返回的错误
type HandlerError struct {
	// SubscriptionID 失败订阅的 ID
	SubscriptionID string

	// Key 事件键
	Key any

	// Replay 是否发生在订阅回放期间
	Replay bool

	// Err 底层错误
	Err error
}

// Error 实现 error 接口
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler error for subscription %s on key %v: %v", e.SubscriptionID, e.Key, e.Err)
}

// Unwrap 返回底层错误
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError 处理器 panic 转换成的错误
type PanicError struct {
	// SubscriptionID 失败订阅的 ID
	SubscriptionID string

	// Key 事件键
	Key any

	// Replay 是否发生在订阅回放期间
	Replay bool

	// Value panic 的值
	Value any

	// Stack panic 时的堆栈
	Stack string
}

// Error 实现 error 接口
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic for subscription %s on key %v: %v", e.SubscriptionID, e.Key, e.Value)
}

// Is 使 errors.Is(err, ErrHandlerPanic) 成立
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
