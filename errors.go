package statebus

import (
	"errors"

	"github.com/dep2p/go-statebus/internal/core/eventbus"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 处理器失败
	// ────────────────────────────────────────────────────────────────────────

	// ErrHandlerPanic 处理器发生 panic，可用 errors.Is 判断
	ErrHandlerPanic = eventbus.ErrHandlerPanic

	// ErrTypeMismatch 类型化主题收到了非 T 类型的值
	ErrTypeMismatch = eventbus.ErrTypeMismatch

	// ErrInvalidKey 事件键不可比较
	ErrInvalidKey = eventbus.ErrInvalidKey

	// ────────────────────────────────────────────────────────────────────────
	// 运行时错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrRuntimeStopped 运行时已停止
	ErrRuntimeStopped = errors.New("runtime stopped")
)

// HandlerError 处理器返回错误时上报的错误类型
type HandlerError = eventbus.HandlerError

// PanicError 处理器 panic 时上报的错误类型
type PanicError = eventbus.PanicError
