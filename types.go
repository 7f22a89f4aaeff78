package statebus

import (
	"github.com/dep2p/go-statebus/internal/core/eventbus"
	pkgif "github.com/dep2p/go-statebus/pkg/interfaces"
)

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Bus 事件总线实现
	Bus = eventbus.Bus

	// Stats 总线统计快照
	Stats = eventbus.Stats

	// EventBus 事件总线接口
	EventBus = pkgif.EventBus

	// Handler 事件处理器
	Handler = pkgif.Handler

	// HandlerFunc 函数形式的处理器
	HandlerFunc = pkgif.HandlerFunc

	// Subscription 订阅令牌
	Subscription = pkgif.Subscription

	// Observer 总线事件观察者
	Observer = pkgif.Observer

	// FailurePolicy 处理器失败策略
	FailurePolicy = eventbus.FailurePolicy

	// FailureHandler 处理器失败回调
	FailureHandler = eventbus.FailureHandler
)

const (
	// FailureIsolate 单个处理器失败不影响其余处理器（默认）
	FailureIsolate = eventbus.FailureIsolate

	// FailurePropagate 首个失败中止本次剩余投递
	FailurePropagate = eventbus.FailurePropagate
)
