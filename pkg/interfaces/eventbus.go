// Package interfaces 定义 statebus 公共接口
//
// 本文件定义 EventBus 接口，提供带最新值缓存的事件发布订阅功能。
package interfaces

import "time"

// EventBus 定义事件总线接口
//
// EventBus 按事件键（key）维护两份状态：
//   - 最新值缓存：每个键最近一次发布的值
//   - 处理器注册表：每个键当前活跃的订阅，按订阅顺序排列
//
// 订阅时若键已有缓存值，会在 Subscribe 返回前同步回放给新处理器。
type EventBus interface {
	// Subscribe 订阅指定键的事件
	//
	// 若该键已有缓存值，handler 在 Subscribe 返回前被同步调用一次。
	Subscribe(key any, handler Handler) Subscription

	// SubscribeFunc 使用普通函数订阅
	SubscribeFunc(key any, fn func(value any)) Subscription

	// Publish 发布事件
	//
	// nil 值被视为"无值"，直接忽略：不更新缓存，也不投递。
	Publish(key any, value any)

	// PublishSync 发布事件并返回本次投递中所有处理器失败的合并错误
	PublishSync(key any, value any) error

	// Unsubscribe 按处理器引用移除订阅
	//
	// 每个 handler 只移除该键下第一个引用相同的订阅。HandlerFunc 按代码指针比较：
	// 同一字面量生成的不同闭包，以及同一方法在不同接收者上的方法值
	// （如 HandlerFunc(a.On) 与 HandlerFunc(b.On)）会被视为同一处理器。
	// 需要精确移除某次注册时，使用 Subscribe 返回的 Subscription。
	//
	// 不带 handler 调用时只记录警告，不做任何修改。
	Unsubscribe(key any, handlers ...Handler)

	// RemoveAll 移除指定键的全部订阅，保留缓存值
	//
	// 不带 key 调用等价于 Clear。
	RemoveAll(keys ...any)

	// Clear 移除全部订阅并丢弃全部缓存值
	Clear()

	// Destroy 是 Clear 的别名
	Destroy()

	// CurrentValue 返回键的缓存值，第二个返回值表示是否存在
	CurrentValue(key any) (any, bool)

	// HasListeners 键是否有活跃订阅
	HasListeners(key any) bool

	// ListenerCount 键的活跃订阅数
	ListenerCount(key any) int

	// Keys 返回所有持有缓存值或活跃订阅的键
	Keys() []any
}

// Handler 事件处理器
//
// 返回的错误被视为处理器失败，panic 同样如此。
type Handler interface {
	Handle(value any) error
}

// HandlerFunc 函数形式的处理器
type HandlerFunc func(value any) error

// Handle 实现 Handler
func (f HandlerFunc) Handle(value any) error {
	return f(value)
}

// Subscription 定义事件订阅接口
type Subscription interface {
	// ID 返回订阅的唯一标识
	ID() string

	// Key 返回订阅的事件键
	Key() any

	// Active 订阅是否仍然有效
	Active() bool

	// Unsubscribe 取消订阅，可重复调用
	Unsubscribe()

	// Close 取消订阅（io.Closer 形式）
	Close() error
}

// Observer 观察总线内部活动，用于指标采集
//
// 所有方法都在调用方 goroutine 中同步执行，实现必须并发安全且不可阻塞。
type Observer interface {
	// Published 一次有效发布
	Published(key any)

	// Dropped 一次被忽略的 nil 发布
	Dropped(key any)

	// Delivered 一次成功投递，replay 表示是否为订阅时回放
	Delivered(key any, replay bool, elapsed time.Duration)

	// HandlerFailed 处理器失败，panicked 表示是否为 panic
	HandlerFailed(key any, panicked bool)

	// SubscriptionsChanged 活跃订阅数变化
	SubscriptionsChanged(delta int)

	// CachedKeys 当前缓存键数量
	//
	// 在总线锁内调用，保证上报顺序与缓存变化一致；实现不得回调总线。
	CachedKeys(n int)
}
