// Package eventbus 实现事件总线
package eventbus

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-statebus/pkg/interfaces"
	"github.com/dep2p/go-statebus/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 事件总线
//
// values 与 sinks 是两份平行的按键状态：values 中存在某键即表示该键的缓存值
// 为 present，sinks 中只保留至少有一个活跃订阅的键。
//
// 任何处理器执行期间都不持有 mu，处理器可以在回调中重入总线。
type Bus struct {
	mu sync.Mutex

	// values 最新值缓存
	values map[any]any

	// sinks 处理器注册表，按订阅顺序排列
	sinks map[any][]*Subscription

	cfg busConfig

	// 统计
	published     atomic.Uint64
	dropped       atomic.Uint64
	delivered     atomic.Uint64
	replayed      atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
	handlerNs     atomic.Int64
}

var _ pkgif.EventBus = (*Bus)(nil)

// NewBus 创建新的事件总线
func NewBus(opts ...Option) *Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bus{
		values: make(map[any]any),
		sinks:  make(map[any][]*Subscription),
		cfg:    cfg,
	}
}

// Policy 返回当前失败策略
func (b *Bus) Policy() FailurePolicy {
	return b.cfg.policy
}

// ============================================================================
// 订阅
// ============================================================================

// Subscribe 订阅事件
//
// 订阅先登记到注册表，再检查缓存；若缓存存在则在返回前同步回放一次。
func (b *Bus) Subscribe(key any, handler pkgif.Handler) pkgif.Subscription {
	if handler == nil {
		logger.Warn("忽略 nil 处理器", "key", key)
		return inertSubscription(key)
	}
	if !validKey(key) {
		logger.Warn("忽略不可比较的事件键", "key", fmt.Sprintf("%T", key), "error", ErrInvalidKey)
		return inertSubscription(key)
	}

	sub := newSubscription(b, key, handler)

	b.mu.Lock()
	b.sinks[key] = append(b.sinks[key], sub)
	v, ok := b.values[key]
	b.mu.Unlock()

	b.cfg.observer.SubscriptionsChanged(1)

	if ok {
		b.replay(sub, v)
	}
	return sub
}

// replay 向新订阅回放缓存值
//
// 回放中抛出的 panic（FailurePropagate 策略）在继续抛出前撤销这次登记，
// 调用方拿不到令牌，不能留下无法移除的订阅。
func (b *Bus) replay(sub *Subscription, v any) {
	defer func() {
		if r := recover(); r != nil {
			sub.Unsubscribe()
			panic(r)
		}
	}()
	_ = b.deliver(sub, v, true)
}

// SubscribeFunc 使用普通函数订阅
func (b *Bus) SubscribeFunc(key any, fn func(value any)) pkgif.Subscription {
	if fn == nil {
		return b.Subscribe(key, nil)
	}
	return b.Subscribe(key, pkgif.HandlerFunc(func(v any) error {
		fn(v)
		return nil
	}))
}

// ============================================================================
// 发布
// ============================================================================

// Publish 发布事件
func (b *Bus) Publish(key any, value any) {
	_ = b.publish(key, value)
}

// PublishSync 发布事件，并返回本次投递中处理器失败的合并错误
//
// 失败同样会通过 FailureHandler、日志与 Observer 上报。
func (b *Bus) PublishSync(key any, value any) error {
	return b.publish(key, value)
}

func (b *Bus) publish(key any, value any) error {
	if !validKey(key) {
		logger.Warn("忽略不可比较的事件键", "key", fmt.Sprintf("%T", key), "error", ErrInvalidKey)
		return nil
	}
	if isNil(value) {
		b.dropped.Add(1)
		b.cfg.observer.Dropped(key)
		logger.Debug("忽略 nil 发布", "key", key)
		return nil
	}

	b.mu.Lock()
	_, existed := b.values[key]
	b.values[key] = value
	if !existed {
		// 在锁内上报，与 Clear 的归零保持先后顺序
		b.cfg.observer.CachedKeys(len(b.values))
	}
	// 快照：本次投递不受处理器中对注册表的修改影响
	snapshot := slices.Clone(b.sinks[key])
	b.mu.Unlock()

	b.published.Add(1)
	b.cfg.observer.Published(key)

	var errs error
	for _, sub := range snapshot {
		// 被先前处理器移除的订阅不再投递
		if !sub.Active() {
			continue
		}
		if err := b.deliver(sub, value, false); err != nil {
			errs = multierr.Append(errs, err)
			if b.cfg.policy == FailurePropagate {
				break
			}
		}
	}
	return errs
}

// deliver 调用单个处理器
//
// 处理器返回的错误包装为 *HandlerError，panic 转换为 *PanicError。
// FailurePropagate 策略下 panic 在上报后重新抛出。
func (b *Bus) deliver(sub *Subscription, value any, replay bool) (err error) {
	start := b.cfg.clock.Now()

	var (
		panicked   bool
		panicValue any
		stack      []byte
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
				panicValue = r
				stack = debug.Stack()
			}
		}()
		if herr := sub.handler.Handle(value); herr != nil {
			err = &HandlerError{
				SubscriptionID: sub.id,
				Key:            sub.key,
				Replay:         replay,
				Err:            herr,
			}
		}
	}()

	elapsed := b.cfg.clock.Since(start)
	b.handlerNs.Add(int64(elapsed))

	if panicked {
		perr := &PanicError{
			SubscriptionID: sub.id,
			Key:            sub.key,
			Replay:         replay,
			Value:          panicValue,
			Stack:          string(stack),
		}
		b.fail(sub, perr, true)
		if b.cfg.policy == FailurePropagate {
			panic(perr)
		}
		return perr
	}
	if err != nil {
		b.fail(sub, err, false)
		return err
	}

	if replay {
		b.replayed.Add(1)
	} else {
		b.delivered.Add(1)
	}
	b.cfg.observer.Delivered(sub.key, replay, elapsed)
	return nil
}

// fail 上报处理器失败
func (b *Bus) fail(sub *Subscription, err error, panicked bool) {
	if panicked {
		b.handlerPanics.Add(1)
	} else {
		b.handlerErrors.Add(1)
	}
	b.cfg.observer.HandlerFailed(sub.key, panicked)
	logger.Warn("处理器执行失败",
		"key", sub.key,
		"subscription", sub.id,
		"policy", b.cfg.policy,
		"error", err)

	if h := b.cfg.failureHandler; h != nil {
		func() {
			// 失败回调自身的 panic 不影响总线
			defer func() { _ = recover() }()
			h(err)
		}()
	}
}

// ============================================================================
// 移除
// ============================================================================

// Unsubscribe 按处理器引用移除订阅
//
// 每个 handler 移除该键下第一个引用相同的订阅；键或处理器不存在时为空操作。
// 不带 handler 调用不会修改任何状态，只输出一条警告。
func (b *Bus) Unsubscribe(key any, handlers ...pkgif.Handler) {
	if len(handlers) == 0 {
		if b.cfg.warnCoarse {
			logger.Warn("Unsubscribe 未指定处理器，未做任何修改；移除某个键的全部订阅请使用 RemoveAll，完全重置请使用 Clear",
				"key", key)
		}
		return
	}
	if !validKey(key) {
		return
	}

	removed := 0
	b.mu.Lock()
	for _, h := range handlers {
		subs := b.sinks[key]
		for i, s := range subs {
			if !sameHandler(s.handler, h) {
				continue
			}
			s.detach()
			b.dropSinkLocked(key, subs, i)
			removed++
			break
		}
	}
	b.mu.Unlock()

	if removed > 0 {
		b.cfg.observer.SubscriptionsChanged(-removed)
	}
}

// removeSub 移除单个订阅，供 Subscription.Unsubscribe 使用
func (b *Bus) removeSub(sub *Subscription) {
	b.mu.Lock()
	subs := b.sinks[sub.key]
	idx := slices.Index(subs, sub)
	if idx < 0 || !sub.detach() {
		b.mu.Unlock()
		return
	}
	b.dropSinkLocked(sub.key, subs, idx)
	b.mu.Unlock()

	b.cfg.observer.SubscriptionsChanged(-1)
}

// dropSinkLocked 从注册表删除第 i 个订阅，注册表为空时删除该键
func (b *Bus) dropSinkLocked(key any, subs []*Subscription, i int) {
	subs = slices.Delete(subs, i, i+1)
	if len(subs) == 0 {
		delete(b.sinks, key)
		return
	}
	b.sinks[key] = subs
}

// RemoveAll 移除指定键的全部订阅
//
// 缓存值保留，之后的订阅者仍会收到回放。不带 key 调用等价于 Clear。
func (b *Bus) RemoveAll(keys ...any) {
	if len(keys) == 0 {
		b.Clear()
		return
	}

	removed := 0
	b.mu.Lock()
	for _, key := range keys {
		if !validKey(key) {
			continue
		}
		for _, s := range b.sinks[key] {
			if s.detach() {
				removed++
			}
		}
		delete(b.sinks, key)
	}
	b.mu.Unlock()

	if removed > 0 {
		b.cfg.observer.SubscriptionsChanged(-removed)
	}
}

// Clear 移除全部订阅并丢弃全部缓存值
//
// 调用后总线等价于新建实例，可以继续使用。统计计数不清零。
func (b *Bus) Clear() {
	removed := 0
	b.mu.Lock()
	for _, subs := range b.sinks {
		for _, s := range subs {
			if s.detach() {
				removed++
			}
		}
	}
	b.sinks = make(map[any][]*Subscription)
	b.values = make(map[any]any)
	b.cfg.observer.CachedKeys(0)
	b.mu.Unlock()

	if removed > 0 {
		b.cfg.observer.SubscriptionsChanged(-removed)
	}
}

// Destroy 是 Clear 的别名
func (b *Bus) Destroy() {
	b.Clear()
}

// ============================================================================
// 查询
// ============================================================================

// CurrentValue 返回键的缓存值
func (b *Bus) CurrentValue(key any) (any, bool) {
	if !validKey(key) {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	return v, ok
}

// HasListeners 键是否有活跃订阅
func (b *Bus) HasListeners(key any) bool {
	return b.ListenerCount(key) > 0
}

// ListenerCount 键的活跃订阅数
func (b *Bus) ListenerCount(key any) int {
	if !validKey(key) {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sinks[key])
}

// Keys 返回所有持有缓存值或活跃订阅的键，顺序不保证
func (b *Bus) Keys() []any {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]any, 0, len(b.values)+len(b.sinks))
	for k := range b.values {
		keys = append(keys, k)
	}
	for k := range b.sinks {
		if _, ok := b.values[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// ============================================================================
// 统计
// ============================================================================

// Stats 总线统计
type Stats struct {
	// Published 有效发布次数
	Published uint64

	// Dropped 被忽略的 nil 发布次数
	Dropped uint64

	// Delivered 发布时成功投递次数
	Delivered uint64

	// Replayed 订阅回放成功次数
	Replayed uint64

	// HandlerErrors 处理器返回错误次数
	HandlerErrors uint64

	// HandlerPanics 处理器 panic 次数
	HandlerPanics uint64

	// ActiveSubscriptions 当前活跃订阅数
	ActiveSubscriptions int

	// CachedKeys 当前持有缓存值的键数
	CachedKeys int

	// TotalHandlerTime 处理器累计耗时
	TotalHandlerTime time.Duration
}

// Stats 返回当前统计
func (b *Bus) Stats() Stats {
	b.mu.Lock()
	active := 0
	for _, subs := range b.sinks {
		active += len(subs)
	}
	cached := len(b.values)
	b.mu.Unlock()

	return Stats{
		Published:           b.published.Load(),
		Dropped:             b.dropped.Load(),
		Delivered:           b.delivered.Load(),
		Replayed:            b.replayed.Load(),
		HandlerErrors:       b.handlerErrors.Load(),
		HandlerPanics:       b.handlerPanics.Load(),
		ActiveSubscriptions: active,
		CachedKeys:          cached,
		TotalHandlerTime:    time.Duration(b.handlerNs.Load()),
	}
}

// ============================================================================
// 内部方法
// ============================================================================

// validKey 键必须非 nil 且可哈希
//
// 结构体与数组的类型可比较，但接口字段中的动态值可能不可哈希，
// 这类键在锁外试插一次临时 map 确认。
func validKey(key any) (ok bool) {
	if key == nil {
		return false
	}
	t := reflect.TypeOf(key)
	if !t.Comparable() {
		return false
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Array:
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		_ = map[any]struct{}{key: {}}
	}
	return true
}

// isNil 判断值是否为"无值"：nil 接口或可为 nil 类型的 nil 值
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// inertSubscription 返回一个已失效、不属于任何总线的订阅
func inertSubscription(key any) *Subscription {
	return &Subscription{id: "", key: key}
}
