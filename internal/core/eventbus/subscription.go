// Package eventbus 实现事件总线
package eventbus

import (
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"

	pkgif "github.com/dep2p/go-statebus/pkg/interfaces"
)

// ============================================================================
// Subscription 实现
// ============================================================================

// Subscription 订阅
//
// 一个 Subscription 对应某个键下的一次注册。同一个处理器可以重复注册，
// 每次注册都是独立的 Subscription。
type Subscription struct {
	bus     *Bus
	id      string
	key     any
	handler pkgif.Handler
	active  atomic.Bool
}

// newSubscription 创建订阅
func newSubscription(b *Bus, key any, h pkgif.Handler) *Subscription {
	s := &Subscription{
		bus:     b,
		id:      uuid.NewString(),
		key:     key,
		handler: h,
	}
	s.active.Store(true)
	return s
}

// ID 返回订阅 ID
func (s *Subscription) ID() string {
	return s.id
}

// Key 返回事件键
func (s *Subscription) Key() any {
	return s.key
}

// Active 订阅是否有效
func (s *Subscription) Active() bool {
	return s.active.Load()
}

// Unsubscribe 取消订阅
//
// 可以重复调用，第二次起为空操作。若该键的注册表因此变空，注册表条目会被删除；
// 缓存值不受影响。
func (s *Subscription) Unsubscribe() {
	if s.bus == nil {
		s.active.Store(false)
		return
	}
	s.bus.removeSub(s)
}

// Close 取消订阅
func (s *Subscription) Close() error {
	s.Unsubscribe()
	return nil
}

// detach 将订阅标记为失效，仅第一次返回 true
func (s *Subscription) detach() bool {
	return s.active.CompareAndSwap(true, false)
}

// ============================================================================
// 处理器比较
// ============================================================================

// sameHandler 判断两个处理器是否为同一引用
//
// 可比较类型使用 ==；函数类型比较代码指针，同一字面量生成的不同闭包、
// 同一方法在不同接收者上的方法值都无法区分，需要精确移除时应使用 Subscription 本身。
// 动态值不可比较时视为不同。
func sameHandler(a, b pkgif.Handler) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Func {
		return va.Pointer() == vb.Pointer()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
