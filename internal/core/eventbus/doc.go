// Package eventbus 实现进程内带状态的事件总线
//
// 每个事件键维护两份状态：
//   - 最新值缓存（ValueCell）：absent 或 present(v)
//   - 处理器注册表：按订阅顺序排列的活跃订阅
//
// 订阅时若键已有缓存值，在 Subscribe 返回前同步回放给新处理器，
// 发布方与订阅方的先后顺序因此不再影响是否能拿到最新值。
//
// # 快速开始
//
//	bus := eventbus.NewBus()
//
//	bus.Publish("config", cfg)
//
//	// 晚到的订阅者立即收到 cfg
//	sub := bus.SubscribeFunc("config", func(v any) {
//	    apply(v.(*Config))
//	})
//	defer sub.Unsubscribe()
//
// # 移除语义
//
//   - Subscription.Unsubscribe：只移除这一次注册，可重复调用
//   - Unsubscribe(key, h)：移除该键下第一个引用相同的注册
//   - Unsubscribe(key)：不做修改，只输出警告
//   - RemoveAll(key)：移除该键全部注册，缓存值保留
//   - Clear / Destroy / RemoveAll()：移除全部注册并丢弃全部缓存
//
// 注册表变空时该键的条目被删除，开放的键空间不会留下空条目。
//
// # nil 值
//
// 发布 nil（包括 nil 指针、nil map 等）是空操作：不更新缓存，不投递。
//
// # Fx 模块
//
//	app := fx.New(
//	    eventbus.Module(),
//	    fx.Invoke(func(bus pkgif.EventBus) {
//	        bus.SubscribeFunc("ready", onReady)
//	    }),
//	)
//
// # 并发安全
//
// 每个 Bus 使用一把 sync.Mutex 保护两份状态，处理器执行期间不持有锁：
//   - 发布：在锁内更新缓存并对注册表做快照，锁外依次投递
//   - 订阅：在锁内登记并读取缓存，锁外回放
//   - 投递前检查订阅是否仍然有效
//
// 处理器可以在回调中重入同一总线（发布、订阅、取消订阅）。
//
// # 处理器失败
//
// 处理器返回错误或 panic 都视为失败。FailureIsolate（默认）捕获失败并继续投递；
// FailurePropagate 中止本次剩余投递，panic 以 *PanicError 重新抛出。
package eventbus
