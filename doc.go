// Package statebus 提供带最新值缓存的进程内发布/订阅事件总线
//
// 总线为每个事件键缓存最近一次发布的值，之后订阅该键的处理器会在订阅返回前
// 立即收到这份缓存值（回放），因此"已就绪""当前配置"这类状态型事件不会因为
// 订阅晚于发布而丢失。
//
// # 快速开始
//
//	import "github.com/dep2p/go-statebus"
//
//	bus, err := statebus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bus.Destroy()
//
//	bus.Publish("config", cfg)
//
//	// 晚到的订阅者立即收到 cfg
//	sub := bus.SubscribeFunc("config", func(v any) {
//	    apply(v.(*Config))
//	})
//	defer sub.Unsubscribe()
//
// # 类型化主题
//
//	var Ready = statebus.NewTopic[bool]("ready")
//
//	statebus.Subscribe(bus, Ready, func(ok bool) { ... })
//	statebus.Publish(bus, Ready, true)
//	ok, _ := statebus.CurrentValue(bus, Ready)
//
// # 投递语义
//
//   - 同步投递：Publish 在调用方 goroutine 上按订阅顺序依次调用处理器
//   - 只保留最新值：没有队列，也没有背压
//   - 发布 nil 是空操作：缓存与处理器都不受影响
//   - 处理器可以在回调中重入总线（订阅、取消订阅、发布、Clear）
//   - 处理器失败默认隔离，WithFailurePolicy(FailurePropagate) 改为中止剩余投递
//
// # 运行时
//
// Start 使用 Fx 组装总线、Prometheus 指标与日志，并在 Stop 时统一释放：
//
//	rt, err := statebus.Start(ctx, statebus.WithConfigFile("statebus.json"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
// # 文件组织
//
//	statebus/
//	├── doc.go        # 包文档
//	├── statebus.go   # New、MustNew
//	├── topic.go      # Topic[T] 与泛型辅助函数
//	├── fx.go         # Runtime、Start、Fx 组装
//	├── options.go    # WithXxx 配置选项
//	├── types.go      # 类型别名、版本
//	└── errors.go     # 错误定义
package statebus
