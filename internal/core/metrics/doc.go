// Package metrics 提供事件总线的 Prometheus 指标
//
// Collector 实现 interfaces.Observer，由事件总线在发布、投递、失败和订阅变化时
// 同步调用，并作为 prometheus.Collector 注册到任意 Registerer。
//
// # 指标
//
//	<ns>_<sub>_published_total            有效发布次数
//	<ns>_<sub>_dropped_total              被忽略的 nil 发布
//	<ns>_<sub>_deliveries_total{kind}     成功投递（live/replay）
//	<ns>_<sub>_handler_failures_total{reason}  处理器失败（error/panic）
//	<ns>_<sub>_handler_duration_seconds   处理器耗时
//	<ns>_<sub>_subscriptions              活跃订阅数
//	<ns>_<sub>_cached_keys                缓存键数量
//	<ns>_<sub>_publish_rate               最近一分钟平均发布速率
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector(config.DefaultMetricsConfig())
//	reg.MustRegister(c)
//
//	bus := eventbus.NewBus(eventbus.WithObserver(c))
//
// # Fx 模块
//
//	app := fx.New(
//	    fx.Provide(func() prometheus.Registerer { return reg }),
//	    metrics.Module,
//	    eventbus.Module(),
//	)
package metrics
