// Package interfaces 定义 statebus 的公共接口
//
// 本包只包含接口与最小的辅助类型，实现位于 internal/ 下：
//   - eventbus.go - EventBus、Handler、Subscription、Observer
//
// # 设计原则
//
//   - 接口只描述行为，不暴露实现细节
//   - 实现包通过 var _ Interface = (*Impl)(nil) 做编译期检查
//   - 指标等可选能力通过 Observer 注入，不进入 EventBus 接口
package interfaces
