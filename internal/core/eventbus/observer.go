// Package eventbus 实现事件总线
package eventbus

import (
	"time"

	pkgif "github.com/dep2p/go-statebus/pkg/interfaces"
)

// nopObserver 未配置观察者时使用
type nopObserver struct{}

var _ pkgif.Observer = nopObserver{}

func (nopObserver) Published(any) {}
func (nopObserver) Dropped(any) {}
func (nopObserver) Delivered(any, bool, time.Duration) {}
func (nopObserver) HandlerFailed(any, bool) {}
func (nopObserver) SubscriptionsChanged(int) {}
func (nopObserver) CachedKeys(int) {}
