package statebus

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dep2p/go-statebus/config"
	"github.com/dep2p/go-statebus/internal/core/eventbus"
	"github.com/dep2p/go-statebus/internal/core/metrics"
	pkgif "github.com/dep2p/go-statebus/pkg/interfaces"
	"github.com/dep2p/go-statebus/pkg/lib/log"
)

var fxLogger = log.Logger("statebus/fx")

// ════════════════════════════════════════════════════════════════════════════
//                              Runtime
// ════════════════════════════════════════════════════════════════════════════

// Runtime 由 Fx 管理生命周期的事件总线
//
// Start 时按配置设置全局日志、注册指标；Stop 时销毁总线（丢弃全部订阅与缓存）、
// 注销指标并关闭日志文件。
type Runtime struct {
	app *fx.App
	cfg *config.Config

	bus       *eventbus.Bus
	collector *metrics.Collector

	logFile io.Closer
	stopped atomic.Bool
}

// Start 创建并启动运行时
//
// 示例:
//
//	rt, err := statebus.Start(ctx,
//	    statebus.WithPreset("production"),
//	    statebus.WithMetrics(prometheus.DefaultRegisterer),
//	)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	bus := rt.Bus()
func Start(ctx context.Context, opts ...Option) (*Runtime, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}

	logFile, err := setupLogging(cfg.Log)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{cfg: cfg, logFile: logFile}
	app := buildFxApp(cfg, o, rt)
	if err := app.Err(); err != nil {
		rt.closeLog()
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		rt.closeLog()
		return nil, fmt.Errorf("start fx app: %w", err)
	}
	rt.app = app

	fxLogger.Info("运行时已启动",
		"policy", cfg.EventBus.FailurePolicy,
		"metrics", rt.collector != nil)
	return rt, nil
}

// Bus 返回运行时持有的事件总线
func (r *Runtime) Bus() *Bus {
	return r.bus
}

// Collector 返回指标采集器，指标未启用时返回 nil
func (r *Runtime) Collector() prometheus.Collector {
	if r.collector == nil {
		return nil
	}
	return r.collector
}

// Config 返回运行时使用的配置副本
func (r *Runtime) Config() *config.Config {
	return config.CloneConfig(r.cfg)
}

// Stop 停止运行时
//
// 重复调用返回 ErrRuntimeStopped。
func (r *Runtime) Stop(ctx context.Context) error {
	if !r.stopped.CompareAndSwap(false, true) {
		return ErrRuntimeStopped
	}
	err := r.app.Stop(ctx)
	fxLogger.Info("运行时已停止")
	return multierr.Append(err, r.closeLog())
}

// Close 使用后台 context 停止运行时
func (r *Runtime) Close() error {
	return r.Stop(context.Background())
}

func (r *Runtime) closeLog() error {
	if r.logFile == nil {
		return nil
	}
	lvl, _ := r.cfg.Log.SlogLevel()
	log.Setup(os.Stderr, lvl, r.cfg.Log.Format == "json")
	err := r.logFile.Close()
	r.logFile = nil
	return err
}

// ════════════════════════════════════════════════════════════════════════════
//                              Fx 组装
// ════════════════════════════════════════════════════════════════════════════

// buildFxApp 构建 Fx 应用
//
// 加载顺序：配置 → 指标（可选）→ 事件总线。
// 用户通过 WithObserver 提供观察者时不加载指标模块。
func buildFxApp(cfg *config.Config, o *options, rt *Runtime) *fx.App {
	modules := []fx.Option{
		fx.Supply(cfg),
	}

	if o.observer != nil {
		obs := o.observer
		modules = append(modules, fx.Provide(func() pkgif.Observer { return obs }))
	} else {
		modules = append(modules, metrics.Module)
		if o.registerer != nil {
			reg := o.registerer
			modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
		}
		modules = append(modules, fx.Populate(&rt.collector))
	}

	if o.failureHandler != nil {
		h := o.failureHandler
		modules = append(modules, fx.Provide(func() eventbus.FailureHandler { return h }))
	}
	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	modules = append(modules,
		eventbus.Module(),
		fx.Populate(&rt.bus),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: fxZapLogger(cfg.Log)}
		}),
	)

	return fx.New(modules...)
}

// fxZapLogger 返回 Fx 事件使用的 zap logger，默认不输出
func fxZapLogger(cfg config.LogConfig) *zap.Logger {
	if !cfg.FxEvents {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// setupLogging 按日志配置重建全局 logger
func setupLogging(cfg config.LogConfig) (io.Closer, error) {
	lvl, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	log.Setup(w, lvl, cfg.Format == "json")
	return closer, nil
}
