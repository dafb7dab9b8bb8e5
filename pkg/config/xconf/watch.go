package xconf

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchFunc 在配置文件变更并重载后调用；err 非 nil 时配置保持旧值。
type WatchFunc func(cfg Config, err error)

// Watcher 监视配置文件变更并自动重载。回调在同一个后台 goroutine 中串行执行。
type Watcher struct {
	cfg      *koanfConfig
	fs       *fsnotify.Watcher
	fn       WatchFunc
	debounce time.Duration
	fire     chan struct{}
	done     chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// Watch 开始监视从文件创建的 cfg，返回后后台 goroutine 已在运行。
func Watch(cfg Config, fn WatchFunc, opts ...WatchOption) (*Watcher, error) {
	kc, ok := cfg.(*koanfConfig)
	if !ok {
		return nil, fmt.Errorf("xconf: cannot watch %T", cfg)
	}
	if kc.path == "" {
		return nil, ErrNotReloadable
	}
	o := &watchOptions{debounce: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(o)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	// 监视目录而非文件：原子写入会替换文件本身
	dir := filepath.Dir(kc.path)
	if err := fs.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch %s: %w", dir, err), fs.Close())
	}

	w := &Watcher{
		cfg:      kc,
		fs:       fs,
		fn:       fn,
		debounce: o.debounce,
		fire:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// WatchSettings 监视配置文件，每次成功重载后把校验通过的运行配置交给 fn。
func WatchSettings(path string, fn func(*Settings, error), opts ...WatchOption) (*Watcher, error) {
	cfg, err := New(path)
	if err != nil {
		return nil, err
	}
	return Watch(cfg, func(c Config, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		fn(SettingsFrom(c))
	}, opts...)
}

// Stop 停止监视。可重复调用，在回调中调用不会死锁；返回后不再开始新的回调。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) run() {
	name := filepath.Base(w.cfg.path)
	for {
		select {
		case <-w.done:
			return
		case <-w.fire:
			w.notify(w.cfg.Reload)
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) == name && ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.notify(func() error { return fmt.Errorf("xconf: watch: %w", err) })
		}
	}
}

// schedule 重置防抖计时器，到期后由 run 执行重载。
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) notify(op func() error) {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	err := op()
	if w.fn != nil {
		w.fn(w.cfg, err)
	}
}
