// Package safe_close coordinates graceful shutdown of attached workers
// Package safe_close 协调已挂载协程的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to every attached worker and waits for them
type SafeClose struct {
	closeOnce sync.Once
	signal    chan struct{}
	wg        sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewSafeClose 创建关闭协调器
func NewSafeClose() *SafeClose {
	return &SafeClose{signal: make(chan struct{})}
}

// Attach runs fn in a new goroutine. fn must call done when it has finished cleaning up.
// Attach 挂载工作协程，fn 完成清理后必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	go fn(func() { once.Do(s.wg.Done) }, s.signal)
}

// SendCloseSignal closes the signal channel once; the first non-nil err is kept
// SendCloseSignal 发送关闭信号（只生效一次）
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if s.err == nil && err != nil {
		s.err = err
	}
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.signal) })
}

// CloseSignal returns the channel closed by SendCloseSignal
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.signal
}

// WaitClosed blocks until every attached worker called done
// WaitClosed 等待所有协程退出
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
