package resolve

import "sync"

// Waker 单槽唤醒原语
//
// 解析循环每次轮询前注册一个等待通道，事件方通过 Wake 唤醒它。
// 三条规则封死了「读取与挂起之间丢失唤醒」的窗口：
//
//   - Register 返回新通道并替换旧注册，被替换的通道不再收到信号
//   - Wake 在有注册时向通道发信号（容量 1，多次唤醒合并）
//   - Wake 在无注册时置 pending 位，下一次 Register 立即消费
type Waker struct {
	mu      sync.Mutex
	ch      chan struct{}
	pending bool
}

// NewWaker 创建唤醒原语
func NewWaker() *Waker {
	return &Waker{}
}

// Register 注册等待通道
//
// 返回的通道在下一次 Wake 时收到信号。此前如有未消费的
// 唤醒（pending 位），立即写入返回的通道。
func (w *Waker) Register() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan struct{}, 1)
	w.ch = ch
	if w.pending {
		w.pending = false
		ch <- struct{}{}
	}
	return ch
}

// Wake 唤醒当前注册者
//
// 无注册者时记下 pending 位。对同一注册通道的多次唤醒合并为一次。
func (w *Waker) Wake() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ch == nil {
		w.pending = true
		return
	}
	select {
	case w.ch <- struct{}{}:
	default:
		// 通道里已有未消费的信号
	}
}
