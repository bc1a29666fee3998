package resolve

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultQueryCooldown 默认的 DHT 查询冷却时间
const DefaultQueryCooldown = 2 * time.Second

// queryThrottle DHT 查询节流
//
// 两条规则：
//   - 两次查询之间至少间隔一个冷却期
//   - 冷却期内至多一个在途查询；在途查询经过一个完整冷却期
//     仍无结果即视为已结算，允许重发
//
// 初始 lastIssuedAt 回拨一个冷却期，使首次查询立即获准。
type queryThrottle struct {
	clk      clock.Clock
	cooldown time.Duration

	mu           sync.Mutex
	outstanding  bool
	lastIssuedAt time.Time
}

// newQueryThrottle 创建查询节流器
func newQueryThrottle(clk clock.Clock, cooldown time.Duration) *queryThrottle {
	return &queryThrottle{
		clk:          clk,
		cooldown:     cooldown,
		lastIssuedAt: clk.Now().Add(-cooldown),
	}
}

// shouldQuery 返回当前是否允许发起新查询
//
// 冷却期满时顺带结算仍无答复的在途查询。
func (t *queryThrottle) shouldQuery() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clk.Since(t.lastIssuedAt) < t.cooldown {
		return false
	}
	t.outstanding = false
	return true
}

// markIssued 记录查询已发出
func (t *queryThrottle) markIssued() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outstanding = true
	t.lastIssuedAt = t.clk.Now()
}

// markSettled 记录查询已得到答复
//
// 任何提及目标节点的发现事件都视为答复。
func (t *queryThrottle) markSettled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outstanding = false
}

// isOutstanding 返回是否有在途查询
func (t *queryThrottle) isOutstanding() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outstanding
}

// remaining 返回距下次允许查询的剩余冷却时间
//
// 已经允许时返回 0。在途查询与冷却共用同一到期边界，
// 到期即允许重发。
func (t *queryThrottle) remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	rem := t.cooldown - t.clk.Since(t.lastIssuedAt)
	if rem < 0 {
		return 0
	}
	return rem
}
