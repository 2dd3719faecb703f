package clock

import (
	"sync"
	"time"
)

// Clock 是全系统统一的时间来源。
// 所有"现在"的比较（揭示时间判断、回顾扫描的日期匹配）都必须通过它，
// 这样测试可以用Mock推进时间而不必真的等待。
type Clock interface {
	Now() time.Time
}

// System 直接代理 time.Now。
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Mock 是测试用的可设置时钟。
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock 创建一个固定在给定时刻的Mock时钟。
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set 把时钟拨到指定时刻。
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance 把时钟向前拨动一段时长。
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
