// Package eventbus 进程内发布订阅，驱动 SSE 实时推送。
package eventbus

import (
	"context"
	"sync"
	"time"
)

// 事件类型
const (
	TypeTodoStatusChanged = "todo.status_changed"
	TypeStatsUpdated      = "stats.updated"
	TypeHabitCreated      = "habit.created"
	TypeHabitUpdated      = "habit.updated"
)

// Event 一条领域事件
type Event struct {
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// TodoStatusChanged 打卡状态变更事件
func TodoStatusChanged(userID, habitID, date, status string) Event {
	return Event{
		Type: TypeTodoStatusChanged,
		Time: time.Now(),
		Payload: map[string]string{
			"user_id":  userID,
			"habit_id": habitID,
			"date":     date,
			"status":   status,
		},
	}
}

// StatsUpdated 统计行更新完成事件
func StatsUpdated(userID, date string) Event {
	return Event{
		Type: TypeStatsUpdated,
		Time: time.Now(),
		Payload: map[string]string{
			"user_id": userID,
			"date":    date,
		},
	}
}

// HabitChanged 习惯创建或修改事件
func HabitChanged(eventType, userID, habitID string) Event {
	return Event{
		Type: eventType,
		Time: time.Now(),
		Payload: map[string]string{
			"user_id":  userID,
			"habit_id": habitID,
		},
	}
}

// Hub 进程内事件总线。订阅方慢时直接丢事件，不阻塞发布方。
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewHub 创建事件总线
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe 订阅事件流，ctx 取消时自动退订并关闭通道。
func (h *Hub) Subscribe(ctx context.Context, buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()
	return ch
}

// Publish 广播事件给所有订阅者
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
