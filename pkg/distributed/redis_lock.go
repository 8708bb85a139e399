package distributed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisLock Redis 分布式锁
// 用于串行化同一张工单的并发移动/审批（多实例部署时）
type RedisLock struct {
	client *redis.Client
	key    string
	value  string
	expiry time.Duration
}

// NewTicketLock 创建工单级别的锁
// 如果client为nil（Redis未启用），返回的锁会直接放行（单机模式由数据库版本号兜底）
func NewTicketLock(client *redis.Client, ticketID string, expiry time.Duration) *RedisLock {
	return &RedisLock{
		client: client,
		key:    fmt.Sprintf("crm:ticket:lock:%s", ticketID),
		value:  uuid.New().String(), // 使用 UUID 作为锁的值，防止误释放
		expiry: expiry,
	}
}

// TryLock 尝试获取锁（非阻塞）
// Redis未启用时返回true：锁只是并发优化，正确性由乐观锁版本号保证
func (l *RedisLock) TryLock(ctx context.Context) (bool, error) {
	if l.client == nil {
		return true, nil
	}

	// SET NX EX：key 不存在则设置并带过期时间
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.expiry).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return ok, nil
}

// Unlock 释放锁
func (l *RedisLock) Unlock(ctx context.Context) error {
	if l.client == nil {
		return nil
	}

	// Lua 脚本保证原子性：只有持有锁的实例才能释放
	script := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`

	result, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	if result == int64(0) {
		log.Printf("[RedisLock] Lock %s was not held by this instance", l.key)
	}
	return nil
}
