package services

import (
	"context"
	"log"
	"sync"
	"time"

	"breadit/internal/models"
)

// PostCacheStore is the write side of the hot-post cache.
type PostCacheStore interface {
	WritePost(ctx context.Context, post models.CachedPost) error
}

// CacheDispatcher 异步把热帖快照写入缓存，写入失败只记录日志，不影响投票请求
type CacheDispatcher struct {
	store    PostCacheStore
	queue    chan string                  // 待写入的帖子 ID 队列
	pending  map[string]models.CachedPost // 每个帖子只保留最新的快照
	mu       sync.Mutex
	interval time.Duration
	timeout  time.Duration

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewCacheDispatcher creates a dispatcher that flushes every interval.
func NewCacheDispatcher(store PostCacheStore, interval time.Duration) *CacheDispatcher {
	return &CacheDispatcher{
		store:    store,
		queue:    make(chan string, 1000), // 缓冲队列，防止阻塞
		pending:  make(map[string]models.CachedPost),
		interval: interval,
		timeout:  2 * time.Second,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start 启动后台 worker
func (d *CacheDispatcher) Start() {
	go d.worker()
}

// Schedule 将快照加入写入队列（异步）。
// A post already waiting in the queue only has its snapshot replaced.
func (d *CacheDispatcher) Schedule(post models.CachedPost) {
	d.mu.Lock()
	_, queued := d.pending[post.ID]
	d.pending[post.ID] = post
	d.mu.Unlock()
	if queued {
		return
	}

	// 非阻塞发送到队列
	select {
	case d.queue <- post.ID:
	default:
		// 队列满了，移除 pending 标记
		d.mu.Lock()
		delete(d.pending, post.ID)
		d.mu.Unlock()
		log.Printf("Hot cache queue is full, skipping post %s", post.ID)
	}
}

// Stop flushes everything still queued and waits for the worker to exit.
func (d *CacheDispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.quit) })
	<-d.done
}

// worker 后台处理队列中的写入请求
func (d *CacheDispatcher) worker() {
	defer close(d.done)

	// 批量处理：收集一批请求后统一处理
	batch := make([]string, 0, 50)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case postID := <-d.queue:
			batch = append(batch, postID)
			// 如果达到批量大小，立即处理
			if len(batch) >= 50 {
				d.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			// 定时处理剩余的
			if len(batch) > 0 {
				d.processBatch(batch)
				batch = batch[:0]
			}
		case <-d.quit:
			for {
				select {
				case postID := <-d.queue:
					batch = append(batch, postID)
				default:
					d.processBatch(batch)
					return
				}
			}
		}
	}
}

// processBatch 批量写入快照
func (d *CacheDispatcher) processBatch(postIDs []string) {
	for _, postID := range postIDs {
		d.mu.Lock()
		snapshot, ok := d.pending[postID]
		delete(d.pending, postID)
		d.mu.Unlock()
		if !ok {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.store.WritePost(ctx, snapshot); err != nil {
			log.Printf("Failed to cache post %s: %v", postID, err)
		}
		cancel()
	}
}
