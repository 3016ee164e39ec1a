package worker

import (
	"context"
	"loyalty_points_api/internal/pkg/broker"
	"loyalty_points_api/pkg/logger"
	"loyalty_points_api/pkg/metrics"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventTask 待发布的事件
type EventTask struct {
	Key   string
	Event interface{}
	Retry int // 重试次数
}

// WorkerPool 异步发布领域事件，发布失败不影响请求结果
type WorkerPool struct {
	TaskQueue  chan EventTask
	RetryQueue chan EventTask // 重试队列
	Publisher  broker.Publisher
	Metrics    *metrics.MetricsCollector
	WorkerNum  int
	MaxRetry   int // 最大重试次数
	RetryDelay time.Duration

	wg       sync.WaitGroup
	retryWg  sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

func NewWorkerPool(publisher broker.Publisher, collector *metrics.MetricsCollector, workerNum int, bufferSize int) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize <= 1 {
		bufferSize = 2
	}
	return &WorkerPool{
		TaskQueue:  make(chan EventTask, bufferSize),
		RetryQueue: make(chan EventTask, bufferSize/2),
		Publisher:  publisher,
		Metrics:    collector,
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
		RetryDelay: time.Second,
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	p.retryWg.Add(1)
	go p.retryWorker()
	logger.Log.Info("worker pool started", zap.Int("workers", p.WorkerNum))
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for task := range p.TaskQueue {
		err := p.processTask(task)
		if p.Metrics != nil {
			p.Metrics.RecordEvent(p.Publisher.Topic(), err)
		}
		if err == nil {
			continue
		}

		logger.Log.Warn("publish event failed",
			zap.Int("worker", id),
			zap.String("key", task.Key),
			zap.Int("retry", task.Retry),
			zap.Error(err),
		)

		// 如果未达到最大重试次数，加入重试队列
		if task.Retry < p.MaxRetry {
			task.Retry++
			if !p.offer(p.RetryQueue, task) {
				p.logFailedTask(task, err)
			}
		} else {
			p.logFailedTask(task, err)
		}
	}
}

func (p *WorkerPool) retryWorker() {
	defer p.retryWg.Done()
	for task := range p.RetryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(task.Retry) * p.RetryDelay)

		if !p.offer(p.TaskQueue, task) {
			p.logFailedTask(task, nil)
		}
	}
}

func (p *WorkerPool) processTask(task EventTask) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return p.Publisher.Publish(ctx, task.Key, task.Event)
}

func (p *WorkerPool) logFailedTask(task EventTask, err error) {
	logger.Log.Error("event dropped",
		zap.String("key", task.Key),
		zap.Any("event", task.Event),
		zap.Int("retry", task.Retry),
		zap.Error(err),
	)
}

// offer 非阻塞入队，池已停止或队列满时返回 false
func (p *WorkerPool) offer(queue chan EventTask, task EventTask) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	select {
	case queue <- task:
		return true
	default:
		return false
	}
}

// AddTask 提交事件
func (p *WorkerPool) AddTask(task EventTask) {
	if !p.offer(p.TaskQueue, task) {
		logger.Log.Warn("worker pool queue full, dropping task", zap.String("key", task.Key))
		p.logFailedTask(task, nil)
	}
}

// Publish 提交一个带分区键的事件
func (p *WorkerPool) Publish(key string, event interface{}) {
	p.AddTask(EventTask{Key: key, Event: event})
}

// Stop 停止接收新任务，等待队列中的任务处理完毕
// 尚在重试队列中的任务会被丢弃并记录日志
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()

		close(p.RetryQueue)
		p.retryWg.Wait()
		close(p.TaskQueue)
		p.wg.Wait()
		logger.Log.Info("worker pool stopped")
	})
}
