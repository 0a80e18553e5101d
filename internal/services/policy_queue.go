package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/collabhub/backend/internal/config"
	"github.com/collabhub/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

const TaskTypePolicySync = "policy:sync"

// policySyncPayload is the asynq task payload for one push.
type policySyncPayload struct {
	Scope string `json:"scope"`
}

// PolicyQueue decouples policy push dispatch from execution.
type PolicyQueue interface {
	// Enqueue schedules a push for the given scope.
	Enqueue(scope string) error
	// IsAsync returns true if pushes are executed by a separate worker.
	IsAsync() bool
	// Close gracefully shuts down the queue.
	Close() error
}

// NewPolicyQueue returns a Redis-backed queue when Redis is enabled and
// reachable, otherwise an in-process queue pushing via the given service.
func NewPolicyQueue(cfg *config.RedisConfig, svc *PolicyService) PolicyQueue {
	if cfg.Enabled {
		queue, err := NewAsyncPolicyQueue(cfg)
		if err != nil {
			logger.Infof("[PolicyQueue] Redis unavailable, falling back to inline mode: %v", err)
			return NewInlinePolicyQueue(svc)
		}
		logger.Infof("[PolicyQueue] Async queue initialized with Redis at %s", cfg.Addr)
		return queue
	}
	return NewInlinePolicyQueue(svc)
}

// AsyncPolicyQueue enqueues pushes to Redis via asynq.
type AsyncPolicyQueue struct {
	client *asynq.Client
}

func NewAsyncPolicyQueue(cfg *config.RedisConfig) (*AsyncPolicyQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode.
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncPolicyQueue{client: client}, nil
}

func (q *AsyncPolicyQueue) Enqueue(scope string) error {
	payload, err := json.Marshal(policySyncPayload{Scope: scope})
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypePolicySync, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Debug().Str("id", info.ID).Str("scope", scope).Msg("policy sync enqueued")
	return nil
}

func (q *AsyncPolicyQueue) IsAsync() bool { return true }

func (q *AsyncPolicyQueue) Close() error { return q.client.Close() }

// InlinePolicyQueue executes pushes in-process without blocking the caller.
type InlinePolicyQueue struct {
	svc *PolicyService
}

func NewInlinePolicyQueue(svc *PolicyService) *InlinePolicyQueue {
	return &InlinePolicyQueue{svc: svc}
}

func (q *InlinePolicyQueue) Enqueue(scope string) error {
	go q.svc.push(scope)
	return nil
}

func (q *InlinePolicyQueue) IsAsync() bool { return false }

func (q *InlinePolicyQueue) Close() error { return nil }

// PolicyWorker consumes policy sync tasks from Redis.
type PolicyWorker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	svc     *PolicyService
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func NewPolicyWorker(cfg *config.RedisConfig, svc *PolicyService) *PolicyWorker {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Warnf("[PolicyWorker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &PolicyWorker{
		server: server,
		mux:    asynq.NewServeMux(),
		svc:    svc,
	}
}

// Start begins consuming tasks.
func (w *PolicyWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}

	w.mux.HandleFunc(TaskTypePolicySync, w.handlePolicySync)
	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[PolicyWorker] Starting async worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Warnf("[PolicyWorker] Server error: %v", err)
		}
	}()
}

func (w *PolicyWorker) handlePolicySync(ctx context.Context, t *asynq.Task) error {
	var payload policySyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	w.svc.push(payload.Scope)
	return nil
}

// Stop shuts the worker down and waits for in-flight tasks.
func (w *PolicyWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.server.Shutdown()
	w.wg.Wait()
	w.running = false
}
