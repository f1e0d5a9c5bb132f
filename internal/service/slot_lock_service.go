package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gaming-cafe-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// releaseSlotLockScript deletes the lock only if it still carries our token,
// so a holder whose lock already expired cannot free someone else's.
var releaseSlotLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	RedisSlotLockKeyPrefix = "slot:lock:"

	// Timeout for the release round trip, which runs after the request context may be gone
	redisReleaseTimeout = 2 * time.Second

	defaultLockRetryInterval = 25 * time.Millisecond

	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// SlotLocker serializes booking writes for one station and day. It never
// fails: the database transaction stays the authority, the lock only keeps
// concurrent writers from piling onto it.
type SlotLocker interface {
	Lock(ctx context.Context, key entity.SlotKey) (unlock func())
}

// SlotLockService combines an in-process mutex per slot with a Redis lease
// shared by every instance.
//
// Lock Ordering (to prevent deadlocks):
// 1. Acquire slot mutex FIRST
// 2. Then take the Redis lease
type SlotLockService struct {
	redisClient *redis.Client
	log         *logrus.Logger

	ttl           time.Duration
	waitTimeout   time.Duration
	retryInterval time.Duration
	newToken      func() string

	// Per-slot mutex for in-process callers
	slotMu sync.Map // map[string]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewSlotLockService creates a SlotLockService. A nil redisClient gives an
// in-process lock only. Starts a background goroutine for mutex cleanup;
// call Stop() during graceful shutdown.
func NewSlotLockService(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *SlotLockService {
	svc := &SlotLockService{
		redisClient:   redisClient,
		log:           log,
		ttl:           ttl,
		waitTimeout:   ttl,
		retryInterval: defaultLockRetryInterval,
		newToken:      func() string { return uuid.NewString() },
		stopChan:      make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *SlotLockService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SlotLockService stopped")
	}
}

func SlotLockKey(key entity.SlotKey) string {
	return fmt.Sprintf("%s%s:%s:%s:%d:%s", RedisSlotLockKeyPrefix,
		key.CafeID, key.StationType, key.ConsoleType, key.StationNumber, key.BookingDate)
}

// Lock blocks until the slot is held in-process and, when Redis is
// configured, until the shared lease is taken or the wait times out.
// On timeout or Redis failure it carries on with the in-process lock only.
func (s *SlotLockService) Lock(ctx context.Context, key entity.SlotKey) func() {
	name := SlotLockKey(key)

	mt := s.getSlotMutex(name)
	mt.mu.Lock()

	if s.redisClient == nil {
		return mt.mu.Unlock
	}

	token, acquired := s.acquireLease(ctx, name)
	return func() {
		if acquired {
			s.releaseLease(name, token)
		}
		mt.mu.Unlock()
	}
}

func (s *SlotLockService) acquireLease(ctx context.Context, name string) (string, bool) {
	token := s.newToken()
	deadline := time.Now().Add(s.waitTimeout)

	for {
		ok, err := s.redisClient.SetNX(ctx, name, token, s.ttl).Result()
		if err != nil {
			s.log.Warnf("Failed to take slot lock %s, continuing without it: %+v", name, err)
			return "", false
		}
		if ok {
			return token, true
		}

		if time.Now().After(deadline) {
			s.log.Warnf("Timed out waiting for slot lock %s, continuing without it", name)
			return "", false
		}

		select {
		case <-ctx.Done():
			return "", false
		case <-time.After(s.retryInterval):
		}
	}
}

func (s *SlotLockService) releaseLease(name, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisReleaseTimeout)
	defer cancel()

	released, err := releaseSlotLockScript.Run(ctx, s.redisClient, []string{name}, token).Int()
	if err != nil {
		s.log.Warnf("Failed to release slot lock %s (expires on its own): %+v", name, err)
		return
	}
	if released == 0 {
		s.log.Debugf("Slot lock %s expired before release", name)
	}
}

// getSlotMutex returns mutex for a specific slot key
func (s *SlotLockService) getSlotMutex(name string) *mutexWithTimestamp {
	mt, _ := s.slotMu.LoadOrStore(name, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (s *SlotLockService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleMutexes(time.Now().Add(-mutexStaleThreshold))
		}
	}
}

// cleanupStaleMutexes removes mutexes unused since cutoff. lastUsed is read
// under the lock so a concurrent getSlotMutex cannot be missed.
func (s *SlotLockService) cleanupStaleMutexes(cutoff time.Time) int {
	cutoffUnix := cutoff.Unix()
	var cleaned int

	s.slotMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		// TryLock first - if we can't get lock, someone is using it
		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffUnix {
				s.slotMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale mutexes", cleaned)
	}
	return cleaned
}
