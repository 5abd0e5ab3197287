// Package coordinator implements a small in-memory coordinator used
// to drive rig agents in development and in tests. It hands queued
// sessions to polling workers and collects their artifacts. State
// lives in memory only, a restart forgets everything.
package coordinator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hildist/hildist/pkg/protocol"
	"github.com/hildist/hildist/pkg/rig"
	"github.com/hildist/hildist/pkg/utils"
)

type workerRecord struct {
	info     protocol.WorkerInfo
	lastSeen time.Time
}

type Coordinator struct {
	mu utils.RWMutex

	workers    map[string]*workerRecord
	queue      []string
	envs       map[string][]byte
	defaultEnv []byte
	artifacts  map[string]map[string][]byte
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		mu:        utils.NewRWMutex(),
		workers:   map[string]*workerRecord{},
		envs:      map[string][]byte{},
		artifacts: map[string]map[string][]byte{},
	}
}

// SetDefaultEnv installs the environment archive served to sessions
// that have no archive of their own.
func (c *Coordinator) SetDefaultEnv(env []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultEnv = env
}

// AddSession queues a session for the next polling worker. An empty
// id mints a fresh one. A nil env falls back to the default archive.
func (c *Coordinator) AddSession(id string, env []byte) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if env != nil {
		c.envs[id] = env
	}

	c.queue = append(c.queue, id)
	return id
}

// Register adds the worker to the registry, or refreshes it if it is
// already known. The pet name assigned on first contact sticks.
func (c *Coordinator) Register(workerID string) protocol.WorkerInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.workers[workerID]
	if !ok {
		record = &workerRecord{
			info: protocol.WorkerInfo{
				WorkerID: workerID,
				PetName:  rig.PetName(workerID),
			},
		}
		c.workers[workerID] = record
	}

	record.lastSeen = time.Now()
	return record.info
}

func (c *Coordinator) Heartbeat(workerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.workers[workerID]
	if !ok {
		return fmt.Errorf("%w: worker %s is not registered", utils.ErrNotFound, workerID)
	}

	record.lastSeen = time.Now()
	return nil
}

// Assign pops the next queued session for the worker. The bool is
// false when the queue is empty.
func (c *Coordinator) Assign(workerID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.workers[workerID]; !ok {
		return "", false, fmt.Errorf("%w: worker %s is not registered", utils.ErrNotFound, workerID)
	}

	if len(c.queue) == 0 {
		return "", false, nil
	}

	id := c.queue[0]
	c.queue = c.queue[1:]
	return id, true, nil
}

// Env returns the environment archive for a session.
func (c *Coordinator) Env(sessionID string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if env, ok := c.envs[sessionID]; ok {
		return env, nil
	}
	if c.defaultEnv != nil {
		return c.defaultEnv, nil
	}

	return nil, fmt.Errorf("%w: no environment for session %s", utils.ErrNotFound, sessionID)
}

// AddArtifact stores output uploaded by a worker for a session.
func (c *Coordinator) AddArtifact(sessionID, workerID string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.artifacts[sessionID] == nil {
		c.artifacts[sessionID] = map[string][]byte{}
	}
	c.artifacts[sessionID][workerID] = content
}

// Artifact returns the output a worker uploaded for a session.
func (c *Coordinator) Artifact(sessionID, workerID string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	content, ok := c.artifacts[sessionID][workerID]
	if !ok {
		return nil, fmt.Errorf("%w: no artifact for session %s from worker %s", utils.ErrNotFound, sessionID, workerID)
	}
	return content, nil
}

// ArtifactWorkers lists the workers that uploaded output for a
// session, sorted for stable output.
func (c *Coordinator) ArtifactWorkers(sessionID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	workers := []string{}
	for workerID := range c.artifacts[sessionID] {
		workers = append(workers, workerID)
	}
	sort.Strings(workers)
	return workers
}

// Workers lists all registered workers, sorted by worker id.
func (c *Coordinator) Workers() []protocol.WorkerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	workers := []protocol.WorkerInfo{}
	for _, record := range c.workers {
		workers = append(workers, record.info)
	}
	sort.Slice(workers, func(i, j int) bool {
		return workers[i].WorkerID < workers[j].WorkerID
	})
	return workers
}

func (c *Coordinator) WorkerInfo(workerID string) (protocol.WorkerInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.workers[workerID]
	if !ok {
		return protocol.WorkerInfo{}, fmt.Errorf("%w: worker %s is not registered", utils.ErrNotFound, workerID)
	}
	return record.info, nil
}

// UpdateWorker changes the pet name or tags of a registered worker.
// Empty fields are left untouched.
func (c *Coordinator) UpdateWorker(workerID string, update protocol.UpdateWorkerRequest) (protocol.WorkerInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.workers[workerID]
	if !ok {
		return protocol.WorkerInfo{}, fmt.Errorf("%w: worker %s is not registered", utils.ErrNotFound, workerID)
	}

	if update.PetName != "" {
		record.info.PetName = update.PetName
	}
	if update.Tags != nil {
		record.info.Tags = update.Tags
	}

	return record.info, nil
}
