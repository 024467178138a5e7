// Package harvest tracks depleted resource nodes and restores them when
// their respawn deadline passes. Nothing runs in the background: the host
// calls Tick with the current time from its own loop.
package harvest

import (
	"container/heap"
	"errors"
	"fmt"
	"time"

	"github.com/gravitas-games/hexlands/internal/gamemap"
	"github.com/gravitas-games/hexlands/pkg/hex"
)

var (
	// ErrNotResource is returned when gathering from a non-Resource node.
	ErrNotResource = errors.New("node is not a resource")
	// ErrDepleted is returned when gathering from a node that is still respawning.
	ErrDepleted = errors.New("resource is depleted")
)

// DefaultRespawn is used when a scheduler is created with a non-positive delay.
const DefaultRespawn = 30 * time.Second

// Job is one pending respawn.
type Job struct {
	ID      int64
	Node    *gamemap.Node
	ReadyAt time.Time
}

// Scheduler holds pending respawns ordered by deadline. Like the map it
// serves, it is not safe for concurrent use.
type Scheduler struct {
	respawn time.Duration
	pending *jobHeap
	byCoord map[hex.Cube]*Job
	nextID  int64
}

// NewScheduler creates a scheduler that restores nodes respawn after gathering.
func NewScheduler(respawn time.Duration) *Scheduler {
	if respawn <= 0 {
		respawn = DefaultRespawn
	}
	return &Scheduler{
		respawn: respawn,
		pending: newJobHeap(),
		byCoord: make(map[hex.Cube]*Job),
	}
}

// Respawn is the delay between gathering and replenishment.
func (s *Scheduler) Respawn() time.Duration { return s.respawn }

// Pending is the number of nodes waiting to respawn.
func (s *Scheduler) Pending() int { return s.pending.Len() }

// Gather depletes a resource node and schedules its respawn.
func (s *Scheduler) Gather(n *gamemap.Node, now time.Time) (Job, error) {
	if n.Category != gamemap.Resource {
		return Job{}, fmt.Errorf("gather %s: %w", n.Coord, ErrNotResource)
	}
	if n.Depleted {
		return Job{}, fmt.Errorf("gather %s: %w until %s", n.Coord, ErrDepleted, n.ReadyAt.Format(time.RFC3339))
	}

	s.nextID++
	job := &Job{ID: s.nextID, Node: n, ReadyAt: now.Add(s.respawn)}
	n.Depleted = true
	n.ReadyAt = job.ReadyAt
	heap.Push(s.pending, job)
	s.byCoord[n.Coord] = job
	return *job, nil
}

// Tick restores every node whose deadline is at or before now and returns
// them in deadline order.
func (s *Scheduler) Tick(now time.Time) []*gamemap.Node {
	var restored []*gamemap.Node
	for {
		job := s.pending.Peek()
		if job == nil || now.Before(job.ReadyAt) {
			break
		}
		heap.Pop(s.pending)
		delete(s.byCoord, job.Node.Coord)
		job.Node.Depleted = false
		job.Node.ReadyAt = time.Time{}
		restored = append(restored, job.Node)
	}
	return restored
}

// Cancel restores the node at c immediately. It reports whether a respawn
// was pending there.
func (s *Scheduler) Cancel(c hex.Cube) bool {
	job, ok := s.byCoord[c]
	if !ok {
		return false
	}
	for i, j := range *s.pending {
		if j == job {
			heap.Remove(s.pending, i)
			break
		}
	}
	delete(s.byCoord, c)
	job.Node.Depleted = false
	job.Node.ReadyAt = time.Time{}
	return true
}

// NextReady returns the earliest pending deadline.
func (s *Scheduler) NextReady() (time.Time, bool) {
	job := s.pending.Peek()
	if job == nil {
		return time.Time{}, false
	}
	return job.ReadyAt, true
}
