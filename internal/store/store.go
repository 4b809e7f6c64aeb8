// Package store 提供进程内的任务存储。
// 任务记录由本包独占持有：创建于提交时，运行中更新进度，
// 进程重启即丢失（无持久化、无过期淘汰）。
package store

import (
	"errors"
	"sync"
	"time"

	"lychee/internal/model/video"
)

var (
	// ErrJobNotFound 任务不存在
	ErrJobNotFound = errors.New("job not found")
	// ErrJobExists 任务ID冲突
	ErrJobExists = errors.New("job already exists")
)

// JobStore 以任务ID为键的内存存储，读写锁保护。
// 显式注入到 orchestrator 和 handler，不使用包级全局状态
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*video.Job
}

// NewJobStore 创建空的任务存储
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*video.Job),
	}
}

// Create 登记新任务，ID 冲突时返回 ErrJobExists
func (s *JobStore) Create(job *video.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return ErrJobExists
	}
	s.jobs[job.ID] = job
	return nil
}

// Get 返回任务的完整快照（请求 + 进度 + 结果）
func (s *JobStore) Get(id string) (*video.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}

	snapshot := *job
	if job.Result != nil {
		result := *job.Result
		snapshot.Result = &result
	}
	return &snapshot, nil
}

// Progress 返回任务的进度投影
func (s *JobStore) Progress(id string) (video.JobProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return video.JobProgress{}, ErrJobNotFound
	}
	return job.Progress, nil
}

// ListProgress 返回所有任务的进度投影（无序）
func (s *JobStore) ListProgress() []video.JobProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]video.JobProgress, 0, len(s.jobs))
	for _, job := range s.jobs {
		list = append(list, job.Progress)
	}
	return list
}

// UpdateProgress 写入成功路径上的一次状态推进
func (s *JobStore) UpdateProgress(id string, status video.JobStatus, progress int, step string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Progress.Status = status
	job.Progress.Progress = progress
	job.Progress.CurrentStep = step
	job.Progress.UpdatedAt = time.Now()
	return nil
}

// Fail 将任务置为失败终态：进度归零并附带错误信息
func (s *JobStore) Fail(id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Progress.Status = video.JobStatusFailed
	job.Progress.Progress = 0
	job.Progress.CurrentStep = message
	job.Progress.ErrorMessage = message
	job.Progress.UpdatedAt = time.Now()
	return nil
}

// SetResult 记录最终结果
func (s *JobStore) SetResult(id string, result *video.VideoResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Result = result
	return nil
}

// Count 当前登记的任务总数
func (s *JobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// ActiveCount 未到终态的任务数
func (s *JobStore) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, job := range s.jobs {
		if !job.Progress.Status.Terminal() {
			n++
		}
	}
	return n
}
