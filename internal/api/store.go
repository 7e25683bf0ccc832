package api

import "sync"

// DefaultStoreSize bounds how many completed jobs a JobStore keeps.
const DefaultStoreSize = 256

// JobStore keeps the most recent completed jobs so clients can fetch their
// results again. The oldest entry is evicted once the store is full.
type JobStore struct {
	mu    sync.Mutex
	limit int
	order []string
	jobs  map[string]JobResponse
}

func NewJobStore(limit int) *JobStore {
	if limit <= 0 {
		limit = DefaultStoreSize
	}
	return &JobStore{
		limit: limit,
		jobs:  make(map[string]JobResponse),
	}
}

func (s *JobStore) Save(resp JobResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[resp.ID]; !ok {
		s.order = append(s.order, resp.ID)
	}
	s.jobs[resp.ID] = resp
	for len(s.order) > s.limit {
		delete(s.jobs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *JobStore) Get(id string) (JobResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.jobs[id]
	return resp, ok
}

func (s *JobStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
