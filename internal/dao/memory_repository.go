package dao

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"
)

// MemoryStore keeps links, sessions and issues in process memory. It backs the
// CLI's offline mode and service tests.
// MemoryStore 内存仓储
type MemoryStore struct {
	mu       sync.RWMutex
	links    map[string]domain.InterviewLink
	sessions map[string]domain.Session
	issues   []domain.TechnicalIssue
}

// NewMemoryStore 创建内存仓储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:    map[string]domain.InterviewLink{},
		sessions: map[string]domain.Session{},
	}
}

// Links 返回链接仓储视图
func (s *MemoryStore) Links() domain.LinkRepository { return memoryLinks{s} }

// Sessions 返回会话仓储视图
func (s *MemoryStore) Sessions() domain.SessionRepository { return memorySessions{s} }

// Issues 返回工单仓储视图
func (s *MemoryStore) Issues() domain.IssueRepository { return memoryIssues{s} }

type memoryLinks struct{ s *MemoryStore }

func (m memoryLinks) Save(ctx context.Context, link *domain.InterviewLink) (*domain.InterviewLink, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	now := time.Now()
	cp := *link
	if old, ok := m.s.links[link.SessionID]; ok {
		cp.CreatedAt = old.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	m.s.links[link.SessionID] = cp
	out := cp
	return &out, nil
}

func (m memoryLinks) GetBySessionID(ctx context.Context, sessionID string) (*domain.InterviewLink, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	l, ok := m.s.links[sessionID]
	if !ok {
		return nil, domain.ErrLinkNotFound
	}
	return &l, nil
}

func (m memoryLinks) ListStale(ctx context.Context, dateBefore, expiresBefore time.Time) ([]*domain.InterviewLink, error) {
	return m.filter(func(l domain.InterviewLink) bool {
		return l.InterviewDate.Before(dateBefore) || l.ExpiresAt.Before(expiresBefore)
	}), nil
}

func (m memoryLinks) ListDueForReminder(ctx context.Context, from, to time.Time) ([]*domain.InterviewLink, error) {
	return m.filter(func(l domain.InterviewLink) bool {
		return l.InterviewDate.After(from) && !l.InterviewDate.After(to) && !l.Reminded()
	}), nil
}

func (m memoryLinks) MarkReminded(ctx context.Context, sessionID string, at time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	l, ok := m.s.links[sessionID]
	if !ok {
		return domain.ErrLinkNotFound
	}
	l.RemindedAt = at
	m.s.links[sessionID] = l
	return nil
}

func (m memoryLinks) filter(keep func(domain.InterviewLink) bool) []*domain.InterviewLink {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*domain.InterviewLink
	for _, l := range m.s.links {
		if keep(l) {
			cp := l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InterviewDate.Before(out[j].InterviewDate) })
	return out
}

type memorySessions struct{ s *MemoryStore }

func (m memorySessions) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	sess, ok := m.s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (m memorySessions) Save(ctx context.Context, session *domain.Session) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *session
	cp.UpdatedAt = time.Now()
	m.s.sessions[session.SessionID] = cp
	return nil
}

func (m memorySessions) CountByStatus(ctx context.Context) (map[domain.SessionStatus]int64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := map[domain.SessionStatus]int64{}
	for _, sess := range m.s.sessions {
		out[sess.Status]++
	}
	return out, nil
}

type memoryIssues struct{ s *MemoryStore }

func (m memoryIssues) Create(ctx context.Context, issue *domain.TechnicalIssue) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.issues = append(m.s.issues, *issue)
	return nil
}

func (m memoryIssues) ListBySession(ctx context.Context, sessionID string) ([]*domain.TechnicalIssue, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*domain.TechnicalIssue
	for _, is := range m.s.issues {
		if is.SessionID == sessionID {
			cp := is
			out = append(out, &cp)
		}
	}
	return out, nil
}

var (
	_ domain.LinkRepository    = memoryLinks{}
	_ domain.SessionRepository = memorySessions{}
	_ domain.IssueRepository   = memoryIssues{}
)
