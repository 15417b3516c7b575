package dao

import (
	"context"

	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/internal/model"
)

const tableTechnicalIssue = "TechnicalIssue"

// issueRepository 实现 domain.IssueRepository 接口
type issueRepository struct {
	dao *Dao
}

// NewIssueRepository 创建 IssueRepository 实例
func NewIssueRepository(dao *Dao) domain.IssueRepository {
	return &issueRepository{dao: dao}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.TechnicalIssue) error {
	db, err := r.dao.DB(ctx, tableTechnicalIssue)
	if err != nil {
		return err
	}
	return db.Create(&model.TechnicalIssue{
		TicketID:    issue.TicketID,
		SessionID:   issue.SessionID,
		IssueType:   string(issue.IssueType),
		Description: issue.Description,
		BrowserInfo: issue.BrowserInfo,
		CreatedAt:   issue.CreatedAt,
	}).Error
}

func (r *issueRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.TechnicalIssue, error) {
	db, err := r.dao.DB(ctx, tableTechnicalIssue)
	if err != nil {
		return nil, err
	}
	var ms []*model.TechnicalIssue
	if err := db.Where("session_id = ?", sessionID).Order("created_at").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.TechnicalIssue, 0, len(ms))
	for _, m := range ms {
		out = append(out, &domain.TechnicalIssue{
			TicketID:    m.TicketID,
			SessionID:   m.SessionID,
			IssueType:   domain.IssueType(m.IssueType),
			Description: m.Description,
			BrowserInfo: m.BrowserInfo,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, nil
}

var _ domain.IssueRepository = (*issueRepository)(nil)
