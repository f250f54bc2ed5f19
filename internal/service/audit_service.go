package service

import (
	"context"

	"spot_difference/internal/domain"
	"spot_difference/internal/logger"
)

// AuditStore - куда пишутся записи аудита
type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// обрабатывает логирование аудита
type AuditService struct {
	repo AuditStore
}

// создает сервис аудита; без хранилища записи уходят только в лог
func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// создает новую запись в журнале аудита
func (s *AuditService) Log(ctx context.Context, username, action, category string, details map[string]interface{}) {
	s.write(ctx, &domain.AuditLog{
		Username: username,
		Action:   action,
		Category: category,
		Details:  details,
	})
}

// создает запись аудита с информацией о запросе (ip, user-agent)
func (s *AuditService) LogWithRequest(ctx context.Context, username, action, category, ip, userAgent string, details map[string]interface{}) {
	s.write(ctx, &domain.AuditLog{
		Username:  username,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	})
}

// логирует игровое действие
func (s *AuditService) LogGame(ctx context.Context, username, action string, details map[string]interface{}) {
	s.Log(ctx, username, action, domain.AuditCategoryGame, details)
}

func (s *AuditService) write(ctx context.Context, log *domain.AuditLog) {
	if s == nil {
		return
	}
	if s.repo == nil {
		logger.WithContext(ctx).Debug("audit", "username", log.Username, "action", log.Action, "category", log.Category, "details", log.Details)
		return
	}
	if err := s.repo.Create(ctx, log); err != nil {
		logger.WithContext(ctx).Error("не удалось создать запись аудита", "error", err, "action", log.Action, "username", log.Username)
	}
}
