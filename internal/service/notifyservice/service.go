package notifyservice

import (
	"context"

	"gogarment/internal/domain"
	apperror "gogarment/internal/errors"
	"gogarment/internal/pkg/logger"
)

// NotificationAPI é o contrato das primitivas de notificação do catálogo.
type NotificationAPI interface {
	ListNotifications(ctx context.Context, nextURL string) ([]domain.Notification, string, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Service expõe o feed de notificações do catálogo para o console.
type Service struct {
	api    NotificationAPI
	logger logger.Logger
}

// NewService cria uma nova instância do serviço de notificações.
func NewService(api NotificationAPI, log logger.Logger) *Service {
	return &Service{api: api, logger: log}
}

// Feed busca uma página do feed. nextURL vazio busca a primeira página; caso
// contrário segue o cursor da página anterior. A contagem de não lidas cobre
// apenas a página devolvida: o total vive no catálogo, não aqui.
func (s *Service) Feed(ctx context.Context, nextURL string) (domain.NotificationFeed, error) {
	notifications, next, err := s.api.ListNotifications(ctx, nextURL)
	if err != nil {
		return domain.NotificationFeed{}, err
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}

	return domain.NotificationFeed{
		Notifications: notifications,
		UnreadCount:   unread,
		Next:          next,
	}, nil
}

// MarkRead marca uma notificação como lida.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("O ID da notificação é obrigatório.")
	}
	return s.api.MarkNotificationRead(ctx, id)
}

// MarkAllRead marca todas as notificações como lidas.
func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.api.MarkAllNotificationsRead(ctx)
}
