package notifyservice

import (
	"context"
	"time"

	"gogarment/internal/domain"
	"gogarment/internal/pkg/logger"
)

// Poller busca o feed de notificações em intervalo fixo e entrega cada feed
// bem-sucedido ao callback. Em caso de falha o intervalo cresce
// exponencialmente até o teto configurado e volta ao intervalo base no
// primeiro sucesso. O catálogo não oferece push; sondagem é o canal que há.
type Poller struct {
	source     FeedSource
	interval   time.Duration
	maxBackoff time.Duration
	onFeed     func(feed domain.NotificationFeed)
	logger     logger.Logger
}

// FeedSource é o contrato mínimo que o Poller precisa do serviço de
// notificações.
type FeedSource interface {
	Feed(ctx context.Context, nextURL string) (domain.NotificationFeed, error)
}

// NewPoller cria um Poller sobre a primeira página do feed.
func NewPoller(source FeedSource, interval, maxBackoff time.Duration, onFeed func(feed domain.NotificationFeed), log logger.Logger) *Poller {
	if maxBackoff < interval {
		maxBackoff = interval
	}
	return &Poller{
		source:     source,
		interval:   interval,
		maxBackoff: maxBackoff,
		onFeed:     onFeed,
		logger:     log,
	}
}

// Run sonda até o contexto ser cancelado. Bloqueia; rode em uma goroutine.
func (p *Poller) Run(ctx context.Context) {
	wait := p.interval
	timer := time.NewTimer(0) // primeira sondagem imediata
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Sondagem de notificações encerrada.", map[string]interface{}{})
			return
		case <-timer.C:
		}

		feed, err := p.source.Feed(ctx, "")
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait = p.nextBackoff(wait)
			p.logger.Warn("Falha ao sondar notificações; recuando.", map[string]interface{}{
				"error":      err.Error(),
				"next_in_ms": wait.Milliseconds(),
			})
		} else {
			wait = p.interval
			if p.onFeed != nil {
				p.onFeed(feed)
			}
		}

		timer.Reset(wait)
	}
}

// nextBackoff dobra a espera atual, respeitando o teto.
func (p *Poller) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > p.maxBackoff {
		next = p.maxBackoff
	}
	return next
}
