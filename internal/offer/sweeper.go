package offer

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultSweepInterval est la période du balayage des offres expirées.
const DefaultSweepInterval = time.Hour

// Sweeper exécute Engine.Sweep à intervalle fixe pendant toute la vie du processus.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
}

func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{engine: engine, interval: interval}
}

// Run fait un premier passage immédiat puis un passage par intervalle, jusqu'à
// l'annulation du contexte.
func (s *Sweeper) Run(ctx context.Context) {
	log.WithField("interval", s.interval.String()).Info("⏰ Balayeur des offres démarré")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("🛑 Balayeur des offres arrêté")
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

func (s *Sweeper) pass(ctx context.Context) {
	res, err := s.engine.Sweep(ctx)
	if err != nil {
		log.WithError(err).Error("❌ Balayage des offres échoué")
		return
	}
	if res.Expired > 0 || res.Failed > 0 {
		log.WithFields(log.Fields{
			"expired": res.Expired,
			"failed":  res.Failed,
		}).Info("✅ Balayage des offres terminé")
	}
}
