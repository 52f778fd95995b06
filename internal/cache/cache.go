// Package cache regroupe les usages Redis transverses : limitation de débit,
// révocation des jetons et dédoublonnage des webhooks de paiement.
// Sans Redis configuré, Memory offre le même contrat pour une seule instance.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// IncrementRateLimit incrémente le compteur de la fenêtre courante.
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)
	BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) bool
	// Claim réserve key pour ttl et retourne false si elle l'était déjà.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Forget libère une réservation, après un traitement en échec.
	Forget(ctx context.Context, key string) error
}
