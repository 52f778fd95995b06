// Package redisstore conserve les paniers dans Redis, un document JSON par
// utilisateur, sans expiration. Chaque écriture publie sur le canal du panier.
package redisstore

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

const maxTxAttempts = 16

type Carts struct {
	client *redis.Client
}

func NewCarts(client *redis.Client) *Carts {
	return &Carts{client: client}
}

func cartKey(userID int64) string {
	return "cart:" + strconv.FormatInt(userID, 10)
}

func (s *Carts) Get(ctx context.Context, userID int64) (*models.Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	var c models.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return &c, nil
}

// Mutate applique fn sous WATCH ; une écriture concurrente relance la transaction.
func (s *Carts) Mutate(ctx context.Context, userID int64, create bool, fn func(*models.Cart) error) (*models.Cart, error) {
	key := cartKey(userID)
	var result *models.Cart

	txf := func(tx *redis.Tx) error {
		cart := models.NewCart(userID)
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if !create {
				return store.ErrNotFound
			}
		case err != nil:
			return errors.Wrap(err, "get cart")
		default:
			if err := json.Unmarshal(raw, cart); err != nil {
				return errors.Wrap(err, "decode cart")
			}
		}

		if err := fn(cart); err != nil {
			return err
		}
		cart.UpdatedAt = time.Now()
		data, err := json.Marshal(cart)
		if err != nil {
			return errors.Wrap(err, "encode cart")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.Publish(ctx, key, "updated")
			return nil
		})
		if err == nil {
			result = cart
		}
		return err
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
		log.WithFields(log.Fields{"user_id": userID, "attempt": attempt}).Debug("🛒 Conflit d'écriture panier, nouvel essai")
	}
	return nil, store.ErrContention
}

// Subscribe relaie les publications du panier vers un canal de signaux.
func (s *Carts) Subscribe(ctx context.Context, userID int64) (<-chan struct{}, func(), error) {
	pubsub := s.client.Subscribe(ctx, cartKey(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, errors.Wrap(err, "subscribe cart")
	}

	out := make(chan struct{}, 1)
	go func() {
		for range pubsub.Channel() {
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() { _ = pubsub.Close() })
	}
	return out, cancel, nil
}
