// Package database ouvre les connexions aux backends : ScyllaDB, Redis,
// Elasticsearch et MinIO. Seul Scylla est obligatoire en mode STORE_DRIVER=scylla ;
// les autres sont ignorés s'ils ne sont pas configurés.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/config"
)

type Connections struct {
	Scylla  *gocql.Session
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
}

// Connect ouvre toutes les connexions configurées.
func Connect(ctx context.Context, cfg *config.Config) (*Connections, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conns := &Connections{}
	var err error

	if !cfg.MemoryStore() {
		if conns.Scylla, err = ConnectScylla(cfg.Scylla); err != nil {
			return nil, err
		}
	}
	if cfg.Redis.Host != "" {
		if conns.Redis, err = connectRedis(ctx, cfg.Redis); err != nil {
			conns.Close()
			return nil, err
		}
	}
	if cfg.Elastic.URL != "" {
		if conns.Elastic, err = connectElastic(cfg.Elastic); err != nil {
			conns.Close()
			return nil, err
		}
	}
	if cfg.MinIO.Endpoint != "" {
		if conns.MinIO, err = connectMinIO(ctx, cfg.MinIO); err != nil {
			conns.Close()
			return nil, err
		}
	}

	log.Info("✅ Toutes les bases de données sont connectées")
	return conns, nil
}

func (c *Connections) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
		log.Info("🔌 Session ScyllaDB fermée")
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.WithError(err).Warn("⚠️ Fermeture Redis")
		}
	}
}

// =============================================
// SCYLLA DB
// =============================================

func newCluster(cfg config.ScyllaConfig, keyspace string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.SerialConsistency = gocql.Serial
	cluster.Timeout = cfg.Timeout
	cluster.NumConns = cfg.NumConns

	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// ConnectScylla ouvre une session sur le keyspace applicatif.
func ConnectScylla(cfg config.ScyllaConfig) (*gocql.Session, error) {
	session, err := newCluster(cfg, cfg.Keyspace).CreateSession()
	if err != nil {
		return nil, errors.Wrapf(err, "session scylla %s", cfg.Keyspace)
	}
	log.WithField("keyspace", cfg.Keyspace).Info("✅ Connecté à ScyllaDB")
	return session, nil
}

// EnsureKeyspace crée le keyspace s'il n'existe pas, avant les migrations.
func EnsureKeyspace(cfg config.ScyllaConfig) error {
	session, err := newCluster(cfg, "").CreateSession()
	if err != nil {
		return errors.Wrap(err, "session scylla système")
	}
	defer session.Close()

	stmt := fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}`,
		cfg.Keyspace, cfg.ReplicationFactor)
	if err := session.Query(stmt).Exec(); err != nil {
		return errors.Wrapf(err, "création du keyspace %s", cfg.Keyspace)
	}
	return nil
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "connexion redis")
	}
	log.Info("✅ Connecté à Redis")
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================
func connectElastic(cfg config.ElasticConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "client elasticsearch")
	}

	res, err := client.Info()
	if err != nil {
		return nil, errors.Wrap(err, "connexion elasticsearch")
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, errors.Errorf("elasticsearch: %s", res.Status())
	}

	log.Info("✅ Connecté à Elasticsearch")
	return client, nil
}

// =============================================
// MINIO
// =============================================
func connectMinIO(ctx context.Context, cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "client minio")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "vérification du bucket minio")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, "création du bucket minio")
		}
		log.WithField("bucket", cfg.Bucket).Info("🪣 Bucket créé")
	} else {
		log.WithField("bucket", cfg.Bucket).Info("🪣 Bucket MinIO déjà présent")
	}

	log.WithField("endpoint", cfg.Endpoint).Info("✅ Connecté à MinIO")
	return client, nil
}
