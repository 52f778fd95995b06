package database

import (
	"embed"

	"github.com/gocql/gocql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/cassandra"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.cql
var migrationFiles embed.FS

// Migrate applique les migrations CQL embarquées sur le keyspace de la session.
func Migrate(session *gocql.Session, keyspace string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Wrap(err, "source des migrations")
	}

	driver, err := cassandra.WithInstance(session, &cassandra.Config{
		KeyspaceName:          keyspace,
		MultiStatementEnabled: true,
	})
	if err != nil {
		return errors.Wrap(err, "driver cassandra")
	}

	m, err := migrate.NewWithInstance("iofs", src, "cassandra", driver)
	if err != nil {
		return errors.Wrap(err, "initialisation migrate")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "application des migrations")
	}

	version, dirty, _ := m.Version()
	log.WithFields(log.Fields{"version": version, "dirty": dirty}).Info("✅ Migrations appliquées")
	return nil
}
