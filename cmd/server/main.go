package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "reviere",
		Usage:  "API de la tienda Reviere",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "lance le serveur HTTP et le balayage des offres",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "crée le keyspace et applique les migrations CQL",
				Action: migrateCmd,
			},
			{
				Name:   "sweep",
				Usage:  "exécute un seul balayage des offres expirées",
				Action: sweepCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("❌ Arrêt du serveur")
	}
}
