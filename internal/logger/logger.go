// Package logger configure logrus une seule fois au démarrage.
package logger

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Setup applique le niveau et le format ("json" ou "text") au logger standard.
func Setup(level, format string) {
	log.SetOutput(os.Stdout)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("⚠️ Niveau de log inconnu, utilisation de info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
