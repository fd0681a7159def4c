package serv

import (
	"crypto/sha256"
	"time"

	"go.uber.org/zap"
)

// initSchemaWatcher starts polling the schema file for changes
func (s *Service) initSchemaWatcher() {
	// no schema polling in production
	if s.conf.Production {
		return
	}

	ps := s.conf.SchemaPollDuration

	switch {
	case ps < (1 * time.Second):
		return

	case ps < (5 * time.Second):
		ps = 5 * time.Second
	}

	go s.startSchemaWatcher(ps)
}

// startSchemaWatcher rebuilds the engine each time the schema file changes
func (s *Service) startSchemaWatcher(ps time.Duration) {
	ticker := time.NewTicker(ps)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if _, err := s.checkSchema(); err != nil {
				s.log.Warn("schema reload failed", zap.Error(err))
			}
		}
	}
}

// checkSchema reloads the schema file if its contents changed. A schema
// that fails to load leaves the current engine in place.
func (s *Service) checkSchema() (bool, error) {
	b, err := s.readSchema()
	if err != nil {
		return false, err
	}

	if sha256.Sum256(b) == s.schemaHash {
		return false, nil
	}

	s.log.Info("schema change detected. reinitializing...",
		zap.String("schema", s.conf.SchemaFile))

	if err := s.reload(b); err != nil {
		return false, err
	}
	return true, nil
}
