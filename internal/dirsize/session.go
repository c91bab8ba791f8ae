package dirsize

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// session is the state of one scan. It is created per Scan call and never reused.
type session struct {
	id       uuid.UUID
	root     string
	started  time.Time
	cancel   context.CancelFunc
	progress *aggregator
	log      logrus.FieldLogger
}

func newSession(root string, interval time.Duration, log logrus.FieldLogger) *session {
	id := uuid.New()

	return &session{
		id:       id,
		root:     root,
		started:  time.Now(),
		progress: newAggregator(interval),
		log:      log.WithFields(logrus.Fields{"session": id.String(), "root": root}),
	}
}
