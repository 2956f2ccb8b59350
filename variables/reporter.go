package variables

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Reporter logs and counts resolution failures that consumers chose not to
// stop on. It is safe for concurrent use.
type Reporter struct {
	logger   *zap.Logger
	failures atomic.Int64
}

func NewReporter(logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{logger: logger}
}

func (r *Reporter) Report(token string, err error) {
	if r == nil {
		return
	}
	r.failures.Add(1)
	r.logger.Warn("scripted variable left unresolved",
		zap.String("token", token),
		zap.Error(err))
}

// Failures is the number of reports so far.
func (r *Reporter) Failures() int64 {
	if r == nil {
		return 0
	}
	return r.failures.Load()
}
