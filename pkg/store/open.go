package store

import (
	"time"

	"github.com/ssargent/factoryconfig/pkg/medium"
)

// Open loads the configuration from m and applies the fallback policy, so the
// returned configuration is always usable. The error, if any, reports why
// defaults (or partially decoded state) are in use; OutcomeOf and
// Outcome.Status classify it.
//
// A medium error triggers up to WithRetries further full attempts. Every
// other outcome is final.
func Open(m medium.Medium, opts ...Option) (*FactoryConfig, *LoadResult, error) {
	o := buildOptions(opts)
	start := time.Now()

	var (
		fc  *FactoryConfig
		res *LoadResult
		err error
	)
	for attempt := 0; attempt <= o.retries; attempt++ {
		if attempt > 0 {
			o.logger.WithField("attempt", attempt).Info("Retrying factory config read")
		}
		fc, res, err = NewLoader(m, WithLogger(o.logger)).Load()
		res.Attempts = attempt + 1
		if res.Outcome != MediumError {
			break
		}
		o.logger.WithError(err).Error("Medium error reading factory config block")
	}
	res.Duration = time.Since(start)

	log := o.logger.WithField("outcome", res.Outcome)
	switch res.Outcome {
	case Success:
		log.WithField("blocks", res.BlocksDecoded).Debug("Factory Configuration loaded")
	case MalformedBlock:
		log.WithError(err).Warn(res.Outcome.Describe())
	default:
		log.WithError(err).Error(res.Outcome.Describe())
	}

	if res.Outcome.ResetsBase(o.policy) {
		if res.Outcome != MediumError {
			o.logger.Info("You must set the factory configuration to make permanent")
		}
		o.logger.Info("Setting configuration to defaults")
		fc.Reset()
		res.Defaulted = true
	}
	fc.Base.Terminate()
	return fc, res, err
}
