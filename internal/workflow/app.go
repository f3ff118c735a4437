package workflow

import (
	"github.com/colonyops/signoff/internal/core/bundle"
	"github.com/colonyops/signoff/internal/core/config"
	"github.com/colonyops/signoff/internal/core/review"
	"github.com/colonyops/signoff/internal/core/signoff"
	"github.com/rs/zerolog"
)

// App is the central entry point for all signoff operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Reviews *ReviewService
	Signoff *SignoffService
	Config  *config.Config
}

// NewApp constructs an App from explicit dependencies. A nil recorder
// discards operation outcomes.
func NewApp(
	cfg *config.Config,
	sessions review.Store,
	metadata signoff.MetadataStore,
	validator bundle.Validator,
	recorder Recorder,
	log zerolog.Logger,
) *App {
	reviews := NewReviewService(sessions, log)
	if recorder != nil {
		reviews.recorder = recorder
	}

	return &App{
		Reviews: reviews,
		Signoff: NewSignoffService(reviews, metadata, validator, log),
		Config:  cfg,
	}
}
