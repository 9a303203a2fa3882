package subscription

import (
	"github.com/cohortlens/cohortlens/internal/subscription/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription",
	fx.Provide(repository.New),
)
