package market

import (
	"github.com/cohortlens/cohortlens/internal/market/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("market",
	fx.Provide(repository.New),
)
