package customer

import (
	"github.com/cohortlens/cohortlens/internal/customer/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("customer",
	fx.Provide(repository.New),
)
