package billing

import (
	"github.com/openmotel/motel/internal/billing/repository"
	"github.com/openmotel/motel/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
