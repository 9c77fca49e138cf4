package contract

import (
	"github.com/openmotel/motel/internal/contract/repository"
	"github.com/openmotel/motel/internal/contract/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contract.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
