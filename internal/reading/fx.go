package reading

import (
	"github.com/openmotel/motel/internal/reading/repository"
	"github.com/openmotel/motel/internal/reading/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reading.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
