package payment

import (
	"github.com/openmotel/motel/internal/payment/repository"
	"github.com/openmotel/motel/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
