package room

import (
	"github.com/openmotel/motel/internal/room/service"
	"go.uber.org/fx"
)

var Module = fx.Module("room.guard",
	fx.Provide(service.NewGuard),
)
