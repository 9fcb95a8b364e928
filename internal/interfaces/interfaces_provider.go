package interfaces

import (
	"github.com/google/wire"

	"pulse-server/internal/interfaces/httpserver"
)

var InterfacesProvider = wire.NewSet(
	httpserver.NewHttpServer,
)
