//go:build wireinject

package main

import (
	"pulse-server/internal/domain"
	"pulse-server/internal/infrastructure"
	"pulse-server/internal/interfaces"
	"pulse-server/internal/interfaces/httpserver/routes"

	"github.com/google/wire"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		domain.ServiceProvider,
		infrastructure.InfrastructureProvider,
		routes.RouteProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}

func CreateDataInitializer() (*DataInitializer, error) {
	wire.Build(
		infrastructure.InfrastructureProvider,
		wire.Struct(new(DataInitializer), "*"),
	)
	return nil, nil
}
