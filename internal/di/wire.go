//go:build wireinject
// +build wireinject

package di

import (
	"StonkPulse/internal/usecase"
	"StonkPulse/pkg/config"
	"StonkPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,
		ProvideHTTPClient,
		ProvideGateway,

		// Panels
		ProvideTickerStrip,
		ProvideMarketSummary,
		ProvideNewsFeed,
		ProvideChartFeed,
		ProvideSession,
		usecase.NewDashboard,

		// Display adapter
		ProvideLimiter,
		ProvideSnapshotStream,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
