// main.go
package main

import (
	"log"

	"cinema-tickets/cmd"
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/events"
	"cinema-tickets/internal/gateway"
	"cinema-tickets/internal/wire"
	"cinema-tickets/pkg/cache"
	"cinema-tickets/pkg/database"
	"cinema-tickets/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Payment gateway
	gw := gateway.NewMidtransGateway(config.Midtrans, logger)

	// Seat cache. A missing Redis degrades to direct repository reads.
	redisClient := cache.NewRedisClient(config.Redis, logger)
	seats := cache.NewSeatCache(redisClient, config.Redis.SeatTTL, logger)

	// Optional booking status events
	var publisher *events.Publisher
	if config.Events.Enabled {
		publisher, err = events.NewPublisher(config.Events.AMQPURL, logger)
		if err != nil {
			logger.Warn("Failed to connect event broker, status events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
		}
	}

	// Wire all dependencies
	app := wire.Wiring(repos, gw, seats, publisher, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
