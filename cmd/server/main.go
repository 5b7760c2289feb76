package main

import (
	"tap-redirect-engine/internal/app"
	"tap-redirect-engine/internal/config"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.Server.LogLevel)
	app.Run(cfg)
}
