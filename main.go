package main

import (
	"github.com/okarpenko/podhaven/internal/config"
	"github.com/okarpenko/podhaven/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
)

func main() {
	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
