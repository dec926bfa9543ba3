package main

import (
	"github.com/agronexus/marketplace/internal/app"
	"github.com/agronexus/marketplace/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
