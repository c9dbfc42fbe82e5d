package main

import (
	"flag"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kardemumma/internal/app"
)

// One-off roster maintenance: split every (semester, section) student
// roster into Batch-1/Batch-2. Runs offline, never on the request
// path, and is safe to re-run after enrollment changes.
func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	var giveExtraTo = flag.String("extra-to", "", "Batch that takes the odd student (overrides config)")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	target := service.Config.Batches.GiveExtraTo
	if *giveExtraTo != "" {
		target = *giveExtraTo
	}
	if target == "" {
		target = "Batch-2"
	}

	logger.Info.Printf("Redistributing batches, odd student goes to %s", target)
	if err := service.RedistributeBatches(target); err != nil {
		logger.Error.Fatalf("Batch redistribution failed: %v", err)
	}
	logger.Info.Println("Done dividing batches by semester+section")
}
