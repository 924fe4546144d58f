package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/analemma/pkg/config"
)

func main() {
	yamlFile := flag.String("yaml", "", "Path to YAML configuration file")
	flag.Parse()

	if *yamlFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Test")
	fmt.Println("==================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	cfg, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Configuration is valid")

	fmt.Println("\nEffective configuration (defaults applied):")
	fmt.Printf("  server.listen:          %s\n", cfg.Server.Address())
	fmt.Printf("  ephemeris.backend:      %s\n", cfg.Ephemeris.Backend)
	fmt.Printf("  cache.capacity:         %d\n", cfg.Cache.Capacity)
	fmt.Printf("  cache.warm_schedule:    %s\n", cfg.Cache.WarmSchedule)
	fmt.Printf("  cache.warm_years_ahead: %d\n", cfg.Cache.WarmYearsAhead)
	fmt.Printf("  log.debug:              %t\n", cfg.Log.Debug)
	if cfg.Log.File != "" {
		fmt.Printf("  log.file:               %s (%d MB x %d backups)\n", cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	} else {
		fmt.Printf("  log.file:               (stderr only)\n")
	}
}
