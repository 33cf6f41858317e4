package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ticket-stats/cmd/mockgen/engine"
	"ticket-stats/internal/config"
)

func main() {
	outDir := flag.String("out", "./.cache", "Output directory for mock workbooks")
	count := flag.Int("count", 500, "Number of tickets to generate")
	year := flag.Int("year", time.Now().Year(), "Latest year covered by the tickets")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	serial := flag.Bool("serial-dates", true, "Write half of the dates as Excel serial numbers")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Count:       *count,
		Year:        *year,
		Seed:        *seed,
		SerialDates: *serial,
	}

	fmt.Printf("Generating %d tickets for %d-%d (seed %d) to %s...\n", cfg.Count, cfg.Year-1, cfg.Year, cfg.Seed, *outDir)

	ticketSheet, orgSheet := engine.Generate(cfg)
	if err := engine.Save(*outDir, config.DefaultTicketFile, config.DefaultOrgFile, ticketSheet, orgSheet); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
