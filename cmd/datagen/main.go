package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanshika/skillgraph/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		people        = flag.Int("people", cfg.NumPeople, "number of people to generate")
		services      = flag.Int("services", cfg.NumServices, "number of services to generate")
		coOfferChance = flag.Float64("co-offer-chance", cfg.CoOfferChance, "probability that a second person offers a service")
		maxUses       = flag.Int("max-uses", cfg.MaxUsesPerPerson, "maximum number of services each person uses")
		password      = flag.String("password", cfg.Password, "password assigned to every generated account")
		roles         = flag.String("roles", "", "comma-separated person roles (defaults to Student,Faculty,Staff,Alumni)")
		seed          = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir     = flag.String("output-dir", "seed-data", "directory to write people.json, services.json and links.json")
		writeStdout   = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumPeople:        *people,
		NumServices:      *services,
		CoOfferChance:    clampProbability(*coOfferChance),
		MaxUsesPerPerson: *maxUses,
		Password:         *password,
		Roles:            splitRoles(*roles),
		Seed:             *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d people, %d services and %d links into %s\n",
		len(dataset.People), len(dataset.Services), len(dataset.Links), *outputDir)
}

func splitRoles(csv string) []string {
	var roles []string
	for _, part := range strings.Split(csv, ",") {
		if role := strings.TrimSpace(part); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
