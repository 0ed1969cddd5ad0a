// Command seed populates the database with the built-in attack pattern
// catalog and an example protected domain, for local development.
package main

import (
	"errors"
	"log"

	"github.com/gatewarden/gatewarden/internal/config"
	"github.com/gatewarden/gatewarden/internal/database"
	"github.com/gatewarden/gatewarden/internal/models"
	"github.com/gatewarden/gatewarden/internal/services"
	"github.com/gatewarden/gatewarden/internal/waf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	inserted, err := services.NewPatternService(db).Seed(waf.DefaultCatalog())
	if err != nil {
		log.Fatalf("seed attack patterns: %v", err)
	}
	log.Printf("seeded %d attack patterns", inserted)

	domains := services.NewDomainService(db)
	example := &models.Domain{
		DomainName:    "example.local",
		TargetURL:     "http://localhost:3000",
		SecurityLevel: "moderate",
		RateLimit:     1000,
		IsActive:      true,
	}
	if err := domains.Create(example); err != nil {
		if errors.Is(err, services.ErrDomainExists) {
			log.Printf("example domain already present")
		} else {
			log.Fatalf("seed example domain: %v", err)
		}
	} else {
		log.Printf("seeded example domain %s", example.DomainName)
	}
}
