package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vanshika/skillgraph/backend/internal/apperr"
	"github.com/vanshika/skillgraph/backend/internal/auth"
	"github.com/vanshika/skillgraph/backend/internal/domain"
)

// TaskError accumulates the errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d records failed:", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString(" ")
		b.WriteString(err.Error())
		b.WriteString(";")
	}
	return b.String()
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor seeds people, services and links using worker pools. Every
// record goes through the same services the HTTP API uses.
type BulkIngestor struct {
	identity      *IdentityService
	catalog       *CatalogService
	relationships *RelationshipService
	workers       int
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(identity *IdentityService, catalog *CatalogService, relationships *RelationshipService, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		identity:      identity,
		catalog:       catalog,
		relationships: relationships,
		workers:       workers,
	}
}

// IngestPeople registers the provided people concurrently. People whose
// email is already registered are skipped.
func (bi *BulkIngestor) IngestPeople(ctx context.Context, people []SeedPerson) error {
	return bi.run(ctx, len(people), func(idx int) error {
		p := people[idx]
		_, err := bi.identity.Register(ctx, RegisterInput{
			Name:     p.Name,
			Email:    p.Email,
			Password: p.Password,
			Role:     p.Role,
		})
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil
		}
		if err != nil {
			return fmt.Errorf("person %s: %w", p.Email, err)
		}
		return nil
	})
}

// IngestServices creates Service nodes on behalf of their owners. Services
// whose name already exists in the graph, or earlier in the batch, are skipped.
func (bi *BulkIngestor) IngestServices(ctx context.Context, services []SeedService) error {
	existing, err := bi.catalog.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("list existing services: %w", err)
	}
	seen := make(map[string]struct{}, len(existing)+len(services))
	for _, node := range existing {
		if name, ok := node.Properties[domain.PropName].(string); ok {
			seen[name] = struct{}{}
		}
	}
	pending := make([]SeedService, 0, len(services))
	for _, svc := range services {
		name := sanitizeString(svc.Name)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		pending = append(pending, svc)
	}

	return bi.run(ctx, len(pending), func(idx int) error {
		svc := pending[idx]
		owner, err := bi.resolve(ctx, svc.OwnerEmail)
		if err != nil {
			return fmt.Errorf("service %s: %w", svc.Name, err)
		}
		if _, err := bi.catalog.CreateService(ctx, owner, ServiceInput{Name: svc.Name, Description: svc.Description}); err != nil {
			return fmt.Errorf("service %s: %w", svc.Name, err)
		}
		return nil
	})
}

// IngestLinks creates OFFERS and USES edges. Run it after people and
// services exist.
func (bi *BulkIngestor) IngestLinks(ctx context.Context, links []SeedLink) error {
	return bi.run(ctx, len(links), func(idx int) error {
		link := links[idx]
		caller, err := bi.resolve(ctx, link.PersonEmail)
		if err != nil {
			return fmt.Errorf("link %s -> %s: %w", link.PersonEmail, link.ServiceName, err)
		}
		switch link.Type {
		case domain.RelationshipOffers:
			_, err = bi.relationships.Offer(ctx, caller, link.ServiceName)
		case domain.RelationshipUses:
			_, err = bi.relationships.Use(ctx, caller, link.ServiceName)
		default:
			err = apperr.Validation(fmt.Sprintf("unknown relationship type %q", link.Type))
		}
		if err != nil {
			return fmt.Errorf("link %s -[%s]-> %s: %w", link.PersonEmail, link.Type, link.ServiceName, err)
		}
		return nil
	})
}

func (bi *BulkIngestor) resolve(ctx context.Context, email string) (auth.Identity, error) {
	profile, err := bi.identity.Me(ctx, auth.Identity{Email: normalizeEmail(email)})
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{Email: profile.Email, Name: profile.Name, Role: profile.Role}, nil
}

// run fans indexes out to the worker pool and gathers failures into a TaskError.
func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			// errCh holds one slot per record, so sends never block.
			if err := workerFn(idx); err != nil {
				errCh <- err
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)
	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
