package checklist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"accredify/apiclient"
)

var (
	// ErrNoRecord is returned for comment or evidence edits on an item that
	// has no compliance record yet.
	ErrNoRecord = errors.New("checklist: no compliance record for item")
	// ErrInvalidInput is returned when a status or evidence URL fails
	// validation before any request is made.
	ErrInvalidInput = errors.New("checklist: invalid input")
)

// API is the part of the backend client the checklist needs.
type API interface {
	Proformas(ctx context.Context) ([]apiclient.ProformaTemplate, error)
	Institutions(ctx context.Context) ([]apiclient.Institution, error)
	Compliances(ctx context.Context, f apiclient.ComplianceFilter) ([]apiclient.Compliance, error)
	CreateCompliance(ctx context.Context, in apiclient.ComplianceCreate) (*apiclient.Compliance, error)
	UpdateCompliance(ctx context.Context, id string, patch apiclient.CompliancePatch) (*apiclient.Compliance, error)
}

// Catalog is everything the checklist page can select from.
type Catalog struct {
	Templates    []apiclient.ProformaTemplate
	Institutions []apiclient.Institution
	// Default is the template auto-selected by code, or nil.
	Default *apiclient.ProformaTemplate
}

// Template finds a template by id.
func (c Catalog) Template(id string) *apiclient.ProformaTemplate {
	for i := range c.Templates {
		if c.Templates[i].ID == id {
			return &c.Templates[i]
		}
	}
	return nil
}

// Institution finds an institution by id.
func (c Catalog) Institution(id string) *apiclient.Institution {
	for i := range c.Institutions {
		if c.Institutions[i].ID == id {
			return &c.Institutions[i]
		}
	}
	return nil
}

// Service loads checklist data and applies field edits. One Service is shared
// by all requests; the API is passed per call because it carries the
// caller's session.
type Service struct {
	templateCode string
	validate     *validator.Validate
	locks        *keyedMutex
}

// NewService returns a service that auto-selects the template with code
// templateCode.
func NewService(templateCode string) *Service {
	return &Service{
		templateCode: templateCode,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		locks:        newKeyedMutex(),
	}
}

func (s *Service) TemplateCode() string { return s.templateCode }

// Load fetches templates and institutions in parallel. Either failing fails
// the whole load.
func (s *Service) Load(ctx context.Context, api API) (Catalog, error) {
	var cat Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tmpls, err := api.Proformas(gctx)
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}
		cat.Templates = tmpls
		return nil
	})
	g.Go(func() error {
		insts, err := api.Institutions(gctx)
		if err != nil {
			return fmt.Errorf("load institutions: %w", err)
		}
		cat.Institutions = insts
		return nil
	})
	if err := g.Wait(); err != nil {
		return Catalog{}, err
	}

	for i := range cat.Templates {
		if cat.Templates[i].Code == s.templateCode {
			cat.Default = &cat.Templates[i]
			break
		}
	}
	return cat, nil
}

// Board fetches every compliance record of institution and builds a fresh
// board from them.
func (s *Service) Board(ctx context.Context, api API, institution string) (*Board, error) {
	recs, err := api.Compliances(ctx, apiclient.ComplianceFilter{Institution: institution})
	if err != nil {
		return nil, fmt.Errorf("load compliances for %s: %w", institution, err)
	}
	return NewBoard(institution, recs), nil
}

// Find returns the existing record for (institution, item), or nil.
func (s *Service) Find(ctx context.Context, api API, institution, item string) (*apiclient.Compliance, error) {
	recs, err := api.Compliances(ctx, apiclient.ComplianceFilter{Institution: institution, Item: item})
	if err != nil {
		return nil, fmt.Errorf("find compliance %s/%s: %w", institution, item, err)
	}
	for i := range recs {
		if recs[i].Item == item && (recs[i].Institution == "" || recs[i].Institution == institution) {
			return &recs[i], nil
		}
	}
	return nil, nil
}

// SetStatus updates the status of an existing record, or creates the record
// with empty comment and evidence. The server's copy is returned.
func (s *Service) SetStatus(ctx context.Context, api API, institution, item, status string) (*apiclient.Compliance, error) {
	if err := s.validate.Var(status, "required,oneof=YES NO PARTIAL NA"); err != nil {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}

	unlock := s.locks.lock(institution + "/" + item)
	defer unlock()

	existing, err := s.Find(ctx, api, institution, item)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		rec, err := api.UpdateCompliance(ctx, existing.ID, apiclient.CompliancePatch{Status: &status})
		if err != nil {
			return nil, fmt.Errorf("update status of %s: %w", existing.ID, err)
		}
		return rec, nil
	}

	in := apiclient.ComplianceCreate{
		Institution: institution,
		Item:        item,
		Status:      status,
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	rec, err := api.CreateCompliance(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create compliance %s/%s: %w", institution, item, err)
	}
	return rec, nil
}

// SetComment replaces the comment of an existing record.
func (s *Service) SetComment(ctx context.Context, api API, institution, item, comment string) (*apiclient.Compliance, error) {
	return s.patchExisting(ctx, api, institution, item, apiclient.CompliancePatch{Comment: &comment})
}

// SetEvidence replaces the evidence URL of an existing record. The URL must
// be empty or absolute.
func (s *Service) SetEvidence(ctx context.Context, api API, institution, item, evidenceURL string) (*apiclient.Compliance, error) {
	if err := s.validate.Var(evidenceURL, "omitempty,url"); err != nil {
		return nil, fmt.Errorf("%w: evidence url %q", ErrInvalidInput, evidenceURL)
	}
	return s.patchExisting(ctx, api, institution, item, apiclient.CompliancePatch{EvidenceURL: &evidenceURL})
}

func (s *Service) patchExisting(ctx context.Context, api API, institution, item string, patch apiclient.CompliancePatch) (*apiclient.Compliance, error) {
	unlock := s.locks.lock(institution + "/" + item)
	defer unlock()

	existing, err := s.Find(ctx, api, institution, item)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNoRecord
	}
	rec, err := api.UpdateCompliance(ctx, existing.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", existing.ID, err)
	}
	return rec, nil
}

// keyedMutex serializes work per key. Entries are dropped once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*keyedEntry{}}
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
