package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/ahmadqo/club-certificate-engine/internal/repository"
)

// memoryCertificates enforces the same uniqueness rules as the certificates table.
type memoryCertificates struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*model.Certificate
	delay time.Duration

	// staleLookups makes the next N pair lookups miss, simulating a concurrent insert
	// landing between lookup and create.
	staleLookups int
	createCalls  int
}

func newMemoryCertificates() *memoryCertificates {
	return &memoryCertificates{byID: make(map[uuid.UUID]*model.Certificate)}
}

func clone(c *model.Certificate) *model.Certificate {
	cp := *c
	return &cp
}

func (m *memoryCertificates) FindByID(_ context.Context, id uuid.UUID) (*model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok {
		return clone(c), nil
	}
	return nil, nil
}

func (m *memoryCertificates) FindByCompetitionAndRecipient(_ context.Context, competitionID, recipientID uuid.UUID) (*model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staleLookups > 0 {
		m.staleLookups--
		return nil, nil
	}
	for _, c := range m.byID {
		if c.CompetitionID == competitionID && c.RecipientID == recipientID {
			return clone(c), nil
		}
	}
	return nil, nil
}

func (m *memoryCertificates) FindByValidationCode(_ context.Context, code string) (*model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.ValidationCode == code {
			return clone(c), nil
		}
	}
	return nil, nil
}

func (m *memoryCertificates) FindByCompetitionID(_ context.Context, competitionID uuid.UUID) ([]*model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Certificate
	for _, c := range m.byID {
		if c.CompetitionID == competitionID {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecipientName < out[j].RecipientName })
	return out, nil
}

func (m *memoryCertificates) Create(ctx context.Context, cert *model.Certificate) error {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if c.CompetitionID == cert.CompetitionID && c.RecipientID == cert.RecipientID {
			return fmt.Errorf("%w: pair", repository.ErrCertificateConflict)
		}
		if c.ValidationCode == cert.ValidationCode {
			return fmt.Errorf("%w: %s", repository.ErrValidationCodeTaken, cert.ValidationCode)
		}
	}
	cert.CreatedAt = cert.IssuedAt
	m.byID[cert.ID] = clone(cert)
	return nil
}

func (m *memoryCertificates) IncrementDownloadCount(_ context.Context, id uuid.UUID) (*model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	c.DownloadCount++
	return clone(c), nil
}

func (m *memoryCertificates) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memoryCertificates) creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

func (m *memoryCertificates) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *memoryCertificates) insert(c *model.Certificate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[c.ID] = clone(c)
}

type memoryRegistrations struct {
	competitions  map[uuid.UUID]*model.Competition
	registrations []*model.CompetitionRegistration
}

func (m *memoryRegistrations) FindByID(_ context.Context, id uuid.UUID) (*model.CompetitionRegistration, error) {
	for _, r := range m.registrations {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memoryRegistrations) FindByCompetitionID(_ context.Context, competitionID uuid.UUID) ([]*model.CompetitionRegistration, error) {
	var out []*model.CompetitionRegistration
	for _, r := range m.registrations {
		if r.CompetitionID == competitionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRegistrations) FindCompetitionByID(_ context.Context, id uuid.UUID) (*model.Competition, error) {
	return m.competitions[id], nil
}

type stubRenderer struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (r *stubRenderer) Render(cert *model.Certificate, competitionName string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, competitionName)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.3 " + cert.ValidationCode), nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*model.Certificate
	getErr  error
	hits    int

	// afterSet runs once the entry is stored, outside the lock.
	afterSet func(cert *model.Certificate)
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*model.Certificate)}
}

func (c *memoryCache) Get(_ context.Context, code string) (*model.Certificate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	cert, ok := c.entries[code]
	if !ok {
		return nil, nil
	}
	c.hits++
	return clone(cert), nil
}

func (c *memoryCache) Set(_ context.Context, cert *model.Certificate) error {
	c.mu.Lock()
	c.entries[cert.ValidationCode] = clone(cert)
	hook := c.afterSet
	c.mu.Unlock()
	if hook != nil {
		hook(cert)
	}
	return nil
}

func (c *memoryCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
	return nil
}

type memoryArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	puts    int
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{objects: make(map[string][]byte)}
}

func (a *memoryArchive) PutPDF(_ context.Context, key string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.puts++
	if a.putErr != nil {
		return "", a.putErr
	}
	a.objects[key] = data
	return "memory://" + key, nil
}

func (a *memoryArchive) RemovePDF(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.objects[key]; !ok {
		return errors.New("object not found")
	}
	delete(a.objects, key)
	return nil
}
