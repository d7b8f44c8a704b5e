package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmadqo/club-certificate-engine/internal/metrics"
	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/ahmadqo/club-certificate-engine/internal/repository"
	"github.com/ahmadqo/club-certificate-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	ErrCertificateNotFound  = errors.New("certificate not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrCompetitionNotFound  = errors.New("competition not found")
	ErrInvalidID            = errors.New("invalid ID")
)

// codeAttempts bounds regeneration after a validation code collision.
const codeAttempts = 3

// Renderer turns a certificate into PDF bytes.
type Renderer interface {
	Render(cert *model.Certificate, competitionName string) ([]byte, error)
}

// VerificationCache is an optional read-through cache for GetByCode.
type VerificationCache interface {
	Get(ctx context.Context, code string) (*model.Certificate, error)
	Set(ctx context.Context, cert *model.Certificate) error
	Delete(ctx context.Context, code string) error
}

// Archive stores rendered PDFs of newly issued certificates.
type Archive interface {
	PutPDF(ctx context.Context, key string, data []byte) (string, error)
	RemovePDF(ctx context.Context, key string) error
}

type CertificateService interface {
	RankCompetition(ctx context.Context, competitionID string) ([]model.CategoryRanking, error)
	IssueSingle(ctx context.Context, reg *model.CompetitionRegistration, comp *model.Competition) (*model.Certificate, bool, error)
	IssueBulk(ctx context.Context, competitionID string, includeParticipants bool) ([]*model.Certificate, error)
	GetCertificateForRegistration(ctx context.Context, registrationID string) (*Download, error)
	GetByCode(ctx context.Context, code string) (*model.Certificate, error)
	GetByID(ctx context.Context, id string) (*model.Certificate, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]*model.Certificate, error)
	Delete(ctx context.Context, id string) error
}

// Download is a rendered certificate together with the record it was rendered from.
type Download struct {
	Certificate *model.Certificate
	PDF         []byte
}

type Option func(*certificateService)

func WithLogger(logger *logrus.Entry) Option {
	return func(s *certificateService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *certificateService) { s.metrics = m }
}

func WithVerificationCache(c VerificationCache) Option {
	return func(s *certificateService) { s.cache = c }
}

func WithArchive(a Archive) Option {
	return func(s *certificateService) { s.archive = a }
}

// WithClock overrides the issuance timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *certificateService) { s.now = now }
}

// WithCodeGenerator overrides validation code generation.
func WithCodeGenerator(gen func(time.Time) (string, error)) Option {
	return func(s *certificateService) { s.newCode = gen }
}

type certificateService struct {
	repo     repository.CertificateRepository
	regRepo  repository.RegistrationRepository
	renderer Renderer
	baseURL  string

	logger  *logrus.Entry
	metrics *metrics.Metrics
	cache   VerificationCache
	archive Archive
	now     func() time.Time
	newCode func(time.Time) (string, error)

	// inflight collapses concurrent first issuance of the same (competition, recipient)
	// pair inside this process. The store's unique constraint covers other processes.
	inflight singleflight.Group
}

func NewCertificateService(
	repo repository.CertificateRepository,
	regRepo repository.RegistrationRepository,
	renderer Renderer,
	baseURL string,
	opts ...Option,
) CertificateService {
	s := &certificateService{
		repo:     repo,
		regRepo:  regRepo,
		renderer: renderer,
		baseURL:  baseURL,
		logger:   logrus.NewEntry(logrus.StandardLogger()),
		now:      time.Now,
		newCode:  utils.GenerateValidationCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return uid, nil
}

func pairKey(competitionID, recipientID uuid.UUID) string {
	return competitionID.String() + ":" + recipientID.String()
}

// BulkAchievement is "{n}{suffix} Place" for the podium and PARTICIPANT otherwise.
func BulkAchievement(rank int) string {
	if rank >= 1 && rank <= 3 {
		return utils.Ordinal(rank) + " Place"
	}
	return model.AchievementParticipant
}

func (s *certificateService) RankCompetition(ctx context.Context, competitionID string) ([]model.CategoryRanking, error) {
	compID, err := parseID(competitionID)
	if err != nil {
		return nil, err
	}
	comp, err := s.regRepo.FindCompetitionByID(ctx, compID)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, ErrCompetitionNotFound
	}

	regs, err := s.regRepo.FindByCompetitionID(ctx, compID)
	if err != nil {
		return nil, err
	}
	return SortedRankings(RankByCategory(regs)), nil
}

// IssueSingle finds or creates the certificate for the registration's athlete. An existing
// certificate has its download counter bumped and is otherwise returned unchanged. The bool
// reports whether this call created the certificate.
func (s *certificateService) IssueSingle(ctx context.Context, reg *model.CompetitionRegistration, comp *model.Competition) (*model.Certificate, bool, error) {
	existing, err := s.repo.FindByCompetitionAndRecipient(ctx, comp.ID, reg.AthleteID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return s.bumpDownloadCount(ctx, existing)
	}

	type result struct {
		cert    *model.Certificate
		created bool
	}
	// Only the caller whose function runs owns the creation; callers that joined the
	// in-flight call see an existing certificate. The shared call runs detached from the
	// leader's cancellation so that joined callers do not fail with it.
	leader := false
	v, err, _ := s.inflight.Do(pairKey(comp.ID, reg.AthleteID), func() (interface{}, error) {
		leader = true
		cert, created, err := s.createOnce(context.WithoutCancel(ctx), func(code string, issuedAt time.Time) *model.Certificate {
			return &model.Certificate{
				ID:             uuid.New(),
				CompetitionID:  comp.ID,
				RecipientID:    reg.AthleteID,
				RecipientName:  reg.AthleteName,
				Category:       reg.ResolvedCategory(),
				Achievement:    SingleAchievement(reg.Rank),
				Rank:           podiumRank(reg.Rank),
				TotalScore:     reg.QualificationScore,
				ValidationCode: code,
				ValidationURL:  utils.ValidationURL(s.baseURL, code),
				TemplateType:   model.TemplateForRank(reg.Rank),
				IssuedAt:       issuedAt,
			}
		})
		if err != nil {
			return nil, err
		}
		return result{cert: cert, created: created}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := v.(result)
	if !leader || !res.created {
		return s.bumpDownloadCount(ctx, res.cert)
	}
	s.metrics.IncIssued(metrics.PathSingle)
	return res.cert, true, nil
}

// podiumRank keeps ranks 1 to 3; any other rank is stored as null.
func podiumRank(rank *int) *int {
	if rank == nil || *rank < 1 || *rank > 3 {
		return nil
	}
	r := *rank
	return &r
}

func (s *certificateService) bumpDownloadCount(ctx context.Context, existing *model.Certificate) (*model.Certificate, bool, error) {
	updated, err := s.repo.IncrementDownloadCount(ctx, existing.ID)
	if err != nil {
		return nil, false, err
	}
	if updated == nil {
		// deleted between lookup and increment
		return nil, false, ErrCertificateNotFound
	}
	return updated, false, nil
}

// createOnce inserts a new certificate built by build. A uniqueness conflict on the
// (competition, recipient) pair re-fetches and returns the winner's row with created=false;
// a validation code collision regenerates the code.
func (s *certificateService) createOnce(
	ctx context.Context,
	build func(code string, issuedAt time.Time) *model.Certificate,
) (*model.Certificate, bool, error) {
	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		issuedAt := s.now()
		code, err := s.newCode(issuedAt)
		if err != nil {
			return nil, false, err
		}
		cert := build(code, issuedAt)

		err = s.repo.Create(ctx, cert)
		switch {
		case err == nil:
			s.logger.WithFields(logrus.Fields{
				"competition_id":  cert.CompetitionID,
				"recipient_id":    cert.RecipientID,
				"validation_code": cert.ValidationCode,
			}).Info("certificate issued")
			return cert, true, nil

		case errors.Is(err, repository.ErrCertificateConflict):
			s.metrics.IncConflicts()
			existing, findErr := s.repo.FindByCompetitionAndRecipient(ctx, cert.CompetitionID, cert.RecipientID)
			if findErr != nil {
				return nil, false, findErr
			}
			if existing == nil {
				return nil, false, err
			}
			s.logger.WithFields(logrus.Fields{
				"competition_id": cert.CompetitionID,
				"recipient_id":   cert.RecipientID,
			}).Debug("certificate created concurrently, returning existing")
			return existing, false, nil

		case errors.Is(err, repository.ErrValidationCodeTaken):
			s.logger.WithField("validation_code", code).Warn("validation code collision, regenerating")
			lastErr = err
			continue

		default:
			return nil, false, err
		}
	}
	return nil, false, lastErr
}

// IssueBulk ranks every registration of the competition and creates certificates for
// recipients that do not have one yet. Only certificates created by this call are returned.
// The loop is not atomic; re-running it skips recipients already certified.
func (s *certificateService) IssueBulk(ctx context.Context, competitionID string, includeParticipants bool) ([]*model.Certificate, error) {
	compID, err := parseID(competitionID)
	if err != nil {
		return nil, err
	}
	comp, err := s.regRepo.FindCompetitionByID(ctx, compID)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, ErrCompetitionNotFound
	}

	regs, err := s.regRepo.FindByCompetitionID(ctx, compID)
	if err != nil {
		return nil, err
	}

	created := make([]*model.Certificate, 0)
	skipped := 0
	for _, group := range SortedRankings(RankByCategory(regs)) {
		for _, entry := range group.Entries {
			if !includeParticipants && entry.Rank > 3 {
				continue
			}

			reg := entry.Registration
			existing, err := s.repo.FindByCompetitionAndRecipient(ctx, comp.ID, reg.AthleteID)
			if err != nil {
				return created, err
			}
			if existing != nil {
				skipped++
				continue
			}

			var rank *int
			if entry.Rank <= 3 {
				r := entry.Rank
				rank = &r
			}
			category := group.Category
			cert, isNew, err := s.createOnce(ctx, func(code string, issuedAt time.Time) *model.Certificate {
				return &model.Certificate{
					ID:             uuid.New(),
					CompetitionID:  comp.ID,
					RecipientID:    reg.AthleteID,
					RecipientName:  reg.AthleteName,
					Category:       category,
					Achievement:    BulkAchievement(entry.Rank),
					Rank:           rank,
					TotalScore:     reg.QualificationScore,
					ValidationCode: code,
					ValidationURL:  utils.ValidationURL(s.baseURL, code),
					TemplateType:   model.TemplateForRank(rank),
					IssuedAt:       issuedAt,
				}
			})
			if err != nil {
				return created, err
			}
			if !isNew {
				skipped++
				continue
			}
			s.metrics.IncIssued(metrics.PathBulk)
			created = append(created, cert)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"competition_id":       comp.ID,
		"include_participants": includeParticipants,
		"created":              len(created),
		"skipped":              skipped,
	}).Info("bulk certificate issuance finished")

	return created, nil
}

// GetCertificateForRegistration issues (or re-fetches) the registration's certificate and
// renders it. The competition line uses the live competition name.
func (s *certificateService) GetCertificateForRegistration(ctx context.Context, registrationID string) (*Download, error) {
	regID, err := parseID(registrationID)
	if err != nil {
		return nil, err
	}
	reg, err := s.regRepo.FindByID(ctx, regID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}

	comp := reg.Competition()
	cert, created, err := s.IssueSingle(ctx, reg, &comp)
	if err != nil {
		return nil, err
	}

	pdf, err := s.renderer.Render(cert, reg.CompetitionName)
	if err != nil {
		s.metrics.IncRenderFailures()
		s.logger.WithError(err).WithField("certificate_id", cert.ID).Error("render certificate")
		return nil, err
	}
	s.metrics.IncDownloads()

	if created && s.archive != nil {
		s.archivePDF(ctx, cert, pdf)
	}

	return &Download{Certificate: cert, PDF: pdf}, nil
}

func (s *certificateService) archivePDF(ctx context.Context, cert *model.Certificate, pdf []byte) {
	key := utils.CertificateObjectKey(cert.CompetitionID.String(), cert.ValidationCode)
	url, err := s.archive.PutPDF(ctx, key, pdf)
	if err != nil {
		s.logger.WithError(err).WithField("certificate_id", cert.ID).Warn("archive certificate PDF")
		return
	}
	s.logger.WithFields(logrus.Fields{"certificate_id": cert.ID, "url": url}).Debug("certificate PDF archived")
}

// GetByCode is the public verification lookup. It has no side effects on the record.
func (s *certificateService) GetByCode(ctx context.Context, code string) (*model.Certificate, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logger.WithError(err).Warn("verification cache read")
		} else if cached != nil {
			s.metrics.IncVerification(metrics.ResultFound)
			return cached, nil
		}
	}

	cert, err := s.repo.FindByValidationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		s.metrics.IncVerification(metrics.ResultNotFound)
		return nil, ErrCertificateNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cert); err != nil {
			s.logger.WithError(err).Warn("verification cache write")
		} else if err := s.recheckCached(ctx, cert); err != nil {
			return nil, err
		}
	}
	s.metrics.IncVerification(metrics.ResultFound)
	return cert, nil
}

// recheckCached evicts a freshly cached certificate that was deleted between the store read
// and the cache write.
func (s *certificateService) recheckCached(ctx context.Context, cert *model.Certificate) error {
	current, err := s.repo.FindByID(ctx, cert.ID)
	if err != nil {
		return err
	}
	if current != nil {
		return nil
	}
	if err := s.cache.Delete(ctx, cert.ValidationCode); err != nil {
		s.logger.WithError(err).Warn("verification cache evict")
	}
	s.metrics.IncVerification(metrics.ResultNotFound)
	return ErrCertificateNotFound
}

func (s *certificateService) GetByID(ctx context.Context, id string) (*model.Certificate, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	cert, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, ErrCertificateNotFound
	}
	return cert, nil
}

func (s *certificateService) ListByCompetition(ctx context.Context, competitionID string) ([]*model.Certificate, error) {
	compID, err := parseID(competitionID)
	if err != nil {
		return nil, err
	}
	certs, err := s.repo.FindByCompetitionID(ctx, compID)
	if err != nil {
		return nil, err
	}
	if certs == nil {
		certs = []*model.Certificate{}
	}
	return certs, nil
}

// Delete removes the certificate, its cached verification entry and its archived PDF.
// The pair may be issued again afterwards, with a new validation code.
func (s *certificateService) Delete(ctx context.Context, id string) error {
	cert, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, cert.ID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cert.ValidationCode); err != nil {
			s.logger.WithError(err).Warn("verification cache evict")
		}
	}
	if s.archive != nil {
		key := utils.CertificateObjectKey(cert.CompetitionID.String(), cert.ValidationCode)
		if err := s.archive.RemovePDF(ctx, key); err != nil {
			s.logger.WithError(err).WithField("certificate_id", cert.ID).Warn("remove archived PDF")
		}
	}

	s.logger.WithField("certificate_id", cert.ID).Info("certificate deleted")
	return nil
}
