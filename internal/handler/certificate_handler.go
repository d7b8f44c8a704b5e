package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/ahmadqo/club-certificate-engine/internal/response"
	"github.com/ahmadqo/club-certificate-engine/internal/service"
	"github.com/ahmadqo/club-certificate-engine/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type CertificateHandler struct {
	svc    service.CertificateService
	logger *logrus.Entry
}

func NewCertificateHandler(svc service.CertificateService, logger *logrus.Entry) *CertificateHandler {
	return &CertificateHandler{svc: svc, logger: logger}
}

// writeError maps engine errors to HTTP statuses and logs anything unexpected.
func (h *CertificateHandler) writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		response.BadRequest(w, err.Error(), nil)
	case errors.Is(err, service.ErrCertificateNotFound),
		errors.Is(err, service.ErrRegistrationNotFound),
		errors.Is(err, service.ErrCompetitionNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, utils.ErrRenderingFailed):
		h.logger.WithError(err).WithField("op", op).Error("certificate rendering failed")
		response.InternalError(w, "Failed to render certificate")
	default:
		h.logger.WithError(err).WithField("op", op).Error("certificate request failed")
		response.InternalError(w, "Internal server error")
	}
}

// Verify looks up a certificate by its public validation code
// @Summary      Verify a certificate
// @Description  Public lookup by validation code; no authentication required
// @Tags         public
// @Produce      json
// @Param        code  path      string  true  "Validation code, e.g. CERT-LXJ2K9A1-7F3Q"
// @Success      200   {object}  response.Response{data=model.Certificate}
// @Failure      404   {object}  response.Response
// @Router       /verify/cert/{code} [get]
func (h *CertificateHandler) Verify(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	cert, err := h.svc.GetByCode(r.Context(), code)
	if err != nil {
		h.writeError(w, err, "verify")
		return
	}

	response.Success(w, "Certificate is authentic", cert)
}

// Download issues (if needed) and renders the certificate for a registration
// @Summary      Download certificate PDF
// @Tags         certificates
// @Produce      application/pdf
// @Param        registrationId  path  string  true  "Registration ID"
// @Security     BearerAuth
// @Success      200  {file}    file  "Certificate PDF"
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /certificates/registration/{registrationId}/download [get]
func (h *CertificateHandler) Download(w http.ResponseWriter, r *http.Request) {
	registrationID := chi.URLParam(r, "registrationId")

	dl, err := h.svc.GetCertificateForRegistration(r.Context(), registrationID)
	if err != nil {
		h.writeError(w, err, "download")
		return
	}

	response.PDF(w, fmt.Sprintf("certificate-%s.pdf", registrationID), dl.PDF)
}

// ListByCompetition lists every certificate of a competition
// @Summary      List competition certificates
// @Tags         certificates
// @Produce      json
// @Param        competitionId  path  string  true  "Competition ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Certificate}
// @Failure      400  {object}  response.Response
// @Router       /certificates/competition/{competitionId} [get]
func (h *CertificateHandler) ListByCompetition(w http.ResponseWriter, r *http.Request) {
	certs, err := h.svc.ListByCompetition(r.Context(), chi.URLParam(r, "competitionId"))
	if err != nil {
		h.writeError(w, err, "list")
		return
	}

	response.Success(w, "Certificates retrieved", certs)
}

// GenerateBulk ranks a competition and issues missing certificates
// @Summary      Bulk-issue certificates
// @Description  Ranks each category by qualification score and issues certificates to the podium, or to everyone when includeParticipants is true. Returns only newly created certificates.
// @Tags         certificates
// @Accept       json
// @Produce      json
// @Param        competitionId  path  string                  true   "Competition ID"
// @Param        request        body  model.BulkIssueRequest  false  "Options"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Certificate}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /certificates/generate-bulk/{competitionId} [post]
func (h *CertificateHandler) GenerateBulk(w http.ResponseWriter, r *http.Request) {
	var req model.BulkIssueRequest
	if err := utils.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	certs, err := h.svc.IssueBulk(r.Context(), chi.URLParam(r, "competitionId"), req.IncludeParticipants)
	if err != nil {
		h.writeError(w, err, "generate-bulk")
		return
	}

	response.Success(w, fmt.Sprintf("%d certificates generated", len(certs)), certs)
}

// GetByID returns a single certificate
// @Summary      Get certificate
// @Tags         certificates
// @Produce      json
// @Param        id  path  string  true  "Certificate ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.Certificate}
// @Failure      404  {object}  response.Response
// @Router       /certificates/{id} [get]
func (h *CertificateHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	cert, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "get")
		return
	}

	response.Success(w, "Certificate retrieved", cert)
}

// Delete removes a certificate
// @Summary      Delete certificate
// @Tags         certificates
// @Produce      json
// @Param        id  path  string  true  "Certificate ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /certificates/{id} [delete]
func (h *CertificateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "delete")
		return
	}

	response.Success(w, "Certificate deleted", nil)
}

// Rankings previews the per-category ranking without issuing anything
// @Summary      Competition rankings
// @Tags         competitions
// @Produce      json
// @Param        competitionId  path  string  true  "Competition ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.CategoryRanking}
// @Failure      404  {object}  response.Response
// @Router       /competitions/{competitionId}/rankings [get]
func (h *CertificateHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.svc.RankCompetition(r.Context(), chi.URLParam(r, "competitionId"))
	if err != nil {
		h.writeError(w, err, "rankings")
		return
	}

	response.Success(w, "Rankings computed", rankings)
}
