package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"spendplan/internal/core"
	applog "spendplan/internal/log"
	"spendplan/internal/services"
)

// maxUploadBytes bounds an imported plan document.
const maxUploadBytes = 1 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", newPlanView(s.plans.Current(r.Context()))); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err, applog.FieldOperation, applog.OpRender)
		InternalServerError("failed to render page").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.String()).Write(w)
}

func (s *Server) handlePlanFragment(w http.ResponseWriter, r *http.Request) {
	s.respondPlan(w, r, NewHTMXResponse(), s.plans.Current(r.Context()))
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().JSON(s.plans.Current(r.Context())).Write(w)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().JSON(s.plans.Summary(r.Context())).Write(w)
}

func (s *Server) handleUpdateAmount(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("id")
	month, err := pathMonth(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		s.logger.WarnContext(r.Context(), "Request body parse failed", applog.FieldError, err, applog.FieldOperation, applog.OpParse)
		BadRequestError("Invalid request body").Write(w)
		return
	}
	amount, ok := body.Amount("amount")
	if !ok {
		// Non-numeric input is stored as 0 rather than rejected
		s.logger.DebugContext(r.Context(), "Amount coerced to zero",
			applog.FieldCategoryID, categoryID, applog.FieldMonth, month)
	}

	p, err := s.plans.UpdateMonthlyAmount(r.Context(), categoryID, month, amount)
	switch {
	case errors.Is(err, core.ErrInvalidMonth):
		BadRequestError(fmt.Sprintf("Month %d is outside 1-12", month)).Write(w)
		return
	case errors.Is(err, core.ErrCategoryNotFound):
		NotFoundError(fmt.Sprintf("Category %s not found", categoryID)).Write(w)
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "Update amount failed", applog.FieldError, err)
		InternalServerError("Update failed").Write(w)
		return
	}

	resp := NewHTMXResponse().TriggerPlanChanged(p.Plan.ID, core.AnnualTotal(p))
	s.respondPlan(w, r, resp, p)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		s.logger.WarnContext(r.Context(), "Request body parse failed", applog.FieldError, err, applog.FieldOperation, applog.OpParse)
		BadRequestError("Invalid request body").Write(w)
		return
	}

	categoryType, err := core.ParseCategoryType(body.Get("type"))
	if err != nil {
		BadRequestError("Category type must be one of needs, wants, savings").Write(w)
		return
	}
	base, _ := body.Amount("baseAmount")

	p, added, err := s.plans.AddCategory(r.Context(), core.NewCategory{
		Name:       body.Get("name"),
		Type:       categoryType,
		BaseAmount: base,
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Add category failed", applog.FieldError, err)
		InternalServerError("Could not add category").Write(w)
		return
	}

	resp := NewHTMXResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/plan#"+added.ID).
		TriggerPlanChanged(p.Plan.ID, core.AnnualTotal(p)).
		TriggerSuccessNotification("Category " + added.Name + " added")
	s.respondPlan(w, r, resp, p)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.plans.Export(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Export failed", applog.FieldError, err, applog.FieldOperation, applog.OpExport)
		InternalServerError("Export failed").Write(w)
		return
	}

	NewHTMXResponse().
		Header("Content-Type", "application/json; charset=utf-8").
		Header("Content-Disposition", `attachment; filename="`+name+`"`).
		Header("Content-Length", strconv.Itoa(len(data))).
		TriggerSuccessNotification(services.NoticeExported).
		Body(data).
		Write(w)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+4096)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		BadRequestError(core.MsgWrongExtension).Write(w)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		BadRequestError(core.MsgWrongExtension).Write(w)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		BadRequestError(core.MsgUnreadableFile).Write(w)
		return
	}

	p, err := s.plans.Import(r.Context(), header.Filename, data)
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		ValidationErrorResponse(string(verr.Kind), verr.Message).Write(w)
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Import failed", applog.FieldError, err, applog.FieldOperation, applog.OpImport)
		InternalServerError("Import failed").Write(w)
		return
	}

	resp := NewHTMXResponse().
		TriggerPlanChanged(p.Plan.ID, core.AnnualTotal(p)).
		TriggerSuccessNotification(services.NoticeImported)
	s.respondPlan(w, r, resp, p)
}

// respondPlan finishes resp with the plan fragment for htmx callers and the plan JSON otherwise.
func (s *Server) respondPlan(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder, p core.PlanFile) {
	if !isHTMX(r) || s.templates == nil {
		resp.JSON(p).Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "plan", newPlanView(p)); err != nil {
		s.logger.ErrorContext(r.Context(), "Plan fragment render failed", applog.FieldError, err, applog.FieldOperation, applog.OpRender)
		resp.Status(http.StatusInternalServerError).BodyHTML(HTMLErrorFragment("Could not render plan")).Write(w)
		return
	}
	resp.BodyHTML(buf.String()).Write(w)
}
