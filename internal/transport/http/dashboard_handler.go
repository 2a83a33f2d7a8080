package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"stockdash/internal/analytics"
	"stockdash/internal/dataset"
	apperrors "stockdash/internal/errors"
	"stockdash/internal/exporter"
	"stockdash/internal/services"
)

const (
	// PricesField and SectorsField name the multipart file parts
	PricesField  = "prices"
	SectorsField = "sectors"
	// SectorField is the repeated filter field
	SectorField = "sector"

	// multipartMemory is kept in memory before parts spill to disk
	multipartMemory = 8 << 20

	workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DashboardHandler serves the dashboard views for uploaded files
type DashboardHandler struct {
	service      *services.DashboardService
	workbook     *exporter.WorkbookRenderer
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *services.DashboardService, workbook *exporter.WorkbookRenderer, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		workbook:     workbook,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.GetDashboard)
	r.Post("/workbook", h.GetWorkbook)
	r.Post("/sectors", h.GetSectors)
	return r
}

// GetDashboard handles POST /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, ok := h.build(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, d)
}

// GetWorkbook handles POST /api/dashboard/workbook
func (h *DashboardHandler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	d, ok := h.build(w, r)
	if !ok {
		return
	}

	f, err := h.workbook.Render(d)
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.NewInternalError("failed to render workbook"))
		return
	}
	defer f.Close()

	name := fmt.Sprintf("dashboard-%s.xlsx", d.GeneratedAt.Format("20060102-150405"))
	w.Header().Set("Content-Type", workbookContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)

	if _, err := f.WriteTo(w); err != nil {
		// Headers are gone; the client sees a truncated body.
		h.logger.ErrorContext(r.Context(), "failed to stream workbook",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	}
}

// GetSectors handles POST /api/dashboard/sectors
func (h *DashboardHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	in, err := h.readInputs(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	sectors, err := h.service.Sectors(r.Context(), in)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"sectors": sectors,
		"count":   len(sectors),
	})
}

func (h *DashboardHandler) build(w http.ResponseWriter, r *http.Request) (*analytics.Dashboard, bool) {
	start := time.Now()
	reqID := middleware.GetReqID(r.Context())

	in, err := h.readInputs(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	filter, err := h.parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	d, err := h.service.Build(r.Context(), in, filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	h.logger.InfoContext(r.Context(), "dashboard served",
		slog.String("request_id", reqID),
		slog.String("path", r.URL.Path),
		slog.Int("symbols", len(d.Symbols)),
		slog.Duration("duration", time.Since(start)))

	return d, true
}

// readInputs parses both uploaded files. A part that was not sent leaves
// its frame nil so the service reports every missing input at once.
func (h *DashboardHandler) readInputs(r *http.Request) (services.DashboardInputs, error) {
	var in services.DashboardInputs

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, err
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return in, apperrors.NewInputMissingError(PricesField, SectorsField)
		}
		return in, apperrors.InvalidRequestWithError(err)
	}

	var err error
	if in.Prices, err = readPart(r, PricesField); err != nil {
		return in, err
	}
	if in.Sectors, err = readPart(r, SectorsField); err != nil {
		return in, err
	}
	return in, nil
}

func readPart(r *http.Request, field string) (*dataset.Frame, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.InvalidRequestWithError(err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	frame, err := dataset.ReadCSV(file)
	if err != nil {
		return nil, apperrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("%s is not a readable CSV file", field), err.Error())
	}
	return frame, nil
}

// parseFilter reads the repeated sector field. No field means no filter.
func (h *DashboardHandler) parseFilter(r *http.Request) (*analytics.SectorFilter, error) {
	values, present := r.MultipartForm.Value[SectorField]
	if !present {
		return nil, nil
	}

	selected := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			selected = append(selected, v)
		}
	}

	filter := analytics.NewSectorFilter(selected...)
	if err := h.validate.Struct(filter); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, apperrors.ErrValidation(SectorField, fmt.Sprintf("%s failed on %s", fieldErrs[0].Namespace(), fieldErrs[0].Tag()))
		}
		return nil, apperrors.InvalidRequestWithError(err)
	}
	return filter, nil
}
