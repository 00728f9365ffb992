package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-microplastic-inspector/internal/analyzer"
	"go-microplastic-inspector/internal/config"
	apperrors "go-microplastic-inspector/internal/errors"
	"go-microplastic-inspector/internal/export"
	"go-microplastic-inspector/internal/logger"
	"go-microplastic-inspector/internal/observer"
	"go-microplastic-inspector/internal/projection"
	"go-microplastic-inspector/internal/render"
	"go-microplastic-inspector/internal/service"
	"go-microplastic-inspector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	pageTitle    = "Microplastic Inspector"
	workspaceKey = "workspace"
	filesField   = "files"
)

// PreviewURL is where a record's uploaded bytes are served from
func PreviewURL(sessionID, imageID string) string {
	return sessionPath(sessionID) + "/previews/" + imageID
}

func sessionPath(sessionID string) string {
	return "/api/sessions/" + sessionID
}

type handler struct {
	registry *service.Registry
	metrics  *observer.MetricsObserver
	pool     *analyzer.WorkerPool
	cfg      *config.Config
}

func NewHandler(registry *service.Registry, metrics *observer.MetricsObserver, pool *analyzer.WorkerPool, cfg *config.Config) http.Handler {
	h := &handler{registry: registry, metrics: metrics, pool: pool, cfg: cfg}
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/", h.openPage)
	r.GET("/api/metrics", h.getMetrics)

	session := r.Group("/api/sessions/:id", h.loadSession())
	session.POST("/images", h.uploadImages)
	session.GET("/history", h.getHistory)
	session.GET("/charts", h.getCharts)
	session.GET("/charts/composition.png", h.chartPNG(render.RenderCompositionPNG))
	session.GET("/charts/accuracy.png", h.chartPNG(render.RenderAccuracyPNG))
	session.GET("/previews/:imageID", h.getPreview)
	session.GET("/export.csv", h.exportCSV)
	session.GET("/report", h.printReport)

	return r
}

// openPage creates a fresh workspace for every page load
func (h *handler) openPage(c *gin.Context) {
	nav := render.NewNavigator(nil)
	if err := nav.Activate(c.Query("tab")); err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid tab", err)
		return
	}

	ws := h.registry.Create(c.Request.Context())
	_, version := ws.Charts()

	var buf bytes.Buffer
	err := render.WritePage(&buf, render.PageData{
		Title:              pageTitle,
		SessionID:          ws.ID(),
		Tabs:               nav.Tabs(),
		ActiveTab:          nav.Active(),
		Rows:               ws.Rows(),
		Cards:              ws.Cards(),
		ChartVersion:       version,
		CompositionURL:     sessionPath(ws.ID()) + "/charts/composition.png",
		AccuracyURL:        sessionPath(ws.ID()) + "/charts/accuracy.png",
		CSVFileName:        export.CSVFileName,
		EmptyHistoryNotice: apperrors.EmptyHistoryNotice,
		PopupBlockedNotice: apperrors.PopupBlockedNotice,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to render page", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"session_id": ws.ID(),
		"ip":         c.ClientIP(),
	}).Info("Page opened")

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *handler) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := h.registry.Get(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusNotFound, "unknown session", err)
			return
		}
		c.Set(workspaceKey, ws)
		c.Next()
	}
}

func workspace(c *gin.Context) *service.Workspace {
	return c.MustGet(workspaceKey).(*service.Workspace)
}

func (h *handler) uploadImages(c *gin.Context) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	ws := workspace(c)

	// Log request start
	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"session_id": ws.ID(),
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info("Processing image upload")

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, "upload too large", err)
			return
		}
		respondError(c, http.StatusBadRequest, "invalid upload form", apperrors.NewValidationError("Expected multipart form", err))
		return
	}

	headers := form.File[filesField]
	sources := make([]service.FileSource, len(headers))
	for i, fh := range headers {
		sources[i] = service.NewMultipartSource(fh)
	}

	result, err := ws.AnalyzeBatch(ctx, sources)
	if err != nil {
		respondError(c, determineStatusCode(err), "image analysis failed", err)
		return
	}

	records := make([]models.RenderedRecord, 0, len(result.Files))
	for _, f := range result.Files {
		rowHTML, err := render.RowHTML(f.Row)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to render row", err)
			return
		}
		cardHTML, err := render.CardHTML(f.Card)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to render card", err)
			return
		}
		records = append(records, models.RenderedRecord{Record: f.Record, RowHTML: rowHTML, CardHTML: cardHTML})
	}

	rejected := make([]models.RejectedUpload, len(result.Rejected))
	for i, r := range result.Rejected {
		rejected[i] = models.RejectedUpload{Name: r.Name, Message: r.Err.Error()}
	}

	// Log successful completion
	logger.WithFields(logrus.Fields{
		"session_id":         ws.ID(),
		"files":              len(sources),
		"appended":           len(records),
		"rejected":           len(rejected),
		"chart_version":      result.ChartVersion,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
	}).Info("Image upload completed successfully")

	c.JSON(http.StatusOK, models.UploadResponse{
		SessionID:    ws.ID(),
		Records:      records,
		Rejected:     rejected,
		HistoryCount: result.HistoryCount,
		ChartVersion: result.ChartVersion,
	})
}

func (h *handler) getHistory(c *gin.Context) {
	ws := workspace(c)
	history := ws.History()
	c.JSON(http.StatusOK, models.HistoryResponse{
		SessionID: ws.ID(),
		Records:   history,
		Count:     len(history),
	})
}

func (h *handler) getCharts(c *gin.Context) {
	ws := workspace(c)
	data, version := ws.Charts()
	c.JSON(http.StatusOK, gin.H{
		"session_id": ws.ID(),
		"version":    version,
		"data":       data,
	})
}

type chartRenderer func(w io.Writer, data projection.ChartData, size render.ChartSize) error

func (h *handler) chartPNG(draw chartRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, _ := workspace(c).Charts()
		size := render.ChartSize{Width: h.cfg.ChartWidth, Height: h.cfg.ChartHeight}

		var buf bytes.Buffer
		if err := draw(&buf, data, size); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to render chart", err)
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

func (h *handler) getPreview(c *gin.Context) {
	preview, err := workspace(c).Preview(c.Param("imageID"))
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "preview unavailable", err)
		return
	}
	c.Data(http.StatusOK, preview.ContentType, preview.Data)
}

func (h *handler) exportCSV(c *gin.Context) {
	data, err := workspace(c).ExportCSV(c.Request.Context())
	if err != nil {
		respondError(c, determineStatusCode(err), "export failed", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFileName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// printReport serves the report as the document of the window the page opened
func (h *handler) printReport(c *gin.Context) {
	opener := export.SurfaceOpenerFunc(func() (export.Surface, error) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		return export.NewWriterSurface(c.Writer), nil
	})

	err := workspace(c).PrintReport(c.Request.Context(), opener)
	if err == nil {
		return
	}
	if c.Writer.Written() {
		logger.WithError(err).WithField("session_id", workspace(c).ID()).Error("Report interrupted")
		return
	}
	respondError(c, determineStatusCode(err), "report failed", err)
}

func (h *handler) getMetrics(c *gin.Context) {
	body := gin.H{
		"sessions": h.registry.Len(),
	}
	if h.metrics != nil {
		body["events"] = h.metrics.GetMetrics()
	}
	if h.pool != nil {
		body["worker_pool"] = h.pool.GetStats()
	}
	c.JSON(http.StatusOK, body)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	// User-facing notices are shown verbatim
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Type = string(appErr.Type)
		resp.Message = appErr.Message
	}
	c.AbortWithStatusJSON(code, resp)
}
