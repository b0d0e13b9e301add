package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"farmalytics/analysis"
	"farmalytics/loader"
	apperrors "farmalytics/server/errors"
	"farmalytics/server/middleware"
)

// UploadResponse answers a successful dataset upload.
type UploadResponse struct {
	ID       string            `json:"id"`
	Filename string            `json:"filename"`
	Rows     int               `json:"rows"`
	Columns  int               `json:"columns"`
	Roles    map[string]string `json:"roles"`
}

// DatasetInfo is the session summary returned by list and get endpoints.
type DatasetInfo struct {
	ID         string            `json:"id"`
	Filename   string            `json:"filename"`
	UploadedAt time.Time         `json:"uploaded_at"`
	Rows       int               `json:"rows"`
	Columns    []string          `json:"columns"`
	Roles      map[string]string `json:"roles"`
}

// handleHealth godoc
// @Summary Service health
// @Description Reports liveness and the number of datasets held in memory.
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"datasets":  s.sessions.Len(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleUpload godoc
// @Summary Upload a dataset
// @Description Accepts a CSV or Excel file, parses it into a typed table and resolves column roles.
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV/XLSX/XLS file"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 413 {object} middleware.ErrorResponse
// @Failure 415 {object} middleware.ErrorResponse
// @Router /datasets [post]
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("missing file field in multipart form", err))
		return
	}

	if !loader.SupportedExtension(fileHeader.Filename) {
		middleware.AbortWithError(c, apperrors.NewUnsupportedMediaError(
			fmt.Sprintf("unsupported file type %q, expected .csv, .xlsx or .xls", filepath.Ext(fileHeader.Filename)), nil))
		return
	}
	if fileHeader.Size > int64(s.config.MaxUploadMB)<<20 {
		middleware.AbortWithError(c, apperrors.NewTooLargeError(
			fmt.Sprintf("file exceeds the %d MB limit", s.config.MaxUploadMB), nil))
		return
	}

	// Keep the upload on disk under a unique name; the original filename is
	// client-controlled and only stored as metadata.
	dst := filepath.Join(s.config.UploadsDir, uuid.New().String()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		middleware.AbortWithError(c, apperrors.NewInternalError("failed to store uploaded file", err))
		return
	}

	table, err := loader.Load(dst)
	if err != nil {
		os.Remove(dst)
		middleware.AbortWithError(c, apperrors.NewValidationError(
			fmt.Sprintf("failed to parse %s", fileHeader.Filename), err))
		return
	}
	os.Remove(dst)

	roles := s.keywords.Resolve(table.ColumnNames())
	session := s.sessions.Add(fileHeader.Filename, table, roles)

	c.JSON(http.StatusCreated, UploadResponse{
		ID:       session.ID,
		Filename: session.Filename,
		Rows:     table.Rows(),
		Columns:  len(table.ColumnNames()),
		Roles:    rolesToMap(roles),
	})
}

// handleListDatasets godoc
// @Summary List datasets
// @Description Returns all in-memory datasets, newest first.
// @Tags datasets
// @Produce json
// @Success 200 {array} DatasetInfo
// @Router /datasets [get]
func (s *Server) handleListDatasets(c *gin.Context) {
	sessions := s.sessions.List()
	out := make([]DatasetInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, datasetInfo(sess))
	}
	c.JSON(http.StatusOK, out)
}

// handleGetDataset godoc
// @Summary Get dataset metadata
// @Tags datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} DatasetInfo
// @Failure 404 {object} middleware.ErrorResponse
// @Router /datasets/{id} [get]
func (s *Server) handleGetDataset(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		middleware.AbortWithError(c, apperrors.NewNotFoundError("dataset not found", nil))
		return
	}
	c.JSON(http.StatusOK, datasetInfo(sess))
}

// handleDeleteDataset godoc
// @Summary Delete a dataset
// @Tags datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 204 "deleted"
// @Failure 404 {object} middleware.ErrorResponse
// @Router /datasets/{id} [delete]
func (s *Server) handleDeleteDataset(c *gin.Context) {
	if !s.sessions.Delete(c.Param("id")) {
		middleware.AbortWithError(c, apperrors.NewNotFoundError("dataset not found", nil))
		return
	}
	c.Status(http.StatusNoContent)
}

// handleAnalysis godoc
// @Summary Analyze a dataset
// @Description Runs the full analysis. Thresholds default to the server configuration and can be overridden per request.
// @Tags analysis
// @Produce json
// @Param id path string true "Dataset ID"
// @Param low_stock_threshold query number false "Stock level at or below which a product is low stock"
// @Param overstock_threshold query number false "Stock level above which a product is overstocked"
// @Param top_n query int false "Number of top products to report"
// @Param zscore_threshold query number false "Z-score cutoff for outliers"
// @Param iqr_multiplier query number false "IQR fence multiplier"
// @Success 200 {object} analysis.Result
// @Failure 404 {object} middleware.ErrorResponse
// @Router /datasets/{id}/analysis [get]
func (s *Server) handleAnalysis(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		middleware.AbortWithError(c, apperrors.NewNotFoundError("dataset not found", nil))
		return
	}

	cfg, err := s.analysisConfig(c)
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("invalid analysis parameter", err))
		return
	}

	res, err := s.analyze(sess, cfg)
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewInternalError("analysis failed", err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleReport godoc
// @Summary Generate a report
// @Description Builds an Excel or HTML report from the analysis and streams it back.
// @Tags analysis
// @Produce application/octet-stream
// @Param id path string true "Dataset ID"
// @Param format query string false "Report format: excel (default), quick or html"
// @Success 200 {file} binary
// @Failure 404 {object} middleware.ErrorResponse
// @Router /datasets/{id}/report [get]
func (s *Server) handleReport(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		middleware.AbortWithError(c, apperrors.NewNotFoundError("dataset not found", nil))
		return
	}

	format := c.DefaultQuery("format", "excel")

	var path string
	var err error
	switch format {
	case "quick":
		path, err = s.reports.Quick(sess.Table)
	case "html":
		var res *analysis.Result
		res, err = s.analyze(sess, s.config.Analysis)
		if err == nil {
			path, err = s.reports.HTML(sess.Table, res)
		}
	case "excel":
		var res *analysis.Result
		res, err = s.analyze(sess, s.config.Analysis)
		if err == nil {
			path, err = s.reports.Comprehensive(sess.Table, res)
		}
	default:
		middleware.AbortWithError(c, apperrors.NewValidationError(
			fmt.Sprintf("unknown report format %q", format), nil))
		return
	}
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewInternalError("report generation failed", err))
		return
	}

	sess.SetReportPath(path)
	c.FileAttachment(path, filepath.Base(path))
}

// handleProductSearch godoc
// @Summary Search products
// @Description Finds rows whose product name matches the query, with Spanish stemming.
// @Tags analysis
// @Produce json
// @Param id path string true "Dataset ID"
// @Param q query string true "Search query"
// @Param limit query int false "Maximum matches (default 50)"
// @Success 200 {array} SearchMatch
// @Failure 404 {object} middleware.ErrorResponse
// @Router /datasets/{id}/products [get]
func (s *Server) handleProductSearch(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		middleware.AbortWithError(c, apperrors.NewNotFoundError("dataset not found", nil))
		return
	}

	query := c.Query("q")
	if query == "" {
		middleware.AbortWithError(c, apperrors.NewValidationError("query parameter q is required", nil))
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			middleware.AbortWithError(c, apperrors.NewValidationError("limit must be a positive integer", err))
			return
		}
		limit = n
	}

	c.JSON(http.StatusOK, searchProducts(sess.Table, sess.Roles, query, limit))
}

// analyze runs the analysis for cfg, serving a cached result when the same
// configuration was already computed for the session.
func (s *Server) analyze(sess *Session, cfg analysis.Config) (*analysis.Result, error) {
	if res, ok := sess.CachedResult(cfg); ok {
		return res, nil
	}
	res, err := analysis.Analyze(sess.Table, sess.Roles, cfg)
	if err != nil {
		return nil, err
	}
	sess.StoreResult(cfg, res)
	return res, nil
}

// analysisConfig starts from the server defaults and applies any query-
// parameter overrides.
func (s *Server) analysisConfig(c *gin.Context) (analysis.Config, error) {
	cfg := s.config.Analysis

	assignFloat := func(param string, dst *float64) error {
		raw := c.Query(param)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", param, err)
		}
		*dst = v
		return nil
	}

	if err := assignFloat("low_stock_threshold", &cfg.LowStockThreshold); err != nil {
		return cfg, err
	}
	if err := assignFloat("overstock_threshold", &cfg.OverstockThreshold); err != nil {
		return cfg, err
	}
	if err := assignFloat("zscore_threshold", &cfg.ZScoreThreshold); err != nil {
		return cfg, err
	}
	if err := assignFloat("iqr_multiplier", &cfg.IQRMultiplier); err != nil {
		return cfg, err
	}
	if raw := c.Query("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, fmt.Errorf("top_n: %w", err)
		}
		cfg.TopN = n
	}
	return cfg, nil
}

func datasetInfo(sess *Session) DatasetInfo {
	return DatasetInfo{
		ID:         sess.ID,
		Filename:   sess.Filename,
		UploadedAt: sess.UploadedAt,
		Rows:       sess.Table.Rows(),
		Columns:    sess.Table.ColumnNames(),
		Roles:      rolesToMap(sess.Roles),
	}
}

func rolesToMap(roles analysis.RoleMapping) map[string]string {
	out := make(map[string]string, len(roles))
	for role, col := range roles {
		out[string(role)] = col
	}
	return out
}
