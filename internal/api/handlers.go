package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vrp-import/internal/pipeline"
	"vrp-import/internal/schema"
	"vrp-import/internal/transform"
)

const csvContentType = "text/csv; charset=utf-8"

type mapRequest struct {
	Headers []string `json:"headers" binding:"required"`
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// table resolves the :table parameter, responding 400 when it is unknown.
func (s *server) table(c *gin.Context) (schema.TableType, bool) {
	t, err := schema.ParseTableType(c.Param("table"))
	if err == nil {
		_, err = s.importer.Registry().Table(t)
	}

	if err != nil {
		respondError(c, http.StatusBadRequest, CodeUnknownTable, err.Error(), gin.H{"table": c.Param("table")})
		return "", false
	}

	return t, true
}

// limit is the number of body bytes read. One byte over the maximum lets the
// file check see an oversized upload.
func (s *server) limit() int64 {
	return s.importer.ParseOptions().MaxBytes() + 1
}

func (s *server) upload(c *gin.Context) (pipeline.File, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "multipart field \"file\" is required", gin.H{"reason": err.Error()})
		return pipeline.File{}, false
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "failed to open upload", gin.H{"reason": err.Error()})
		return pipeline.File{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.limit()))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "failed to read upload", gin.H{"reason": err.Error()})
		return pipeline.File{}, false
	}

	return pipeline.File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, true
}

func (s *server) planImport(c *gin.Context) {
	table, ok := s.table(c)
	if !ok {
		return
	}

	file, ok := s.upload(c)
	if !ok {
		return
	}

	plan, err := s.importer.Plan(c.Request.Context(), file, table)
	if err != nil {
		s.internalError(c, "failed to plan import", err)
		return
	}

	if plan.Result.FileLevel() {
		c.JSON(http.StatusUnprocessableEntity, plan)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (s *server) commitImport(c *gin.Context) {
	table, ok := s.table(c)
	if !ok {
		return
	}

	file, ok := s.upload(c)
	if !ok {
		return
	}

	opts, err := commitOptions(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	ctx := c.Request.Context()

	plan, err := s.importer.Plan(ctx, file, table)
	if err != nil {
		s.internalError(c, "failed to plan import", err)
		return
	}

	if plan.Result.FileLevel() {
		respondError(c, http.StatusUnprocessableEntity, CodeFileRejected, "file rejected", plan.Result.Report)
		return
	}

	out, err := s.importer.Commit(ctx, plan, opts)
	if errors.Is(err, pipeline.ErrInvalidDecision) {
		respondError(c, http.StatusBadRequest, CodeInvalidDecision, err.Error(), nil)
		return
	}

	if err != nil {
		s.internalError(c, "failed to commit import", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"parse": plan.Result, "outcome": out})
}

// commitOptions reads the "decisions" (JSON object keyed by data row index)
// and "dryRun" form fields.
func commitOptions(c *gin.Context) (pipeline.CommitOptions, error) {
	var opts pipeline.CommitOptions

	if raw := c.PostForm("decisions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts.Decisions); err != nil {
			return opts, fmt.Errorf("invalid decisions: %w", err)
		}
	}

	if raw := c.PostForm("dryRun"); raw != "" {
		dry, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid dryRun: %w", err)
		}

		opts.DryRun = dry
	}

	return opts, nil
}

func (s *server) mapColumns(c *gin.Context) {
	table, ok := s.table(c)
	if !ok {
		return
	}

	var req mapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	mappings, err := s.importer.MapColumns(req.Headers, table)
	if err != nil {
		s.internalError(c, "failed to map columns", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mappings": mappings})
}

func (s *server) template(c *gin.Context) {
	table, ok := s.table(c)
	if !ok {
		return
	}

	sample, err := boolQuery(c, "sample", false)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	var buf bytes.Buffer
	if err := s.importer.Template(&buf, table, sample); err != nil {
		s.internalError(c, "failed to build template", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(table)+"_template.csv"))
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

func (s *server) exportRows(c *gin.Context) {
	table, ok := s.table(c)
	if !ok {
		return
	}

	opts, err := s.exportOptions(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, s.limit()))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "failed to read body", gin.H{"reason": err.Error()})
		return
	}

	file := pipeline.File{ContentType: c.ContentType(), Data: data}

	var buf bytes.Buffer

	res, err := s.importer.ExportFile(c.Request.Context(), &buf, file, table, opts)
	if err != nil {
		s.internalError(c, "failed to export", err)
		return
	}

	if res.FileLevel() {
		respondError(c, http.StatusUnprocessableEntity, CodeFileRejected, "file rejected", res.Report)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(table)+"_export.csv"))
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

func (s *server) exportOptions(c *gin.Context) (transform.ExportOptions, error) {
	opts := s.exportDefaults

	for _, q := range []struct {
		name string
		dst  *bool
	}{
		{"names", &opts.Names},
		{"addresses", &opts.Addresses},
		{"coordinates", &opts.Coordinates},
		{"legacyFlat", &opts.LegacyFlat},
	} {
		v, err := boolQuery(c, q.name, *q.dst)
		if err != nil {
			return opts, err
		}

		*q.dst = v
	}

	return opts, nil
}

func boolQuery(c *gin.Context, name string, def bool) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %q", name, raw)
	}

	return v, nil
}

func (s *server) internalError(c *gin.Context, message string, err error) {
	s.logger.Error(message, zap.String("path", c.Request.URL.Path), zap.Error(err))
	respondError(c, http.StatusInternalServerError, CodeInternal, message, nil)
}
