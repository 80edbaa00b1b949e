package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"attendcli/internal/attendance"
	"attendcli/internal/errors"
	"attendcli/internal/exporter"
	"attendcli/internal/files"
)

// ReportFilename is the download name of the generated workbook.
const ReportFilename = "Attendance_Summary.xlsx"

// ReportService is the pipeline surface the handler needs.
type ReportService interface {
	Run(ctx context.Context, tables []attendance.RawTable, opts attendance.Options) (*attendance.ResultSet, error)
}

// ReportHandler accepts attendance export uploads and returns the
// generated workbook.
type ReportHandler struct {
	service        ReportService
	writer         *exporter.WorkbookWriter
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service ReportService, writer *exporter.WorkbookWriter, logger *slog.Logger, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{
		service:        service,
		writer:         writer,
		logger:         logger.With(slog.String("handler", "report")),
		maxUploadBytes: maxUploadBytes,
	}
}

// Generate handles POST /api/report: multipart form with one or more
// "files" parts (.xlsx) plus the pipeline toggles. Responds with the
// workbook, or a structured JSON error when the run fails.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		errors.WriteError(w, errors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST",
			"Invalid multipart form", err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	uploads := r.MultipartForm.File["files"]
	if len(uploads) == 0 {
		errors.WriteError(w, errors.NewWithDetails(http.StatusBadRequest, "MISSING_PARAMETER",
			"No files uploaded", "expected one or more 'files' parts"))
		return
	}

	opts := attendance.Options{
		AllowNameFallback:  parseBool(r.FormValue("allow_name_fallback"), false),
		IncludeDiagnostics: parseBool(r.FormValue("include_diagnostics"), true),
	}

	tables, err := h.readUploads(uploads)
	if err != nil {
		errors.WriteError(w, errors.FromAppError(err))
		return
	}

	result, err := h.service.Run(ctx, tables, opts)
	if err != nil {
		h.logger.WarnContext(ctx, "report generation failed",
			slog.Int("files", len(uploads)),
			slog.String("error", err.Error()))
		errors.WriteError(w, errors.FromAppError(err))
		return
	}

	var buf bytes.Buffer
	if err := h.writer.WriteTo(result, &buf); err != nil {
		h.logger.ErrorContext(ctx, "workbook serialization failed",
			slog.String("error", err.Error()))
		errors.WriteError(w, errors.FromAppError(err))
		return
	}

	h.logger.InfoContext(ctx, "report generated",
		slog.Int("files", len(uploads)),
		slog.Int("students", len(result.Summary)),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ReportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// readUploads decodes every uploaded workbook, preserving upload order.
func (h *ReportHandler) readUploads(uploads []*multipart.FileHeader) ([]attendance.RawTable, error) {
	tables := make([]attendance.RawTable, 0, len(uploads))
	for _, header := range uploads {
		f, err := header.Open()
		if err != nil {
			return nil, errors.NewParsingError("failed to open upload "+header.Filename, err).
				WithContext("file", header.Filename)
		}
		table, rerr := files.ReadTable(header.Filename, f)
		f.Close()
		if rerr != nil {
			return nil, rerr
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// parseBool parses a form checkbox value with a default for absent fields.
func parseBool(value string, def bool) bool {
	if value == "" {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return b
}
