package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"attendcli/internal/attendance"
	"attendcli/internal/exporter"
)

const testMaxUpload = 32 << 20

func newTestHandler() *ReportHandler {
	logger := slog.Default()
	return NewReportHandler(
		attendance.NewPipeline(logger),
		exporter.NewWorkbookWriter(logger),
		logger,
		testMaxUpload,
	)
}

// exportWorkbook builds a minimal .xlsx export with the given header and rows.
func exportWorkbook(t *testing.T, header []interface{}, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// multipartUpload assembles a multipart body with one "files" part per
// workbook plus optional form fields.
func multipartUpload(t *testing.T, workbooks map[string][]byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range workbooks {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestReportHandler_Generate(t *testing.T) {
	data := exportWorkbook(t,
		[]interface{}{"Start time", "Email", "Name"},
		[]interface{}{"1/2/24 09:00:00", "jane@x.com", "Jane Doe"},
		[]interface{}{"1/2/24 09:05:00", "jane@x.com", "Jane Doe"},
		[]interface{}{"1/3/24 09:00:00", "bob@x.com", "Bob Smith"},
	)
	body, contentType := multipartUpload(t, map[string][]byte{"checkins.xlsx": data}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/report", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHandler().Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ReportFilename)

	// The response is a readable workbook with the expected sheets.
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), exporter.SheetStudentSummary)
	assert.Contains(t, f.GetSheetList(), exporter.SheetDiagnostics)

	rows, err := f.GetRows(exporter.SheetStudentSummary)
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + two students after dedup
}

func TestReportHandler_Generate_DiagnosticsOptOut(t *testing.T) {
	data := exportWorkbook(t,
		[]interface{}{"Start time", "Email"},
		[]interface{}{"1/2/24 09:00:00", "jane@x.com"},
	)
	body, contentType := multipartUpload(t,
		map[string][]byte{"checkins.xlsx": data},
		map[string]string{"include_diagnostics": "false"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/report", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHandler().Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), exporter.SheetDiagnostics)
}

func TestReportHandler_Generate_SchemaErrorIs422(t *testing.T) {
	data := exportWorkbook(t,
		[]interface{}{"Timestamp", "Full Name"},
		[]interface{}{"1/2/24 09:00:00", "Jane Doe"},
	)
	body, contentType := multipartUpload(t, map[string][]byte{"names_only.xlsx": data}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/report", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHandler().Generate(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
			Message   string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "SCHEMA", resp.Error.ErrorCode)
	assert.Contains(t, resp.Error.Message, "names_only.xlsx")
}

func TestReportHandler_Generate_NameFallbackField(t *testing.T) {
	data := exportWorkbook(t,
		[]interface{}{"Timestamp", "Full Name"},
		[]interface{}{"1/2/24 09:00:00", "Jane   Doe"},
		[]interface{}{"1/3/24 09:00:00", "jane doe"},
	)
	body, contentType := multipartUpload(t,
		map[string][]byte{"names_only.xlsx": data},
		map[string]string{"allow_name_fallback": "true"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/report", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHandler().Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exporter.SheetStudentSummary)
	require.NoError(t, err)
	require.Len(t, rows, 2) // both spellings unified into one student
	assert.Equal(t, "2", rows[1][2])
}

func TestReportHandler_Generate_NoFiles(t *testing.T) {
	body, contentType := multipartUpload(t, nil, map[string]string{"allow_name_fallback": "true"})

	req := httptest.NewRequest(http.MethodPost, "/api/report", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHandler().Generate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_PARAMETER")
}

func TestReportHandler_Generate_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/report", bytes.NewReader([]byte("plain body")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestHandler().Generate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
}

func TestReportHandler_Generate_CorruptUpload(t *testing.T) {
	body, contentType := multipartUpload(t,
		map[string][]byte{"bogus.xlsx": []byte("not a workbook")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/report", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHandler().Generate(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "PARSING")
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("", true))
	assert.False(t, parseBool("", false))
	assert.True(t, parseBool("true", false))
	assert.True(t, parseBool("1", false))
	assert.False(t, parseBool("false", true))
	assert.True(t, parseBool("garbage", true))
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	NewHealthHandler("v1.0.0").Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.NotEmpty(t, resp.Uptime)
}
