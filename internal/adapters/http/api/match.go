package api

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/gradematch/internal/adapters/table"
	service "github.com/okian/gradematch/internal/app"
	"github.com/okian/gradematch/internal/domain/columns"
	"github.com/okian/gradematch/internal/domain/model"
	"github.com/okian/gradematch/pkg/logger"
)

// Response headers set on match results.
const (
	headerRunID     = "X-Run-ID"
	headerUnmatched = "X-Unmatched-Count"
)

// MatchHandler handles result requests for uploaded tables.
type MatchHandler struct {
	deps       Dependencies
	maxUpload  int64
	outputName string
	logger     logger.Logger
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps Dependencies, maxUpload int64, outputName string, l logger.Logger) *MatchHandler {
	return &MatchHandler{deps: deps, maxUpload: maxUpload, outputName: outputName, logger: l}
}

// reportResponse is the JSON shape of ?format=json.
type reportResponse struct {
	service.Report
	Rows []model.Row `json:"rows"`
}

// HandleMatch handles POST /v1/match requests. The body is multipart with
// "responses" and "roster" files; the result format comes from the
// "format" query parameter or form field: xlsx (default), csv or json.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", fmt.Errorf("%w: limit is %d bytes", ErrUploadTooBig, h.maxUpload))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	format := strings.ToLower(r.FormValue("format"))
	if format == "" {
		format = string(table.FormatXLSX)
	}
	if format != string(table.FormatXLSX) && format != string(table.FormatCSV) && format != "json" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %q", ErrUnknownFormat, format))
		return
	}

	responses, err := uploadedTable(r, "responses")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	roster, err := uploadedTable(r, "roster")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.deps.Process(r.Context(), responses, roster, service.Hooks{})
	if err != nil {
		if errors.Is(err, columns.ErrColumnNotFound) || errors.Is(err, columns.ErrMalformedRow) {
			writeError(w, http.StatusBadRequest, "bad_input", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	w.Header().Set(headerRunID, res.RunID)
	w.Header().Set(headerUnmatched, strconv.Itoa(len(res.Match.Unmatched)))

	if format == "json" {
		writeJSON(w, http.StatusOK, reportResponse{Report: res.Report, Rows: resultRows(res)})
		return
	}

	var buf bytes.Buffer
	out := table.Format(format)
	wr := table.NewWriter(table.WithPassThreshold(h.deps.PassThreshold()), table.WithLogger(h.logger))
	if err := wr.Encode(&buf, out, res.Columns, res.Roster); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	name := strings.TrimSuffix(h.outputName, filepath.Ext(h.outputName)) + "." + format
	w.Header().Set("Content-Type", out.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func uploadedTable(r *http.Request, field string) (model.Table, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return model.Table{}, fmt.Errorf("%w: %s", ErrMissingFile, field)
		}
		return model.Table{}, fmt.Errorf("%w: %s: %w", ErrBadRequest, field, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	format, err := table.FormatOf(header.Filename)
	if err != nil {
		return model.Table{}, err
	}
	return table.Decode(file, header.Filename, format)
}

// resultRows renders the roster as output-column rows for JSON reports.
func resultRows(res *service.Result) []model.Row {
	rows := make([]model.Row, 0, res.Roster.Len())
	for _, rec := range res.Roster.Records() {
		vals := table.RowValues(res.Columns, rec)
		row := make(model.Row, len(vals))
		for i, col := range res.Columns {
			row[col] = vals[i]
		}
		rows = append(rows, row)
	}
	return rows
}
