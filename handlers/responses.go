// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/simple-survey/middleware"
	"github.com/danielhkuo/simple-survey/models"
	"github.com/danielhkuo/simple-survey/store"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var csvHeader = []string{"token", "label", "submitted_at", "updated_at", "answers"}

// ExportHandler serves the admin bulk export.
type ExportHandler struct {
	responses *store.Responses
}

func NewExportHandler(db *sql.DB) *ExportHandler {
	return &ExportHandler{responses: store.NewResponses(db)}
}

// ExportResponses handles GET /api/admin/responses
// ?format=csv switches the body from a JSON array to CSV.
func (h *ExportHandler) ExportResponses(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV {
		middleware.ErrorResponse(w, http.StatusBadRequest, "format must be json or csv")
		return
	}

	rows, err := h.responses.ListAll(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "export responses")
		return
	}

	if format == FormatJSON {
		slog.Info("responses exported", "format", format, "rows", len(rows))
		middleware.JSONResponse(w, http.StatusOK, rows)
		return
	}

	body, err := encodeCSV(rows)
	if err != nil {
		middleware.LogError("failed to encode export", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export responses")
		return
	}

	slog.Info("responses exported",
		"format", format,
		"rows", len(rows),
		"size", humanize.Bytes(uint64(len(body))),
	)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="responses.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// encodeCSV writes one row per response. The answers column holds the
// answer document as compact JSON.
func encodeCSV(rows []models.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		answers, err := json.Marshal(row.Answers)
		if err != nil {
			return nil, err
		}
		record := []string{
			row.Token,
			row.Label,
			row.SubmittedAt.Format(time.RFC3339),
			row.UpdatedAt.Format(time.RFC3339),
			string(answers),
		}
		if err := cw.Write(record); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
