package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/syedaman12/Lab-report-interpreter/internal/common"
	"github.com/syedaman12/Lab-report-interpreter/internal/export"
	"github.com/syedaman12/Lab-report-interpreter/internal/pipeline"
	"github.com/syedaman12/Lab-report-interpreter/internal/render"
)

const maxUploadBytes = 32 << 20

type handlers struct {
	processor *pipeline.Processor
	exporter  *export.Service
	logger    *slog.Logger
}

// upload accepts a multipart lab-report document, runs the pipeline, and
// returns the analysis outcome. An analysis failure is still a 200: it is a
// representable result and is wrapped as {"error": "Analysis failed", "raw": ...}.
func (h *handlers) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		// A file part submitted with an empty filename parses as a plain
		// form value, so FormFile reports it as missing.
		if len(r.MultipartForm.Value["file"]) > 0 {
			http.Error(w, "No selected file", http.StatusBadRequest)
			return
		}
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	analysis, err := h.processor.ProcessUpload(r.Context(), data, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMalformedDocument):
			http.Error(w, "file is not a valid PDF", http.StatusBadRequest)
		default:
			h.logger.Error("server.upload.failed", "file_name", header.Filename, "error", err)
			http.Error(w, "failed to process upload", http.StatusInternalServerError)
		}
		return
	}

	if analysis.Succeeded() {
		writeJSON(w, http.StatusOK, analysis)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"error": "Analysis failed",
		"raw":   analysis,
	})
}

// download renders one stored record as a PDF attachment.
func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid report index", http.StatusBadRequest)
		return
	}
	rec, err := h.processor.Record(index)
	if err != nil {
		if errors.Is(err, common.ErrIndexOutOfRange) {
			http.Error(w, "Invalid report index", http.StatusBadRequest)
			return
		}
		h.logger.Error("server.download.failed", "index", index, "error", err)
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}

	pdf, err := render.Build(rec)
	if err != nil {
		h.logger.Error("server.download.render_failed", "index", index, "error", err)
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="lab_report.pdf"`)
	_, _ = w.Write(pdf)
}

func (h *handlers) reports(w http.ResponseWriter, r *http.Request) {
	records, err := h.processor.History()
	if err != nil {
		h.logger.Error("server.reports.failed", "error", err)
		http.Error(w, "failed to load reports", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handlers) exportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := h.exporter.ExportResultsXLSX()
	if err != nil {
		h.logger.Error("server.export.failed", "error", err)
		http.Error(w, "failed to export reports", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="lab_results.xlsx"`)
	_, _ = w.Write(data)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
