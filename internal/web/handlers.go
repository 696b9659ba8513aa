package web

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/pipeline"
	"github.com/nconklindev/sweeper/internal/types"
)

// indexData feeds templates/index.html.
type indexData struct {
	MaxFileSizeMB int64
	MaxFiles      int
	ImageFormats  []types.ImageFormat
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		MaxFileSizeMB: s.cfg.Upload.MaxFileSize / (1 << 20),
		MaxFiles:      s.cfg.Upload.MaxFiles,
		ImageFormats:  types.ImageFormats,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, "index.html", data); err != nil {
		respondError(w, r, fmt.Errorf("render index: %w", err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// columnInfo describes one column in a preview.
type columnInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// previewResponse is the JSON body for a tabular preview. Missing cells in
// Head are null.
type previewResponse struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	SizeKB  float64      `json:"size_kb"`
	Rows    int          `json:"rows"`
	Columns []columnInfo `json:"columns"`
	Head    [][]*string  `json:"head"`
}

// tableRequest parses the form into a tabular request with its options.
func (s *Server) tableRequest(r *http.Request) (*pipeline.Request, error) {
	req, err := singleUpload(r)
	if err != nil {
		return nil, err
	}
	if req.Table, err = tableOptions(r, "target", true); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Server) handleTablePreview(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := s.tableRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	prev, err := s.proc.Inspect(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := previewResponse{
		ID:     req.ID.String(),
		Name:   req.Name,
		SizeKB: prev.SizeKB,
		Rows:   prev.Dataset.Len(),
	}
	for _, col := range prev.Dataset.Columns {
		resp.Columns = append(resp.Columns, columnInfo{Name: col.Name, Kind: col.Kind.String()})
	}
	for i := 0; i < prev.Head.Len(); i++ {
		row := make([]*string, len(prev.Head.Columns))
		for j, col := range prev.Head.Columns {
			if v := col.Values[i]; !v.Missing {
				cell := converter.FormatCell(v, col.Kind)
				row[j] = &cell
			}
		}
		resp.Head = append(resp.Head, row)
	}

	writeJSON(w, r, resp)
}

func (s *Server) handleTableConvert(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := s.tableRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.proc.ProcessTable(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDownload(w, res)
}

func (s *Server) handleTableChart(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := s.tableRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	png, err := s.proc.Chart(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writePNG(w, png)
}

// imageRequest parses the form into an image request with its target.
func (s *Server) imageRequest(r *http.Request) (*pipeline.Request, error) {
	req, err := singleUpload(r)
	if err != nil {
		return nil, err
	}
	if req.Image, err = imageOptions(r, "target"); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Server) handleImageConvert(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := s.imageRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.proc.ProcessImage(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeDownload(w, res)
}

func (s *Server) handleImagePreview(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := singleUpload(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	png, err := s.proc.Thumbnail(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writePNG(w, png)
}

// batchItem is one file's outcome in a batch response. Data is base64 in
// JSON.
type batchItem struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	FileName string         `json:"file_name,omitempty"`
	MIMEType string         `json:"mime_type,omitempty"`
	Size     int            `json:"size"`
	Data     []byte         `json:"data,omitempty"`
	Error    *ErrorResponse `json:"error,omitempty"`
}

type batchStats struct {
	Total      int   `json:"total"`
	Converted  int   `json:"converted"`
	Failed     int   `json:"failed"`
	Skipped    int   `json:"skipped"`
	SizeChange int64 `json:"size_change"`
}

type batchResponse struct {
	Results []batchItem `json:"results"`
	Stats   batchStats  `json:"stats"`
}

// handleBatch converts every uploaded file with shared options. Tabular
// files use table_target and images use image_target. A failing file is
// reported in its own entry and does not fail the request.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(r); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		respondError(w, r, fmt.Errorf("%w: no files", errBadRequest))
		return
	}
	if len(files) > s.cfg.Upload.MaxFiles {
		respondError(w, r, fmt.Errorf("%w: %d files exceeds limit of %d",
			errBadRequest, len(files), s.cfg.Upload.MaxFiles))
		return
	}

	tableOpts, err := tableOptions(r, "table_target", false)
	if err != nil {
		respondError(w, r, err)
		return
	}
	imageOpts, err := imageOptions(r, "image_target")
	if err != nil {
		respondError(w, r, err)
		return
	}

	reqs := make([]*pipeline.Request, 0, len(files))
	for _, fh := range files {
		req, err := readUpload(fh)
		if err != nil {
			respondError(w, r, err)
			return
		}
		req.Table = tableOpts
		req.Image = imageOpts
		reqs = append(reqs, req)
	}

	results, stats := s.proc.Run(r.Context(), reqs)

	resp := batchResponse{
		Results: make([]batchItem, 0, len(results)),
		Stats: batchStats{
			Total:      stats.Total,
			Converted:  stats.Converted,
			Failed:     stats.Failed,
			Skipped:    stats.Skipped,
			SizeChange: stats.SizeChange(),
		},
	}
	for _, res := range results {
		item := batchItem{ID: res.ID.String(), Source: res.SourceName}
		if res.OK() {
			item.FileName = res.FileName
			item.MIMEType = res.MIMEType
			item.Size = len(res.Data)
			item.Data = res.Data
		} else {
			body := errorBody(res.Err, MapError(res.Err))
			item.Error = &body
		}
		resp.Results = append(resp.Results, item)
	}

	writeJSON(w, r, resp)
}

// writeDownload sends a converted file as an attachment.
func writeDownload(w http.ResponseWriter, res *pipeline.Result) {
	w.Header().Set("Content-Type", res.MIMEType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-File-ID", res.ID.String())
	w.Write(res.Data)
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
