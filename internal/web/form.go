package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/imaging"
	"github.com/nconklindev/sweeper/internal/pipeline"
	"github.com/nconklindev/sweeper/internal/types"
)

// parseForm reads the multipart body. Parts past the memory limit spill to
// temp files, which the caller removes with r.MultipartForm.RemoveAll.
func (s *Server) parseForm(r *http.Request) error {
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// readUpload turns one multipart file into a pipeline request.
func readUpload(fh *multipart.FileHeader) (*pipeline.Request, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return pipeline.NewRequest(fh.Filename, data), nil
}

// singleUpload returns the request for the form's "file" field.
func singleUpload(r *http.Request) (*pipeline.Request, error) {
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: missing file field", errBadRequest)
	}
	return readUpload(files[0])
}

// formBool reads a checkbox-style field. Browsers send "on" for checked boxes.
func formBool(r *http.Request, key string) (bool, error) {
	v := r.FormValue(key)
	switch v {
	case "":
		return false, nil
	case "on":
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", errBadRequest, key, v)
	}
	return b, nil
}

// tableOptions reads cleaning, column and target choices. targetKey names
// the field holding the output format.
func tableOptions(r *http.Request, targetKey string, withColumns bool) (pipeline.TableOptions, error) {
	opts := pipeline.TableOptions{Target: types.FormatCSV}

	if v := r.FormValue(targetKey); v != "" {
		target, err := converter.ParseTableFormat(v)
		if err != nil {
			return opts, fmt.Errorf("%w: %s: %v", errBadRequest, targetKey, err)
		}
		opts.Target = target
	}

	dedupe, err := formBool(r, "dedupe")
	if err != nil {
		return opts, err
	}
	fill, err := formBool(r, "fill")
	if err != nil {
		return opts, err
	}
	if dedupe {
		opts.Directives = append(opts.Directives, types.RemoveDuplicateRows)
	}
	if fill {
		opts.Directives = append(opts.Directives, types.FillMissingNumeric)
	}

	if withColumns {
		opts.Columns = r.MultipartForm.Value["columns"]
	}
	return opts, nil
}

// imageOptions reads the image target from targetKey.
func imageOptions(r *http.Request, targetKey string) (pipeline.ImageOptions, error) {
	opts := pipeline.ImageOptions{Target: types.ImagePNG}
	if v := r.FormValue(targetKey); v != "" {
		target, err := imaging.ParseFormat(v)
		if err != nil {
			return opts, fmt.Errorf("%w: %s: %v", errBadRequest, targetKey, err)
		}
		opts.Target = target
	}
	return opts, nil
}
