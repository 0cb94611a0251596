package validator

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"imageflow/core"
	"imageflow/imagegen"
)

const (
	// MaxFileSize is the per-file ceiling: 50 MB.
	MaxFileSize = 50 * 1024 * 1024

	// MaxAggregateSize is the ceiling across base + reference images
	// combined: 50 MB.
	MaxAggregateSize = 50 * 1024 * 1024

	// multipartMemoryLimit bounds how much of the multipart body is
	// buffered in memory before spilling to temp files.
	multipartMemoryLimit = 32 << 20
)

var allowedMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Validate decodes r's multipart body and enforces §4.1's rules. On
// success it returns a Request and a nil error slice; on any rejection it
// returns a nil Request and the full set of ValidationErrors found.
// defaultAspectRatio is substituted when the request omits aspectRatio
// entirely; it is normally the operator-configured fallback aspect ratio.
func Validate(r *http.Request, maxReferenceImages int, defaultAspectRatio imagegen.AspectRatio) (*Request, ValidationErrors) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return nil, ValidationErrors{{Field: "body", Message: "failed to parse multipart form: " + err.Error()}}
	}

	var errs ValidationErrors
	var aggregate int64

	baseImage, baseErrs, baseSize := readBaseImage(r)
	errs = append(errs, baseErrs...)
	aggregate += baseSize

	references, refErrs, refSize := readReferenceImages(r, maxReferenceImages)
	errs = append(errs, refErrs...)
	aggregate += refSize

	if aggregate > MaxAggregateSize {
		errs = append(errs, ValidationError{
			Field:   "_aggregate",
			Message: fmt.Sprintf("aggregate upload size %s exceeds the %s limit", core.FormatBytes(aggregate), core.FormatBytes(MaxAggregateSize)),
		})
	}

	aspectRatio := strings.TrimSpace(r.FormValue("aspectRatio"))
	if aspectRatio == "" {
		aspectRatio = string(defaultAspectRatio)
	} else if !imagegen.AspectRatio(aspectRatio).IsValid() {
		errs = append(errs, ValidationError{
			Field:   "aspectRatio",
			Message: fmt.Sprintf("unsupported aspect ratio %q", aspectRatio),
		})
	}

	userPrompt := strings.TrimSpace(r.FormValue("userPrompt"))

	if len(errs) > 0 {
		return nil, errs
	}

	return &Request{
		BaseImage:        baseImage,
		ReferenceImages:  references,
		UserInstructions: userPrompt,
		AspectRatio:      aspectRatio,
	}, nil
}

func readBaseImage(r *http.Request) (ImageFile, ValidationErrors, int64) {
	file, header, err := r.FormFile("baseImage")
	if err != nil {
		return ImageFile{}, ValidationErrors{{Field: "baseImage", Message: "baseImage is required"}}, 0
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ImageFile{}, ValidationErrors{{Field: "baseImage", Message: "failed to read baseImage: " + err.Error()}}, 0
	}

	var errs ValidationErrors
	mime := header.Header.Get("Content-Type")
	if !allowedMIMETypes[mime] {
		errs = append(errs, ValidationError{Field: "baseImage", Message: fmt.Sprintf("unsupported MIME type %q", mime)})
	}
	if int64(len(data)) > MaxFileSize {
		errs = append(errs, ValidationError{Field: "baseImage", Message: fmt.Sprintf("file size %s exceeds the %s per-file limit", core.FormatBytes(int64(len(data))), core.FormatBytes(MaxFileSize))})
	}

	return ImageFile{Bytes: data, MIME: mime}, errs, int64(len(data))
}

func readReferenceImages(r *http.Request, maxReferenceImages int) ([]ImageFile, ValidationErrors, int64) {
	if r.MultipartForm == nil {
		return nil, nil, 0
	}

	headers := r.MultipartForm.File["referenceImages"]
	var errs ValidationErrors
	if len(headers) > maxReferenceImages {
		errs = append(errs, ValidationError{
			Field:   "referenceImages",
			Message: fmt.Sprintf("at most %d reference images allowed, got %d", maxReferenceImages, len(headers)),
		})
	}

	var aggregate int64
	images := make([]ImageFile, 0, len(headers))
	for i, header := range headers {
		file, err := header.Open()
		if err != nil {
			errs = append(errs, ValidationError{Field: "referenceImages", Message: fmt.Sprintf("failed to open reference image #%d: %v", i, err)})
			continue
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			errs = append(errs, ValidationError{Field: "referenceImages", Message: fmt.Sprintf("failed to read reference image #%d: %v", i, err)})
			continue
		}

		mime := header.Header.Get("Content-Type")
		if !allowedMIMETypes[mime] {
			errs = append(errs, ValidationError{Field: "referenceImages", Message: fmt.Sprintf("reference image #%d has unsupported MIME type %q", i, mime)})
		}
		if int64(len(data)) > MaxFileSize {
			errs = append(errs, ValidationError{Field: "referenceImages", Message: fmt.Sprintf("reference image #%d size %s exceeds the %s per-file limit", i, core.FormatBytes(int64(len(data))), core.FormatBytes(MaxFileSize))})
		}

		aggregate += int64(len(data))
		images = append(images, ImageFile{Bytes: data, MIME: mime})
	}

	return images, errs, aggregate
}
