package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/civicpulse/civic-server/internal/models"
	"github.com/civicpulse/civic-server/internal/services"
)

// formOverhead is the body allowance for non-file multipart fields.
const formOverhead = 1 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// parseMultipart bounds the body and parses the form.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)
	if err := r.ParseMultipartForm(maxBytes + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: upload exceeds %d MB", services.ErrValidation, maxBytes>>20)
		}
		return fmt.Errorf("%w: invalid multipart form", services.ErrValidation)
	}
	return nil
}

// readImage reads an uploaded image field. A missing or empty field comes
// back as an empty Image so the service can report it.
func readImage(r *http.Request, field string, maxBytes int64) (models.Image, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return models.Image{}, nil
	}
	if err != nil {
		return models.Image{}, fmt.Errorf("%w: %s: %v", services.ErrValidation, field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return models.Image{}, fmt.Errorf("read %s: %w", field, err)
	}
	if int64(len(data)) > maxBytes {
		return models.Image{}, fmt.Errorf("%w: %s exceeds %d MB", services.ErrValidation, field, maxBytes>>20)
	}
	if len(data) == 0 {
		return models.Image{}, nil
	}

	mt := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mt.Is(allowed) {
			return models.Image{Data: data, MIME: allowed}, nil
		}
	}
	return models.Image{}, fmt.Errorf("%w: %s must be a JPEG, PNG, GIF or WebP image, got %s", services.ErrValidation, field, mt.String())
}

// parseGeo reads the optional coordinate pair. Both or neither must be set.
func parseGeo(r *http.Request) (*models.GeoPoint, error) {
	latStr := strings.TrimSpace(r.FormValue("geo_latitude"))
	lngStr := strings.TrimSpace(r.FormValue("geo_longitude"))
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, fmt.Errorf("%w: geo_latitude and geo_longitude must be supplied together", services.ErrValidation)
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid geo_latitude", services.ErrValidation)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid geo_longitude", services.ErrValidation)
	}
	return &models.GeoPoint{Latitude: lat, Longitude: lng}, nil
}
