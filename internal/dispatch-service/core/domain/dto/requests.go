package dto

import (
	"fmt"
	"strings"

	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/myerrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CreateRequestDto is the intake payload for a new service request. The
// coordinates are required; the matcher cannot rank a request it cannot
// place on the map.
type CreateRequestDto struct {
	IssueType   string   `json:"issue_type" validate:"required"`
	Description string   `json:"description" validate:"required,max=2000"`
	Street      string   `json:"street" validate:"required,max=255"`
	City        string   `json:"city" validate:"required,max=100"`
	State       string   `json:"state" validate:"required,max=100"`
	Pincode     string   `json:"pincode" validate:"required,max=20"`
	Latitude    *float64 `json:"latitude" validate:"required"`
	Longitude   *float64 `json:"longitude" validate:"required"`
	Images      []string `json:"images" validate:"omitempty,dive,max=512"`
}

// Validate normalizes and checks the payload. All failures surface as
// myerrors.ErrValidation so the transport maps them to one status.
func (d *CreateRequestDto) Validate() error {
	d.IssueType = strings.ToLower(strings.TrimSpace(d.IssueType))

	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", myerrors.ErrValidation, err)
	}
	if !model.AllowedIssueTypes[d.IssueType] {
		return fmt.Errorf("%w: unknown issue type %q", myerrors.ErrValidation, d.IssueType)
	}
	if err := ValidateLatLng(d.Latitude, d.Longitude); err != nil {
		return err
	}
	return nil
}

// ValidateLatLng rejects out-of-range or missing coordinates.
func ValidateLatLng(lat, lng *float64) error {
	if lat == nil || lng == nil {
		return fmt.Errorf("%w: latitude and longitude are required", myerrors.ErrValidation)
	}
	if *lat < -90 || *lat > 90 {
		return fmt.Errorf("%w: latitude out of range [-90, 90]", myerrors.ErrValidation)
	}
	if *lng < -180 || *lng > 180 {
		return fmt.Errorf("%w: longitude out of range [-180, 180]", myerrors.ErrValidation)
	}
	return nil
}

type RequestResponseDto struct {
	Request model.ServiceRequest `json:"request"`
	Message string               `json:"message,omitempty"`
}

// Page describes pagination for every list endpoint. Zero values fall
// back to page 1 and the configured default limit.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (p Page) Normalize(defaultLimit int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

type RequestListDto struct {
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	Total      int64                  `json:"total"`
	TotalPages int64                  `json:"total_pages"`
	Count      int                    `json:"count"`
	Requests   []model.ServiceRequest `json:"requests"`
}

func TotalPages(total int64, limit int) int64 {
	if limit < 1 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
