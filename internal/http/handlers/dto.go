package handlers

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"courier-dispatch/internal/domain"
)

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (r *locationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Lat, validation.NotNil, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Lon, validation.NotNil, validation.Min(-180.0), validation.Max(180.0)),
	)
}

func (r *locationRequest) point() domain.Point {
	return domain.Point{Lat: *r.Lat, Lon: *r.Lon}
}

type dispatchRequest struct {
	OrderID string   `json:"order_id"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func (r *dispatchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OrderID, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.Lat, validation.NotNil, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Lon, validation.NotNil, validation.Min(-180.0), validation.Max(180.0)),
	)
}

func (r *dispatchRequest) attempt() domain.Attempt {
	return domain.Attempt{OrderID: r.OrderID, Origin: domain.Point{Lat: *r.Lat, Lon: *r.Lon}}
}

type acceptRequest struct {
	PartnerID string `json:"partner_id"`
}

func (r *acceptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PartnerID, validation.Required, validation.Length(1, 128)),
	)
}

type candidateDTO struct {
	PartnerID  string  `json:"partner_id"`
	DistanceKm float64 `json:"distance_km"`
}

func candidatesToResponse(cs []domain.Candidate) []candidateDTO {
	out := make([]candidateDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, candidateDTO{PartnerID: c.PartnerID, DistanceKm: c.DistanceKm})
	}
	return out
}

type assignmentDTO struct {
	OrderID   string     `json:"order_id"`
	Status    string     `json:"status"`
	PartnerID string     `json:"partner_id,omitempty"`
	Rounds    int        `json:"rounds"`
	Retries   int        `json:"retries"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func assignmentToResponse(a domain.Assignment) assignmentDTO {
	out := assignmentDTO{
		OrderID:   a.OrderID,
		Status:    string(a.Status),
		PartnerID: a.PartnerID,
		Rounds:    a.Rounds,
		Retries:   a.Retries,
	}
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt.UTC()
		out.UpdatedAt = &t
	}
	return out
}

type orderStatusResponse struct {
	OrderID   string `json:"order_id"`
	PartnerID string `json:"partner_id,omitempty"`
	Status    string `json:"status"`
}
