package models

import (
	"time"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
)

// Request модели

// CancelRequest запрос на отмену записи
type CancelRequest struct {
	Actor  domain.Actor
	Reason string
}

// UpdateStatusRequest запрос на смену статуса
type UpdateStatusRequest struct {
	Actor       domain.Actor
	Status      string
	DoctorNotes *string
}

// RateRequest запрос на оценку сессии
type RateRequest struct {
	Actor    domain.Actor
	Rating   int
	Feedback *string
}

// ListRequest запрос на список записей пациента или врача
type ListRequest struct {
	Actor           domain.Actor
	OwnerID         domain.UserID
	Status          *string
	Date            *time.Time
	Upcoming        bool
	IncludeInactive bool
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRequest) ToDomainFilter(today time.Time) (domain.AppointmentFilter, error) {
	filter := domain.AppointmentFilter{
		Date:            r.Date,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status := domain.AppointmentStatus(*r.Status)
		if !status.IsValid() {
			return filter, ErrInvalidStatus
		}
		filter.Status = &status
	}

	if r.Upcoming {
		from := domain.DateOnly(today)
		filter.From = &from
	}

	return filter, nil
}

// Response модели

// RatingResponse оценки участников
type RatingResponse struct {
	PatientRating   *int       `json:"patientRating,omitempty"`
	PatientFeedback *string    `json:"patientFeedback,omitempty"`
	DoctorRating    *int       `json:"doctorRating,omitempty"`
	DoctorFeedback  *string    `json:"doctorFeedback,omitempty"`
	RatedAt         *time.Time `json:"ratedAt,omitempty"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              string  `json:"id"`
	PatientID       string  `json:"patientId"`
	DoctorID        string  `json:"doctorId"`
	TherapyID       string  `json:"therapyId"`
	Date            string  `json:"date"`      // "2024-06-10"
	StartTime       string  `json:"startTime"` // "09:00"
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	SessionType     string  `json:"sessionType"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	PaymentStatus   string  `json:"paymentStatus"`
	PaymentRef      *string `json:"paymentRef,omitempty"`
	PaymentMethod   *string `json:"paymentMethod,omitempty"`

	Notes        *string `json:"notes,omitempty"`
	PatientNotes *string `json:"patientNotes,omitempty"`
	DoctorNotes  *string `json:"doctorNotes,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledBy        *string    `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	Rating *RatingResponse `json:"rating,omitempty"`

	RescheduledFrom *string `json:"rescheduledFrom,omitempty"`
	RescheduledTo   *string `json:"rescheduledTo,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID.String(),
		PatientID:          a.PatientID.String(),
		DoctorID:           a.DoctorID.String(),
		TherapyID:          a.TherapyID.String(),
		Date:               a.Range.Date.Format(domain.DateFormat),
		StartTime:          a.Range.Start.String(),
		EndTime:            a.Range.End.String(),
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		SessionType:        string(a.SessionType),
		Price:              a.Price,
		Currency:           a.Currency,
		PaymentStatus:      string(a.PaymentStatus),
		PaymentRef:         a.PaymentRef,
		PaymentMethod:      a.PaymentMethod,
		Notes:              a.Notes,
		PatientNotes:       a.PatientNotes,
		DoctorNotes:        a.DoctorNotes,
		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.CancelledBy != nil {
		by := string(*a.CancelledBy)
		resp.CancelledBy = &by
	}

	if a.Rating.PatientRating != nil || a.Rating.DoctorRating != nil {
		resp.Rating = &RatingResponse{
			PatientRating:   a.Rating.PatientRating,
			PatientFeedback: a.Rating.PatientFeedback,
			DoctorRating:    a.Rating.DoctorRating,
			DoctorFeedback:  a.Rating.DoctorFeedback,
			RatedAt:         a.Rating.RatedAt,
		}
	}

	if a.RescheduledFrom != nil {
		id := a.RescheduledFrom.String()
		resp.RescheduledFrom = &id
	}
	if a.RescheduledTo != nil {
		id := a.RescheduledTo.String()
		resp.RescheduledTo = &id
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	result := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}
	for _, a := range appointments {
		if resp := FromDomainAppointment(a); resp != nil {
			result.Appointments = append(result.Appointments, *resp)
		}
	}
	return result
}
