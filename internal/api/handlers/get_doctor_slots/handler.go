package get_doctor_slots

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-TherapyBookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidDoctorID    = "invalid doctor id"
	msgMissingDate        = "date query parameter is required"
	msgInvalidGranularity = "granularity must be an integer number of minutes"
)

type Handler struct {
	useCase SlotsUseCase
	logger  Logger
}

func NewHandler(useCase SlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/available-slots?date=2024-06-10&granularity=30
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID, err := domain.ParseUserID(mux.Vars(r)["doctorId"])
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/available-slots - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	query := r.URL.Query()
	dateStr := query.Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := handlers.ParseDate(dateStr)
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	granularity := 0
	if s := query.Get("granularity"); s != "" {
		granularity, err = strconv.Atoi(s)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidGranularity)
			return
		}
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		DoctorID:           doctorID,
		Date:               date,
		GranularityMinutes: granularity,
	})
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /doctors/{id}/available-slots - Failed to get slots: doctor=%s, date=%s, error=%v",
				doctorID, dateStr, err)
		} else {
			h.logger.Warn("GET /doctors/{id}/available-slots - Rejected: doctor=%s, status=%d, error=%v", doctorID, status, err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromUseCase(result))
}
