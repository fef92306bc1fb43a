package handlers

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/m04kA/SMC-TherapyBookingService/internal/domain"
	"github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments/models"
)

// ParseListQuery разбирает фильтры списка записей: status, date, upcoming, includeInactive
func ParseListQuery(q url.Values, actor domain.Actor, ownerID domain.UserID) (*models.ListRequest, error) {
	req := &models.ListRequest{
		Actor:   actor,
		OwnerID: ownerID,
	}

	if s := q.Get("status"); s != "" {
		req.Status = &s
	}

	if s := q.Get("date"); s != "" {
		date, err := ParseDate(s)
		if err != nil {
			return nil, err
		}
		req.Date = &date
	}

	var err error
	if req.Upcoming, err = parseBool(q, "upcoming"); err != nil {
		return nil, err
	}
	if req.IncludeInactive, err = parseBool(q, "includeInactive"); err != nil {
		return nil, err
	}

	return req, nil
}

func parseBool(q url.Values, key string) (bool, error) {
	s := q.Get(key)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: expected true or false", key)
	}
	return v, nil
}
