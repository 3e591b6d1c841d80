package server

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func parseBoolParam(v string) (*bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	return &b, nil
}

func parseDateParam(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	t = t.UTC()
	return &t, nil
}
