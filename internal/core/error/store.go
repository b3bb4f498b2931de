package errx

import (
	"database/sql"
	"errors"
	"net/http"
)

// WrapStore maps relational store errors to the unified AppError type.
func WrapStore(err error) *AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return New(err, http.StatusNotFound, StoreErrorMessage)
	}

	return New(err, http.StatusBadGateway, StoreErrorMessage)
}
