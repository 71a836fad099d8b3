package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrInquiryClosed is returned when a write targets a closed inquiry
	ErrInquiryClosed = errors.New("inquiry is closed")
)

// translate maps gorm errors onto the package sentinels
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
