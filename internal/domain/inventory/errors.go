package inventory

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the reservation engine. All of them are
// expected, caller-facing conditions.
var (
	ErrUnknownPackage      = errors.New("inventory: unknown package")
	ErrOutOfStock          = errors.New("inventory: out of stock")
	ErrReservationNotFound = errors.New("inventory: reservation not found")
)

// IsNotFound reports whether err means the package or reservation does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownPackage) || errors.Is(err, ErrReservationNotFound)
}

func unknownPackage(packageID string) error {
	return fmt.Errorf("%w: %q", ErrUnknownPackage, packageID)
}
