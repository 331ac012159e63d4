package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestErrorMessages(t *testing.T) {
	err := Validation("odometer reading must be non-negative, got %d", -5)
	if err.Error() != "odometer reading must be non-negative, got -5" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if err.Kind != KindValidation {
		t.Fatalf("unexpected kind")
	}
}

func TestToFiberStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), fiber.StatusBadRequest},
		{Conflict("active shift already exists"), fiber.StatusConflict},
		{NotFound("shift not found"), fiber.StatusNotFound},
		{errors.New("disk on fire"), fiber.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("shift not found")), fiber.StatusNotFound},
	}
	for _, tc := range cases {
		if got := ToFiber(tc.err).Code; got != tc.want {
			t.Fatalf("status for %v: got %d want %d", tc.err, got, tc.want)
		}
	}
}
