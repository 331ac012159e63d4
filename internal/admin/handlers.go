// Package admin exposes the test-support surface: endpoints that reset
// stored data between automated test runs.
package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dylan-park/LastMile/internal/apperror"
	"github.com/dylan-park/LastMile/internal/session"
	"github.com/dylan-park/LastMile/internal/store"
)

type TeardownResponse struct {
	Message            string `json:"message"`
	ShiftsDeleted      int64  `json:"shifts_deleted"`
	MaintenanceDeleted int64  `json:"maintenance_deleted"`
}

// RegisterRoutes mounts POST /teardown. The caller's own session is
// cleared unless scope=all asks for every session.
func RegisterRoutes(r fiber.Router, provider store.Provider) {
	r.Post("/teardown", func(c *fiber.Ctx) error {
		var (
			shifts, items int64
			err           error
			message       string
		)
		if c.Query("scope") == "all" {
			shifts, items, err = provider.TeardownAll(c.Context())
			message = "all sessions cleared"
		} else {
			shifts, items, err = provider.Teardown(c.Context(), session.FromCtx(c))
			message = "session cleared"
		}
		if err != nil {
			return apperror.ToFiber(err)
		}
		return c.JSON(TeardownResponse{
			Message:            message,
			ShiftsDeleted:      shifts,
			MaintenanceDeleted: items,
		})
	})
}
