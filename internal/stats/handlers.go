package stats

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dylan-park/LastMile/internal/apperror"
	"github.com/dylan-park/LastMile/internal/session"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/", func(c *fiber.Ctx) error {
		period, err := ParsePeriod(c.Query("period"), c.Query("start"), c.Query("end"))
		if err != nil {
			return apperror.ToFiber(err)
		}
		summary, err := svc.Compute(c.Context(), session.FromCtx(c), period)
		if err != nil {
			return apperror.ToFiber(err)
		}
		return c.JSON(summary)
	})
}
