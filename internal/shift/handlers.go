package shift

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dylan-park/LastMile/internal/apperror"
	"github.com/dylan-park/LastMile/internal/session"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/", func(c *fiber.Ctx) error {
		from, err := ParseExportBound("from", c.Query("from"))
		if err != nil {
			return apperror.ToFiber(err)
		}
		to, err := ParseExportBound("to", c.Query("to"))
		if err != nil {
			return apperror.ToFiber(err)
		}

		shifts, err := svc.List(c.Context(), session.FromCtx(c), ListFilter{
			Search: c.Query("search"),
			From:   from,
			To:     to,
			Sort:   c.Query("sort"),
			Order:  c.Query("order"),
		})
		if err != nil {
			return apperror.ToFiber(err)
		}
		if shifts == nil {
			shifts = []Shift{}
		}
		return c.JSON(shifts)
	})

	r.Get("/active", func(c *fiber.Ctx) error {
		active, err := svc.Active(c.Context(), session.FromCtx(c))
		if err != nil {
			return apperror.ToFiber(err)
		}
		return c.JSON(active)
	})

	r.Get("/export", func(c *fiber.Ctx) error {
		start, err := ParseExportBound("start", c.Query("start"))
		if err != nil {
			return apperror.ToFiber(err)
		}
		end, err := ParseExportBound("end", c.Query("end"))
		if err != nil {
			return apperror.ToFiber(err)
		}

		data, err := svc.Export(c.Context(), session.FromCtx(c), start, end)
		if err != nil {
			return apperror.ToFiber(err)
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="lastmile_shifts.csv"`)
		return c.Send(data)
	})

	r.Post("/start", func(c *fiber.Ctx) error {
		var req StartShiftRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		created, err := svc.Start(c.Context(), session.FromCtx(c), req)
		if err != nil {
			return apperror.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Post("/:id/end", func(c *fiber.Ctx) error {
		var req EndShiftRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ended, err := svc.End(c.Context(), session.FromCtx(c), c.Params("id"), req)
		if err != nil {
			return apperror.ToFiber(err)
		}
		return c.JSON(ended)
	})

	r.Put("/:id", func(c *fiber.Ctx) error {
		var req UpdateShiftRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		updated, err := svc.Update(c.Context(), session.FromCtx(c), c.Params("id"), req)
		if err != nil {
			return apperror.ToFiber(err)
		}
		return c.JSON(updated)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), session.FromCtx(c), c.Params("id")); err != nil {
			return apperror.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
