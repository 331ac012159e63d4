package maintenance

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dylan-park/LastMile/internal/apperror"
	"github.com/dylan-park/LastMile/internal/session"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/", func(c *fiber.Ctx) error {
		items, err := svc.List(c.Context(), session.FromCtx(c), c.Query("search"))
		if err != nil {
			return apperror.ToFiber(err)
		}
		if items == nil {
			items = []Item{}
		}
		return c.JSON(items)
	})

	r.Get("/required", func(c *fiber.Ctx) error {
		items, err := svc.Required(c.Context(), session.FromCtx(c))
		if err != nil {
			return apperror.ToFiber(err)
		}
		if items == nil {
			items = []Item{}
		}
		return c.JSON(items)
	})

	r.Post("/", func(c *fiber.Ctx) error {
		var req CreateItemRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		created, err := svc.Create(c.Context(), session.FromCtx(c), req)
		if err != nil {
			return apperror.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Put("/:id", func(c *fiber.Ctx) error {
		var req UpdateItemRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		updated, err := svc.Update(c.Context(), session.FromCtx(c), c.Params("id"), req)
		if err != nil {
			return apperror.ToFiber(err)
		}
		return c.JSON(updated)
	})

	r.Post("/:id/toggle", func(c *fiber.Ctx) error {
		toggled, err := svc.ToggleEnabled(c.Context(), session.FromCtx(c), c.Params("id"))
		if err != nil {
			return apperror.ToFiber(err)
		}
		return c.JSON(toggled)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), session.FromCtx(c), c.Params("id")); err != nil {
			return apperror.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
