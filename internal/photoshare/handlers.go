package photoshare

import (
	"backend-tripgraph/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		var input ShareInput
		if err := c.BodyParser(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		share, err := svc.Share(c.Context(), callerID, input)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(share)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		share, err := svc.Get(c.Context(), callerID, c.Params("id"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(share)
	})

	r.Post("/:id/likes", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if err := svc.Like(c.Context(), callerID, c.Params("id")); err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/:id/likes", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if err := svc.Unlike(c.Context(), callerID, c.Params("id")); err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if err := svc.Delete(c.Context(), callerID, c.Params("id")); err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func authedAccount(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
