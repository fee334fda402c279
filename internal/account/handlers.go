package account

import (
	"backend-tripgraph/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		profile, err := svc.Profile(c.Context(), callerID)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(profile)
	})

	r.Put("/me", authMiddleware, func(c *fiber.Ctx) error {
		callerID, _ := c.Locals("user_id").(string)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		var patch Patch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		profile, err := svc.UpdateProfile(c.Context(), callerID, patch)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(profile)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		profile, err := svc.Profile(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(profile)
	})
}
