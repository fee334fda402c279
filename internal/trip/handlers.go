package trip

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
		var req Trip
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		req.CreatedBy = callerID
		trip, err := svc.CreateTrip(c.Context(), req)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(trip)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		trip, err := svc.GetTrip(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(trip)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		var req Trip
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		trip, err := svc.UpdateTrip(c.Context(), callerID, c.Params("id"), req)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(trip)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if err := svc.DeleteTrip(c.Context(), callerID, c.Params("id")); err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	transitions := []struct {
		path string
		fn   func(c *fiber.Ctx, callerID, id string) (Trip, error)
	}{
		{"/:id/start", func(c *fiber.Ctx, callerID, id string) (Trip, error) {
			return svc.StartTrip(c.Context(), callerID, id)
		}},
		{"/:id/complete", func(c *fiber.Ctx, callerID, id string) (Trip, error) {
			return svc.CompleteTrip(c.Context(), callerID, id)
		}},
		{"/:id/publish", func(c *fiber.Ctx, callerID, id string) (Trip, error) {
			return svc.PublishTrip(c.Context(), callerID, id)
		}},
	}
	for _, tr := range transitions {
		fn := tr.fn
		r.Post(tr.path, authMiddleware, func(c *fiber.Ctx) error {
			callerID := authedAccount(c)
			if callerID == "" {
				return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
			}
			trip, err := fn(c, callerID, c.Params("id"))
			if err != nil {
				return fiber.NewError(apperr.HTTPStatus(err), err.Error())
			}
			return c.JSON(trip)
		})
	}

	r.Post("/:id/destinations", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		var req Destination
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		req.TripID = c.Params("id")
		dest, err := svc.AddDestination(c.Context(), callerID, req)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(dest)
	})

	r.Get("/:id/destinations", func(c *fiber.Ctx) error {
		destinations, err := svc.Destinations(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(destinations)
	})

	r.Post("/:id/destinations/:destID/visit", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		dest, err := svc.VisitDestination(c.Context(), callerID, c.Params("id"), c.Params("destID"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(dest)
	})
}

func authedAccount(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
