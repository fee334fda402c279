package relationship

import (
	"backend-tripgraph/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/requests", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		var req struct {
			TargetID string `json:"target_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.TargetID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "target_id required")
		}
		edge, err := svc.RequestFollow(c.Context(), callerID, req.TargetID)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(edge)
	})

	r.Post("/requests/accept", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		req, err := requestBody(c)
		if err != nil {
			return err
		}
		edge, err := svc.AcceptFollow(c.Context(), callerID, req.RequesterID, req.target(callerID))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(edge)
	})

	r.Post("/requests/decline", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		req, err := requestBody(c)
		if err != nil {
			return err
		}
		edge, err := svc.DeclineFollow(c.Context(), callerID, req.RequesterID, req.target(callerID))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(edge)
	})

	r.Post("/requests/accept-friend", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		req, err := requestBody(c)
		if err != nil {
			return err
		}
		if err := svc.AcceptFriendRequest(c.Context(), callerID, req.RequesterID, req.target(callerID)); err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(fiber.Map{"status": RelationFriends})
	})

	r.Delete("/following/:id", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if err := svc.Unfollow(c.Context(), callerID, c.Params("id")); err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/friends/:id", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if err := svc.RemoveFriend(c.Context(), callerID, c.Params("id")); err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/:id/status", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		status, err := svc.Status(c.Context(), callerID, c.Params("id"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(fiber.Map{"status": status})
	})

	r.Get("/:id/relation", authMiddleware, func(c *fiber.Ctx) error {
		callerID := authedAccount(c)
		if callerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		relation, err := svc.Relation(c.Context(), callerID, c.Params("id"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(fiber.Map{"relation": relation})
	})
}

type followRequestBody struct {
	RequesterID string `json:"requester_id"`
	TargetID    string `json:"target_id"`
}

// target defaults to the caller; a mismatching explicit target surfaces as
// unauthorized from the service.
func (b followRequestBody) target(callerID string) string {
	if b.TargetID != "" {
		return b.TargetID
	}
	return callerID
}

func requestBody(c *fiber.Ctx) (followRequestBody, error) {
	var req followRequestBody
	if err := c.BodyParser(&req); err != nil || req.RequesterID == "" {
		return followRequestBody{}, fiber.NewError(fiber.StatusBadRequest, "requester_id required")
	}
	return req, nil
}

func authedAccount(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
