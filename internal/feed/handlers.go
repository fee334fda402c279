package feed

import (
	"strconv"
	"time"

	"backend-tripgraph/internal/activity"
	"backend-tripgraph/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler, defaultLimit int) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		viewerID, _ := c.Locals("user_id").(string)
		if viewerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		items, err := svc.Feed(c.Context(), viewerID, parseLimit(c, defaultLimit), parseCursor(c))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(items)
	})

	r.Get("/user/:id", authMiddleware, func(c *fiber.Ctx) error {
		viewerID, _ := c.Locals("user_id").(string)
		if viewerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		items := svc.UserFeed(c.Context(), viewerID, c.Params("id"), parseLimit(c, defaultLimit), parseCursor(c))
		return c.JSON(items)
	})
}

func parseLimit(c *fiber.Ctx, defaultLimit int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	return limit
}

func parseCursor(c *fiber.Ctx) *activity.Cursor {
	raw := c.Query("before_time")
	if raw == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	id, _ := strconv.ParseInt(c.Query("before_id"), 10, 64)
	return &activity.Cursor{Time: ts, ID: id}
}
