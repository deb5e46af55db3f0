package middleware

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"student-fees-api/database"
	"student-fees-api/model"
)

// AuditAdminAction records an audit log entry for a mutating admin route.
// Must run after Required() so the authenticated user is in locals. The
// request body is captured as the new value; the entry is written after the
// handler completes so failed requests are still visible in the trail.
func AuditAdminAction(store database.Storage, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok || user.Role != model.RoleAdmin {
			return c.Next()
		}

		var newValue datatypes.JSON
		if len(c.Body()) > 0 && json.Valid(c.Body()) {
			newValue = datatypes.JSON(append([]byte(nil), c.Body()...))
		}

		var resourceID uint
		if raw := c.Params("id"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
				resourceID = uint(id)
			}
		}

		err := c.Next()

		entry := &model.AdminAuditLog{
			AdminID:    user.ID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			NewValue:   newValue,
			IPAddress:  c.IP(),
		}
		if logErr := store.CreateAuditLog(entry); logErr != nil {
			log.Printf("audit: failed to record %s %s: %v", action, resource, logErr)
		}

		return err
	}
}
