package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hnthao/elearn/app/repository"
	"github.com/hnthao/elearn/internal/pkg/session"
	"github.com/hnthao/elearn/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session user for every request and
// stores it in Locals so controllers never touch the session directly.
func UserContextMiddleware(c *fiber.Ctx) error {
	anonymous := usercontext.UserContext{IsLoggedIn: false, IsAdmin: false}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		usercontext.SetUserContext(c, anonymous)
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok || userID == 0 {
		usercontext.SetUserContext(c, anonymous)
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userID)
	if err != nil {
		// Stale session pointing at a removed user
		usercontext.SetUserContext(c, anonymous)
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	usercontext.SetUserContext(c, usercontext.UserContext{
		UserID:     user.ID,
		Username:   user.Name,
		IsLoggedIn: true,
		IsAdmin:    user.Role == "admin",
	})
	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyIsAdmin, user.Role == "admin")

	return c.Next()
}
