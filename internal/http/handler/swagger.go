package handler

import (
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"docmark/docs"
)

// swaggerMu guards docs.SwaggerInfo, which the generated package exposes as a mutable global.
var swaggerMu sync.Mutex

// SwaggerUI serves the Swagger UI and doc.json with the host and scheme the client used.
func SwaggerUI() fiber.Handler {
	ui := swagger.HandlerDefault
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		host := strings.Clone(c.Get(fiber.HeaderHost))
		scheme = strings.Clone(scheme)

		swaggerMu.Lock()
		defer swaggerMu.Unlock()
		docs.SwaggerInfo.Host = host
		docs.SwaggerInfo.Schemes = []string{scheme}
		return ui(c)
	}
}
