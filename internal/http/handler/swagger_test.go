package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerUI_DocReflectsRequestHost(t *testing.T) {
	app := fiber.New()
	app.Get("/swagger/*", SwaggerUI())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			host := fmt.Sprintf("api-%d.example", i)
			req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
			req.Host = host
			req.Header.Set("X-Forwarded-Proto", "https, http")

			resp, err := app.Test(req)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			assert.NoError(t, err)
			assert.Contains(t, string(body), host)
			assert.Contains(t, string(body), `"https"`)
		}(i)
	}
	wg.Wait()
}
