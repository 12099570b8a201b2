package constraints

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRequireUUID(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id/:sub", RequireUUID("id", "sub"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	h := testutil.NewHTTPHelper(t, app)

	a := uuid.Must(uuid.NewV4()).String()
	b := uuid.Must(uuid.NewV4()).String()

	resp := h.NewRequest(http.MethodGet, "/items/"+a+"/"+b, nil).Send()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.NewRequest(http.MethodGet, "/items/not-a-uuid/"+b, nil).Send()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = h.NewRequest(http.MethodGet, "/items/"+a+"/42", nil).Send()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	testutil.DecodeJSON(t, resp, &body)
	assert.Equal(t, "NOT_FOUND", body["code"])
}
