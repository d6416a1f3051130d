package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handoverApi struct {
	report string
}

type handoverReport struct {
	Report string `json:"report"`
}

func registerHandoverAPI(g *echo.Group, report string) {
	api := handoverApi{report: report}
	g.GET("/handover", api.retrieve)
}

// retrieve returns the teacher handover report shown next to the chat.
func (api *handoverApi) retrieve(ctx echo.Context) error {
	if strings.TrimSpace(api.report) == "" {
		return &notFoundError{err: errors.New("no handover report")}
	}
	return ctx.JSON(http.StatusOK, handoverReport{Report: api.report})
}
