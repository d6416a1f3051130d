package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classreport/core/chat"
)

type chatApi struct {
	svc      *chat.Service
	validate *validator.Validate
}

func registerChatAPI(g *echo.Group, svc *chat.Service, validate *validator.Validate) {
	api := chatApi{
		svc:      svc,
		validate: validate,
	}
	g.POST("/chat", api.ask)
}

func (api *chatApi) ask(ctx echo.Context) error {
	var data chat.Question
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Question")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reply, err := api.svc.Ask(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "asking question")
	}
	return ctx.JSON(http.StatusOK, reply)
}
