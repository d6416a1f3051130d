package echoapi

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classreport/core"
	"github.com/trezcool/classreport/core/chat"
	"github.com/trezcool/classreport/core/report"
)

type groupApi struct {
	groups  chat.GroupStore
	chatSvc *chat.Service
}

func registerGroupAPI(g *echo.Group, groups chat.GroupStore, chatSvc *chat.Service) {
	api := groupApi{
		groups:  groups,
		chatSvc: chatSvc,
	}

	gg := g.Group("/groups")
	gg.GET("", api.query)

	// detail endpoints
	dg := gg.Group("/:groupId")
	dg.GET("", api.retrieve)
	dg.GET("/overview", api.overview)
	dg.GET("/students/:student", api.student)
	dg.GET("/messages", api.messages)
	dg.GET("/block", api.block)
}

// pathParam returns the unescaped path parameter name. Group and student names contain spaces.
// echo routes on URL.RawPath when it is set, leaving params escaped; otherwise they are already decoded.
func pathParam(ctx echo.Context, name string) (string, error) {
	val := ctx.Param(name)
	if ctx.Request().URL.RawPath == "" {
		return val, nil
	}
	val, err := url.PathUnescape(val)
	if err != nil {
		return "", core.NewValidationError(err, core.FieldError{Field: name, Error: "invalid path parameter"})
	}
	return val, nil
}

func (api *groupApi) getGroup(ctx echo.Context) (report.GroupData, error) {
	id, err := pathParam(ctx, "groupId")
	if err != nil {
		return report.GroupData{}, err
	}
	gd, err := api.groups.Group(id)
	if err != nil {
		if errors.Cause(err) == report.ErrGroupNotFound {
			return report.GroupData{}, &notFoundError{err: errors.Errorf("group not found: %s", id)}
		}
		return report.GroupData{}, errors.Wrap(err, "getting group")
	}
	return gd, nil
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.groups.All()
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, report.Summarize(groups))
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	gd, err := api.getGroup(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, gd)
}

func (api *groupApi) overview(ctx echo.Context) error {
	gd, err := api.getGroup(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report.NewGroupOverview(gd))
}

func (api *groupApi) student(ctx echo.Context) error {
	gd, err := api.getGroup(ctx)
	if err != nil {
		return err
	}
	name, err := pathParam(ctx, "student")
	if err != nil {
		return err
	}

	rep, err := report.NewStudentReport(gd, name)
	if err != nil {
		if errors.Cause(err) == report.ErrStudentNotFound {
			suggestions := report.SuggestStudents(gd, name)
			if suggestions == nil {
				suggestions = []string{}
			}
			return &notFoundError{err: errors.Errorf("student not found: %s", name), Suggestions: suggestions}
		}
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *groupApi) messages(ctx echo.Context) error {
	gd, err := api.getGroup(ctx)
	if err != nil {
		return err
	}
	msgs, err := api.chatSvc.History(gd.GroupName)
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *groupApi) block(ctx echo.Context) error {
	gd, err := api.getGroup(ctx)
	if err != nil {
		return err
	}
	status, err := api.chatSvc.BlockStatus(gd.GroupName)
	if err != nil {
		return errors.Wrap(err, "getting block status")
	}
	return ctx.JSON(http.StatusOK, status)
}
