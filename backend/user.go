package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/seedling/core"
)

func changeName(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	var body struct {
		Name core.UserName `json:"name"`
	}
	if err := readBody(req, &body); err != nil {
		return err
	}
	if body.Name == "" {
		return &core.Denial{Reason: "the name must not be empty"}
	}
	if err := ctx.Wiki.ChangeName(req.Context(), ctx.User, body.Name); err != nil {
		return err
	}
	return ok(w)
}

func changeGroup(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	var body struct {
		Name  core.UserName `json:"name"`
		Group core.Group    `json:"group"`
	}
	if err := readBody(req, &body); err != nil {
		return err
	}
	if err := ctx.Wiki.ChangeGroupByName(req.Context(), ctx.User, body.Name, body.Group); err != nil {
		return err
	}
	return ok(w)
}

func removeUser(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	var body struct {
		Email core.UserEmail `json:"email"`
	}
	if err := readBody(req, &body); err != nil {
		return err
	}
	if body.Email == "" {
		body.Email = ctx.User.Email
	}
	if err := ctx.Wiki.RemoveUser(req.Context(), ctx.User, body.Email); err != nil {
		return err
	}
	if body.Email == ctx.User.Email {
		return logout(w, req, ctx, nil)
	}
	return ok(w)
}

func contributions(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	logs, err := ctx.Wiki.Contributions(req.Context(), core.UserName(params.ByName("name")), queryInt(req, "page", 1), queryInt(req, "count", 20))
	if err != nil {
		return err
	}
	return writeJSON(w, logs)
}
