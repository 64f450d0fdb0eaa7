package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/seedling/core"
)

func login(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	var body struct {
		Email    core.UserEmail `json:"email"`
		Password string         `json:"password"`
	}
	if err := readBody(req, &body); err != nil {
		return err
	}
	if err := ctx.Auth.Authenticate(body.Email, body.Password); err != nil {
		return &core.Denial{Reason: "wrong email or password"}
	}
	if err := ctx.Sessions.RenewToken(req.Context()); err != nil {
		return err
	}
	ctx.Sessions.Put(req.Context(), "email", string(body.Email))
	return ok(w)
}

func logout(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	if err := ctx.Sessions.Destroy(req.Context()); err != nil {
		return err
	}
	return ok(w)
}

func signup(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	var body struct {
		Email    core.UserEmail `json:"email"`
		Name     core.UserName  `json:"name"`
		Password string         `json:"password"`
	}
	if err := readBody(req, &body); err != nil {
		return err
	}
	if body.Email == "" || body.Name == "" || body.Password == "" {
		return &core.Denial{Reason: "email, name and password are required"}
	}

	user, err := ctx.Wiki.Signup(req.Context(), body.Email, body.Name)
	if err != nil {
		return err
	}
	if err := ctx.Auth.SetPassword(user.Email, body.Password); err != nil {
		return err
	}
	return writeJSON(w, map[string]interface{}{
		"email": user.Email,
		"name":  user.Name,
	})
}
