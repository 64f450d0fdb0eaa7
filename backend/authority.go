package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/seedling/core"
)

func authority(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	var body struct {
		Action  core.Action  `json:"action"`
		Groups  []core.Group `json:"groups"`
		Comment string       `json:"comment"`
	}
	if err := readBody(req, &body); err != nil {
		return err
	}
	if err := ctx.Wiki.ChangeAuthority(req.Context(), params.ByName("title"), body.Action, body.Groups, ctx.User, comment(body.Comment)); err != nil {
		return err
	}
	return ok(w)
}
