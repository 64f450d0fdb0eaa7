package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func move(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	var body struct {
		To      string `json:"to"`
		Comment string `json:"comment"`
	}
	if err := readBody(req, &body); err != nil {
		return err
	}
	if err := ctx.Wiki.MoveDocument(req.Context(), params.ByName("title"), ctx.User, body.To, comment(body.Comment)); err != nil {
		return err
	}
	return ok(w)
}
