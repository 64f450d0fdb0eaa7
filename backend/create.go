package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func create(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	var body struct {
		Markup  string `json:"markup"`
		Comment string `json:"comment"`
	}
	if err := readBody(req, &body); err != nil {
		return err
	}
	if err := ctx.Wiki.CreateDocument(req.Context(), params.ByName("title"), body.Markup, ctx.User, comment(body.Comment), nil); err != nil {
		return err
	}
	return ok(w)
}
