package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func hide(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	if err := ctx.Wiki.HideDocument(req.Context(), params.ByName("title"), ctx.User, comment(req.URL.Query().Get("comment"))); err != nil {
		return err
	}
	return ok(w)
}

func show(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	if err := ctx.Wiki.ShowDocument(req.Context(), params.ByName("title"), ctx.User, comment(req.URL.Query().Get("comment"))); err != nil {
		return err
	}
	return ok(w)
}
