package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func del(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	if err := ctx.Wiki.DeleteDocument(req.Context(), params.ByName("title"), ctx.User, comment(req.URL.Query().Get("comment"))); err != nil {
		return err
	}
	return ok(w)
}
