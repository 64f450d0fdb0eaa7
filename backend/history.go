package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func history(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	logs, err := ctx.Wiki.History(req.Context(), params.ByName("title"), queryInt(req, "page", 1), queryInt(req, "count", 20))
	if err != nil {
		return err
	}
	return writeJSON(w, logs)
}
