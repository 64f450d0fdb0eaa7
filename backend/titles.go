package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func titles(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	allTitles, err := ctx.Wiki.AllTitles(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, allTitles)
}

func meta(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	siteMeta, err := ctx.Wiki.SiteMeta(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, siteMeta)
}
