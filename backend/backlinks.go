package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/seedling/core"
)

func backlinks(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	backlink, html, err := ctx.Wiki.Backlinks(req.Context(), params.ByName("title"))
	if err != nil {
		return err
	}
	if backlink == nil {
		backlink = &core.Backlink{FullTitle: params.ByName("title")}
	}
	return writeJSON(w, map[string]interface{}{
		"fullTitle":      backlink.FullTitle,
		"linkedFrom":     backlink.LinkedFrom,
		"embeddedIn":     backlink.EmbeddedIn,
		"redirectedFrom": backlink.RedirectedFrom,
		"html":           html,
	})
}
