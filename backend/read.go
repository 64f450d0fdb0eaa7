package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func read(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	var revision = queryInt(req, "rev", -1)
	doc, err := ctx.Wiki.ReadDocument(req.Context(), params.ByName("title"), ctx.User, revision)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]interface{}{
		"fullTitle": doc.FullTitle,
		"type":      doc.Type,
		"state":     doc.State,
		"revision":  doc.Info.Revision,
		"authority": doc.Authority,
		"markup":    doc.Markup,
		"html":      doc.HTML,
	})
}
