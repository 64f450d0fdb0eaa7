package backend

import (
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/seedling/core"
)

const maxUploadBytes = 10 << 20

func upload(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return &core.Denial{Reason: "malformed multipart request"}
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		return &core.Denial{Reason: "no file attached"}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return err
	}
	if len(data) > maxUploadBytes {
		return &core.Denial{Reason: "the file is too large"}
	}

	var markup = req.FormValue("markup")
	err = ctx.Wiki.UploadFile(req.Context(), params.ByName("title"), markup, &core.Upload{
		Name: header.Filename,
		Data: data,
	}, ctx.User, comment(req.FormValue("comment")))
	if err != nil {
		return err
	}
	return ok(w)
}
