package backend

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/seedling/core"
)

func applyPenalty(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	var body struct {
		Email    core.UserEmail   `json:"email"`
		Type     core.PenaltyType `json:"type"`
		Duration int              `json:"duration"` // minutes, zero is permanent
		Comment  string           `json:"comment"`
	}
	if err := readBody(req, &body); err != nil {
		return err
	}
	var err error
	switch body.Type {
	case core.PenaltyBlock:
		err = ctx.Wiki.BlockUser(req.Context(), ctx.User, body.Email, body.Duration, comment(body.Comment))
	case core.PenaltyWarn:
		err = ctx.Wiki.WarnUser(req.Context(), ctx.User, body.Email, body.Duration, comment(body.Comment))
	default:
		return &core.Denial{Reason: "unknown penalty type"}
	}
	if err != nil {
		return err
	}
	return ok(w)
}

func removePenalty(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil {
		return &core.Denial{Reason: "malformed penalty id"}
	}
	if err := ctx.Wiki.RemovePenalty(req.Context(), ctx.User, id); err != nil {
		return err
	}
	return ok(w)
}

func penalties(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	result, err := ctx.Wiki.Penalties(req.Context(), ctx.User, core.UserEmail(params.ByName("email")))
	if err != nil {
		return err
	}
	return writeJSON(w, result)
}
