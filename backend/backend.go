// Package backend exposes the wiki as a JSON API over HTTP.
package backend

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/julienschmidt/httprouter"
	"github.com/wansing/seedling/core"
)

// An AuthDB checks and stores passwords. The sqldb package implements it.
type AuthDB interface {
	Authenticate(email core.UserEmail, password string) error
	SetPassword(email core.UserEmail, password string) error
}

type Server struct {
	Wiki     *core.Wiki
	Auth     AuthDB
	Sessions *scs.SessionManager
}

// context carries the request-scoped state of one API call.
type context struct {
	*Server
	User *core.User // never nil, guests get a transient account
}

func (srv *Server) middleware(f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var user = &core.User{Group: core.GroupGuest}
		if email := srv.Sessions.GetString(req.Context(), "email"); email != "" {
			u, err := srv.Wiki.UserByEmail(req.Context(), core.UserEmail(email))
			if err != nil {
				writeError(w, err)
				return
			}
			if u != nil {
				user = u
			}
		}

		var ctx = &context{
			Server: srv,
			User:   user,
		}
		if err := f(w, req, ctx, params); err != nil {
			writeError(w, err)
		}
	}
}

func (srv *Server) NewRouter() http.Handler {

	var router = httprouter.New()

	router.GET("/api/doc/:title", srv.middleware(read))
	router.POST("/api/doc/:title", srv.middleware(create))
	router.PUT("/api/doc/:title", srv.middleware(edit))
	router.DELETE("/api/doc/:title", srv.middleware(del))
	router.POST("/api/doc/:title/move", srv.middleware(move))
	router.POST("/api/doc/:title/authority", srv.middleware(authority))
	router.POST("/api/doc/:title/hide", srv.middleware(hide))
	router.POST("/api/doc/:title/show", srv.middleware(show))
	router.GET("/api/doc/:title/history", srv.middleware(history))
	router.GET("/api/doc/:title/backlinks", srv.middleware(backlinks))
	router.POST("/api/file/:title", srv.middleware(upload))

	router.GET("/api/titles", srv.middleware(titles))
	router.GET("/api/meta", srv.middleware(meta))

	router.POST("/api/signup", srv.middleware(signup))
	router.POST("/api/login", srv.middleware(login))
	router.POST("/api/logout", srv.middleware(logout))
	router.POST("/api/user/name", srv.middleware(changeName))
	router.POST("/api/user/group", srv.middleware(changeGroup))
	router.DELETE("/api/user", srv.middleware(removeUser))
	router.GET("/api/user/:name/contributions", srv.middleware(contributions))

	router.POST("/api/penalty", srv.middleware(applyPenalty))
	router.DELETE("/api/penalty/:id", srv.middleware(removePenalty))
	router.GET("/api/penalties/:email", srv.middleware(penalties))

	return srv.Sessions.LoadAndSave(router)
}
