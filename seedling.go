package main

import (
	"bytes"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/wansing/seedling/backend"
	"github.com/wansing/seedling/core"
	"github.com/wansing/seedling/markup"
	"github.com/wansing/seedling/sqldb"
	"github.com/wansing/seedling/sqldb/sqlite3"
	"github.com/wansing/seedling/storage"
	"github.com/wansing/seedling/util"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

func init() {
	log.SetFlags(0) // no log prefixes, on most systems systemd-journald adds them
}

func main() {

	var dbArg string // is in both FlagSets

	// default FlagSet

	flag.StringVar(&dbArg, "db", "sqlite3:seedling.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared", "sql database url, see github.com/xo/dburl")
	var configArg = flag.String("config", "", "load flag values from this ini `file`")
	var filesArg = flag.String("files", "files", "store uploaded files in this `directory`")
	var listenAddr = flag.String("listen", "127.0.0.1:8080", "serve HTTP content at this `ip:port`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", "sqlite3:seedling.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared", "sql database url, see github.com/xo/dburl") // copied from above
	var initInsert = initFlags.Bool("insert", false, "creates the given user, prompting for a password")
	var initMakeManager = initFlags.Bool("make-manager", false, "puts the given user into the manager group")
	var email = initFlags.String("email", "", "specifies a user `email`")
	var username = initFlags.String("user", "", "specifies a user `name`")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// optional ini config, flags win

	if *configArg != "" {
		config, err := util.Ini(*configArg)
		if err != nil {
			log.Printf("could not load config: %v", err)
			return
		}
		var set = map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		for key, value := range config {
			if !set[key] {
				flag.Set(key, value)
			}
		}
	}

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Printf("could not parse database url: %v", err)
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Printf("could not open sql database: %v", err)
		return
	}

	if err = sqlDB.Ping(); err != nil {
		log.Printf("could not ping sql database: %v", err)
		return
	}

	log.Printf("using database %s", dbURL.String())

	defer func() {
		log.Println("closing database")
		sqlDB.Close()
	}()

	// assemble stuff

	var sessionStore scs.Store
	switch dbURL.Driver {
	case "sqlite3":
		sessionStore, err = sqlite3.NewSessionStore(sqlDB)
		if err != nil {
			log.Printf("could not create session store: %v", err)
			return
		}
	default:
		log.Printf("unknown database backend: %s", dbURL.Driver)
		return
	}

	blobs, err := storage.NewDir(*filesArg, "/files")
	if err != nil {
		log.Printf("could not open file storage: %v", err)
		return
	}

	var db = sqldb.New(sqlDB)

	var wiki = &core.Wiki{
		DB:       db,
		Analyzer: markup.Default{},
		Blobs:    blobs,
	}

	if err := wiki.Initialize(context.Background()); err != nil {
		log.Printf("could not initialize: %v", err)
		return
	}

	// init

	if initFlags.Parsed() {
		switch {
		case *initInsert:
			if *email != "" && *username != "" {
				insertUser(wiki, db, core.UserEmail(*email), core.UserName(*username))
			}
		case *initMakeManager:
			if *username != "" {
				makeManager(wiki, core.UserName(*username))
			}
		}
		return
	}

	var sessions = scs.New()
	sessions.Store = sessionStore
	sessions.Lifetime = 24 * time.Hour

	var srv = &backend.Server{
		Wiki:     wiki,
		Auth:     db,
		Sessions: sessions,
	}

	listen(srv, blobs, *listenAddr)
}

func insertUser(wiki *core.Wiki, db *sqldb.DB, email core.UserEmail, name core.UserName) {

	fmt.Printf("password for user %s: ", name)
	pass1, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	fmt.Printf("repeat password: ")
	pass2, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	if !bytes.Equal(pass1, pass2) {
		log.Printf("passwords don't match")
		return
	}

	user, err := wiki.Signup(context.Background(), email, name)
	if err != nil {
		log.Printf("error creating user %s: %v", name, err)
		return
	}

	if err := db.SetPassword(user.Email, string(pass1)); err != nil {
		log.Printf("error setting password: %v", err)
		return
	}
}

func makeManager(wiki *core.Wiki, name core.UserName) {
	if err := wiki.ChangeGroupByName(context.Background(), core.SystemUser(), name, core.GroupManager); err != nil {
		log.Printf("error changing group: %v", err)
	}
}

func listen(srv *backend.Server, blobs *storage.Dir, addr string) {

	http.Handle("/api/", srv.NewRouter())
	http.Handle("/files/", http.StripPrefix("/files/", http.FileServer(http.Dir(blobs.Path))))

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Println(err)
		return
	}

	log.Printf("listening to %s", addr)

	httpSrv := &http.Server{
		Handler:      http.DefaultServeMux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Printf("error listening: %v", err)
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	log.Println("shutting down")
	httpSrv.Close()
}
