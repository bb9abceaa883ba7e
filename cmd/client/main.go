// Package main starts the FitCompare interactive client: it restores the saved
// session, then hands the terminal to the command shell.
package main

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atinyakov/fitcompare/internal/client/api"
	"github.com/atinyakov/fitcompare/internal/client/compare"
	"github.com/atinyakov/fitcompare/internal/client/favorites"
	"github.com/atinyakov/fitcompare/internal/client/pages"
	"github.com/atinyakov/fitcompare/internal/client/querycache"
	"github.com/atinyakov/fitcompare/internal/client/session"
	"github.com/atinyakov/fitcompare/internal/client/shell"
	"github.com/atinyakov/fitcompare/internal/client/storage"
	"github.com/atinyakov/fitcompare/internal/config"
	"github.com/atinyakov/fitcompare/internal/logger"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

// staleTime bounds how long a listing is served from memory before it is refetched.
const staleTime = time.Minute

func main() {
	options, err := config.ParseClient(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if options.ShowVersion {
		fmt.Printf("FitCompare Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	lg := logger.New()
	defer func() { _ = lg.Log.Sync() }()
	if err := lg.InitConsole(options.LogLevel); err != nil {
		log.Fatal(err)
	}
	zapLogger := lg.Log

	store, err := storage.Open(options.StoragePath)
	if err != nil {
		zapLogger.Fatal("cannot open local storage", zap.String("path", options.StoragePath), zap.Error(err))
	}

	client := api.NewClient(api.Config{
		BaseURL: options.BaseURL,
		Prefix:  options.Prefix,
		Timeout: options.Timeout,
	}, api.StoredToken{Store: store}, api.WithLogger(zapLogger))
	zapLogger.Debug("backend", zap.String("url", client.BaseURL()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(store, client, zapLogger)
	if sess.Status() == session.StatusLoading {
		if err := sess.Rehydrate(ctx); err != nil && sess.Status() == session.StatusIdle {
			fmt.Println("Your saved session has expired. Type `login` to sign in again.")
		}
	}

	cache := querycache.New(querycache.WithStaleTime(staleTime), querycache.WithLogger(zapLogger))
	selection := compare.Load(store, zapLogger)
	handler := pages.NewHandler(client, sess, cache, selection, zapLogger)

	sh := shell.New(os.Stdin, os.Stdout, shell.Deps{
		Navigator: pages.NewNavigator(pages.NewRouter(handler), zapLogger),
		Session:   sess,
		Favorites: favorites.NewToggler(client, cache, zapLogger),
		Selection: selection,
		Cache:     cache,
		Products:  client,
		Log:       zapLogger,
	})
	fmt.Println("FitCompare. Type 'help' for a list of commands.")
	sh.Run(ctx)
}
