package assets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/wolfeidau/bundlecompose/internal/http"
)

// Serve watches the sources, rebuilds on change and serves the output directory until
// ctx is cancelled.
func (b *Bundler) Serve(ctx context.Context) error {
	opts, err := b.buildOptions()
	if err != nil {
		return err
	}
	var current atomic.Pointer[buildRun]
	opts.Plugins = append(opts.Plugins, api.Plugin{
		Name: "emit",
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				current.Store(b.startBuild(ctx))
				return api.OnStartResult{}, nil
			})
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				run := current.Swap(nil)
				if run == nil {
					run = b.startBuild(ctx)
				}
				err := b.emit(run, *result)
				run.finish(err)
				if err != nil {
					log.Error().Err(err).Msg("Rebuild failed")
				}
				return api.OnEndResult{}, nil
			})
		},
	})

	buildCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		for _, msg := range ctxErr.Errors {
			logMessage(log.Error(), msg).Msg("Build error")
		}
		return ErrBuildFailed
	}
	defer buildCtx.Dispose()

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("failed to watch sources: %w", err)
	}

	handler := httpmiddleware.RequestLogger(log.Logger)(httpmiddleware.NoCache()(b.Handler()))
	server := configureHTTPServer(b.devServerAddr(), handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("static", b.staticDir()).Msg("Starting dev server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown dev server: %w", err)
	}
	return nil
}

// Handler serves the output directory with CORS and, when enabled, falls back to
// index.html for unknown paths.
func (b *Bundler) Handler() http.Handler {
	static := b.staticDir()
	files := http.FileServer(http.Dir(static))

	var handler http.Handler = files
	if b.opts.DevServer.HistoryAPIFallback {
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := filepath.Join(static, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
			if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) && path.Ext(r.URL.Path) == "" {
				http.ServeFile(w, r, filepath.Join(static, "index.html"))
				return
			}
			files.ServeHTTP(w, r)
		})
	}

	origins := b.opts.DevServer.CORS
	if len(origins) == 0 {
		return handler
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}).Handler(handler)
}

func (b *Bundler) staticDir() string {
	if b.opts.DevServer.Static != "" {
		return b.abs(b.opts.DevServer.Static)
	}
	return b.outDir
}

func (b *Bundler) devServerAddr() string {
	host := cond(b.opts.DevServer.Host != "", b.opts.DevServer.Host, "localhost")
	port := cond(b.opts.DevServer.Port != 0, b.opts.DevServer.Port, 8080)
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
