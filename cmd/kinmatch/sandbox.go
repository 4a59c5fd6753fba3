package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/naveenspark/kinmatch/internal/auth"
	"github.com/naveenspark/kinmatch/internal/fakeapi"
	"github.com/naveenspark/kinmatch/internal/logging"
	"github.com/naveenspark/kinmatch/internal/profile"
	"github.com/naveenspark/kinmatch/internal/session"
	"github.com/naveenspark/kinmatch/internal/storage"
	"github.com/naveenspark/kinmatch/internal/tui"
	"github.com/naveenspark/kinmatch/pkg/client"
)

const (
	sandboxSecret = "kinmatch-sandbox"
	sandboxEmail  = "demo@kinmatch.local"
)

// sandbox is a seeded in-process API plus a signed-in demo session that
// never touches the user's stored session.
type sandbox struct {
	URL     string
	srv     *http.Server
	kv      storage.KV
	session *session.Provider
	auth    *auth.Authenticator
}

func startSandbox(ctx context.Context, addr string) (*sandbox, error) {
	a := auth.New(sandboxSecret)
	api := fakeapi.New(a)

	sess, err := a.Login(ctx, sandboxEmail, "sandbox")
	if err != nil {
		return nil, err
	}
	if err := api.SeedDemo(sess.User.ID); err != nil {
		return nil, err
	}

	kv, err := storage.OpenSQLite(":memory:")
	if err != nil {
		return nil, err
	}
	prov := session.NewProvider(session.NewStore(kv))
	if err := prov.Set(ctx, *sess); err != nil {
		kv.Close() //nolint:errcheck
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		kv.Close() //nolint:errcheck
		return nil, fmt.Errorf("start sandbox listener: %w", err)
	}
	srv := &http.Server{Handler: api.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("sandbox server stopped")
		}
	}()

	url := "http://" + ln.Addr().String()
	log.Info().Str("url", url).Msg("sandbox api listening")
	return &sandbox{URL: url, srv: srv, kv: kv, session: prov, auth: a}, nil
}

func (s *sandbox) services() *tui.Services {
	return tui.NewServices(client.New(s.URL, s.session), s.session, s.auth, profile.DefaultAgeBounds)
}

// Token is the demo user's bearer token.
func (s *sandbox) Token() string {
	return s.session.Token()
}

func (s *sandbox) Close() error {
	shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.srv.Shutdown(shutCtx)
	return errors.Join(err, s.kv.Close())
}

func runSandbox(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sandbox", flag.ContinueOnError)
	fs.SetOutput(out)
	addr := fs.String("addr", "127.0.0.1:0", "listen address for the demo API")
	serveOnly := fs.Bool("serve", false, "only run the demo API, without the app")
	logFile := fs.String("log", "", `log file ("-" for stderr); default stderr with -serve, none otherwise`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *logFile
	if path == "" {
		path = os.DevNull
		if *serveOnly {
			path = "-"
		}
	}
	logs, err := logging.Setup("info", path)
	if err != nil {
		return err
	}
	defer logs.Close() //nolint:errcheck

	sb, err := startSandbox(ctx, *addr)
	if err != nil {
		return err
	}
	defer sb.Close() //nolint:errcheck

	if !*serveOnly {
		return runTUI(sb.services())
	}

	fmt.Fprintf(out, "Demo API at %s\n", sb.URL)
	fmt.Fprintf(out, "Demo token: %s\n", sb.Token())
	fmt.Fprintln(out, "Press Ctrl+C to stop.")
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
