package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/naveenspark/kinmatch/internal/auth"
	"github.com/naveenspark/kinmatch/internal/config"
	"github.com/naveenspark/kinmatch/internal/logging"
	"github.com/naveenspark/kinmatch/internal/profile"
	"github.com/naveenspark/kinmatch/internal/session"
	"github.com/naveenspark/kinmatch/internal/storage"
	"github.com/naveenspark/kinmatch/internal/tui"
	"github.com/naveenspark/kinmatch/pkg/client"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// stdin feeds interactive prompts; tests replace it.
var stdin io.Reader = os.Stdin

// runTUI starts the interactive program; tests replace it.
var runTUI = func(svc *tui.Services) error {
	p := tea.NewProgram(tui.NewApp(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is everything a command needs once configuration is loaded.
type env struct {
	cfg     *config.Config
	kv      storage.KV
	session *session.Provider
	auth    *auth.Authenticator
	logs    io.Closer
}

func (e *env) Close() {
	if err := e.kv.Close(); err != nil {
		log.Warn().Err(err).Msg("close session store")
	}
	e.logs.Close() //nolint:errcheck // best-effort close
}

func (e *env) services() *tui.Services {
	c := client.New(e.cfg.APIURL, e.session)
	bounds := profile.AgeBounds{Min: e.cfg.Profile.AgeMin, Max: e.cfg.Profile.AgeMax}
	return tui.NewServices(c, e.session, e.auth, bounds)
}

// setup loads config, logging and the stored session.
func setup(ctx context.Context) (*env, error) {
	path := os.Getenv("KINMATCH_CONFIG")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logs, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}
	kv, err := storage.Open(cfg.Store, cfg.DataDir)
	if err != nil {
		logs.Close() //nolint:errcheck
		return nil, err
	}
	prov := session.NewProvider(session.NewStore(kv))
	if err := prov.Load(ctx); err != nil {
		// An unreadable session is treated as signed out.
		log.Warn().Err(err).Msg("load session")
	}
	log.Debug().Str("api", cfg.APIURL).Str("store", cfg.Store).Msg("kinmatch starting")
	return &env{cfg: cfg, kv: kv, session: prov, auth: auth.New(cfg.Auth.Secret), logs: logs}, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}
	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(out, "kinmatch "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(out)
		return nil
	case "sandbox":
		return runSandbox(ctx, args, out)
	case "", "login", "register", "logout", "whoami":
	default:
		printHelp(out)
		return fmt.Errorf("unknown command %q", cmd)
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	switch cmd {
	case "login":
		return runLogin(ctx, e, args, out)
	case "register":
		return runRegister(ctx, e, args, out)
	case "logout":
		return runLogout(ctx, e, out)
	case "whoami":
		return runWhoami(e, out)
	}
	return runTUI(e.services())
}

func runLogin(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := bufio.NewReader(stdin)
	if *email == "" {
		*email = prompt(in, out, "Email: ")
	}
	if *password == "" {
		*password = prompt(in, out, "Password: ")
	}

	sess, err := e.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	return saveSession(ctx, e, sess, out)
}

func runRegister(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(out)
	var r auth.Registration
	var role string
	fs.StringVar(&r.Name, "name", "", "your full name")
	fs.StringVar(&r.Email, "email", "", "account email")
	fs.StringVar(&r.Password, "password", "", "password (at least 6 characters)")
	fs.StringVar(&r.Phone, "phone", "", "phone number")
	fs.StringVar(&role, "role", string(domain.RoleMother), "account type: mother or child")
	if err := fs.Parse(args); err != nil {
		return err
	}
	r.Role = domain.Role(strings.ToLower(strings.TrimSpace(role)))

	in := bufio.NewReader(stdin)
	if r.Name == "" {
		r.Name = prompt(in, out, "Full name: ")
	}
	if r.Email == "" {
		r.Email = prompt(in, out, "Email: ")
	}
	if r.Phone == "" {
		r.Phone = prompt(in, out, "Phone: ")
	}
	if r.Password == "" {
		r.Password = prompt(in, out, "Password: ")
		r.ConfirmPassword = prompt(in, out, "Confirm password: ")
	} else {
		r.ConfirmPassword = r.Password
	}

	sess, err := e.auth.Register(ctx, r)
	if err != nil {
		return err
	}
	return saveSession(ctx, e, sess, out)
}

func saveSession(ctx context.Context, e *env, sess *domain.Session, out io.Writer) error {
	if err := e.session.Set(ctx, *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(out, "Signed in as %s <%s>\n", sess.User.Name, sess.User.Email)
	fmt.Fprintln(out, "Run kinmatch to open the app.")
	return nil
}

func runLogout(ctx context.Context, e *env, out io.Writer) error {
	if !e.session.Authenticated() {
		fmt.Fprintln(out, "Already logged out.")
		return nil
	}
	if err := e.session.Logout(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	fmt.Fprintln(out, "Logged out.")
	printGreeting(out)
	return nil
}

func runWhoami(e *env, out io.Writer) error {
	s := e.session.Current()
	if s == nil {
		fmt.Fprintln(out, "Not signed in.")
		printGreeting(out)
		return nil
	}
	fmt.Fprintf(out, "%s <%s> · %s\n", s.User.Name, s.User.Email, s.User.Role)
	if _, err := e.auth.Verify(s.Token); err != nil {
		log.Debug().Err(err).Msg("stored token rejected")
		fmt.Fprintln(out, "The stored token was not issued by this client; log in again.")
	}
	return nil
}

// prompt reads one trimmed line after printing label.
func prompt(in *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := in.ReadString('\n') //nolint:errcheck // EOF leaves what was read
	return strings.TrimSpace(line)
}
