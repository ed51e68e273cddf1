// File: cmd/client/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"auth-dashboard/internal/client"
	"auth-dashboard/internal/config"
	"auth-dashboard/internal/logging"
	"auth-dashboard/internal/session"

	"golang.org/x/term"
)

const usage = `usage: client <command> [args]

commands:
  login [email]         sign in (password is read without echo)
  register              create an account; it waits for admin approval
  logout                sign out and forget the saved token
  status                show the current session
  dashboard [page]      list approved users
  user <id>             show one user
  pending               list accounts waiting for approval (admin)
  approve <id>          approve an account (admin)
  reject <id>           reject and delete an account (admin)
  create                create an approved user without a password (admin)
  delete <id>           delete a user (admin)
`

var errUsage = errors.New("invalid usage")

var (
	loadConfig    = config.LoadClient
	openPersister = func(ctx context.Context, dsn string) (tokenPersister, error) {
		return session.OpenSQLitePersister(ctx, dsn)
	}
	readPassword = term.ReadPassword
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
	exitFunc     = os.Exit
)

// tokenPersister 可關閉的 session.TokenPersister
type tokenPersister interface {
	session.TokenPersister
	Close() error
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	persister, err := openPersister(ctx, cfg.TokenDB)
	if err != nil {
		return fmt.Errorf("開啟 token 資料庫失敗: %v", err)
	}
	defer persister.Close()

	api := client.New(cfg.APIURL, cfg.HTTPTimeout)
	a := &app{
		api:   api,
		store: session.NewStore(api, session.WithPersister(persister), session.WithLogger(logger)),
		in:    bufio.NewReader(in),
		out:   out,
	}
	return a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			log.Print(err)
		}
		exitFunc(1)
	}
}
