// Command coincraft is a terminal client for the CoinCraft backend. It
// exercises the full session lifecycle: restore, login, whoami, dashboard,
// logout.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/coincraftapp/coincraft-go/internal/client/app"
	"github.com/coincraftapp/coincraft-go/internal/client/guard"
	"github.com/coincraftapp/coincraft-go/internal/client/session"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := app.LoadConfig()
	client, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	if err := run(ctx, client, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, client *app.Client, command string, args []string) error {
	switch command {
	case "login":
		if len(args) != 2 {
			return errors.New("usage: coincraft login <email> <password>")
		}
		sess, err := client.Sessions.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", sess.User.Name, sess.User.Role)
		fmt.Printf("landing: %s\n", guard.LandingPath(sess.User.Role))
		return nil

	case "whoami":
		sess, err := restore(ctx, client)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> role=%s", sess.User.Name, sess.User.Email, sess.User.Role)
		if sess.User.Role.IsChild() {
			fmt.Printf(" coins=%d", sess.User.Coins)
		}
		fmt.Println()
		return nil

	case "dashboard":
		if _, err := restore(ctx, client); err != nil {
			return err
		}
		dash, err := client.Dashboard.Load(ctx, false)
		if err != nil {
			return err
		}
		fmt.Printf("coins=%d level=%d streak=%d goals=%d\n",
			dash.Stats.TotalCoins, dash.Stats.Level,
			dash.Stats.StreakDays, dash.Stats.GoalsCount)
		for _, goal := range dash.ActiveGoals {
			fmt.Printf("  goal %q %d/%d\n", goal.Title, goal.CurrentAmount, goal.TargetAmount)
		}
		return nil

	case "logout":
		if _, err := restore(ctx, client); err != nil {
			return err
		}
		if err := client.Sessions.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func restore(ctx context.Context, client *app.Client) (session.Session, error) {
	sess, err := client.Sessions.Restore(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return session.Session{}, errors.New("not signed in (run: coincraft login <email> <password>)")
	}
	return sess, err
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: coincraft <command>

commands:
  login <email> <password>   sign in and persist the session
  whoami                     show the signed-in user
  dashboard                  show the role dashboard
  logout                     sign out and wipe local state`)
}
