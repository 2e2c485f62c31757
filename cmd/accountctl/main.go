// accountctl is a small operator CLI over the accounts core. It stands in
// for the HTTP layer: each subcommand maps onto exactly one core operation
// and prints the typed outcome.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harborgate/accountd/internal/accounts/app"
	"github.com/harborgate/accountd/internal/accounts/service"
	"github.com/harborgate/accountd/pkg/slogx"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	application, err := app.New(app.LoadConfig())
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer application.Close()

	ctx := slogx.WithContext(context.Background(), application.Logger())

	if err := run(ctx, application, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, application *app.Application, command string, args []string) error {
	switch command {
	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		first := fs.String("first-name", "", "first name (optional)")
		last := fs.String("last-name", "", "last name (optional)")
		_ = fs.Parse(args)

		user, err := application.Registration.Register(ctx, *email, *password)
		if err != nil {
			return err
		}
		if *first != "" || *last != "" {
			if err := application.Users.UpdateProfile(ctx, user.ID, *first, *last); err != nil {
				return err
			}
			user, err = application.Users.GetUserByID(ctx, user.ID)
			if err != nil {
				return err
			}
		}
		fmt.Printf("registered %s (%s)\n", user.DisplayName(), user.ID)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		token, err := application.Sessions.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Println(token)

	case "whoami":
		fs := flag.NewFlagSet("whoami", flag.ExitOnError)
		token := fs.String("token", "", "session token")
		_ = fs.Parse(args)

		user, err := application.Sessions.Resolve(ctx, *token)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> (%s)\n", user.DisplayName(), user.Email, user.ID)

	case "logout":
		fs := flag.NewFlagSet("logout", flag.ExitOnError)
		token := fs.String("token", "", "session token")
		_ = fs.Parse(args)

		if err := application.Sessions.Logout(ctx, *token); err != nil {
			return err
		}
		fmt.Println("logged out")

	case "reset-request":
		fs := flag.NewFlagSet("reset-request", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		_ = fs.Parse(args)

		token, err := application.Resets.RequestReset(ctx, *email)
		if errors.Is(err, service.ErrUserNotFound) {
			// The disclosure decision lives here, at the boundary: do not
			// reveal whether the account exists.
			fmt.Println("if that account exists, a reset token has been issued")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(token)

	case "reset-password":
		fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
		token := fs.String("token", "", "reset token")
		password := fs.String("password", "", "new password")
		_ = fs.Parse(args)

		if err := application.Resets.UpdatePassword(ctx, *token, *password); err != nil {
			return err
		}
		fmt.Println("password updated")

	case "profile":
		fs := flag.NewFlagSet("profile", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		first := fs.String("first-name", "", "first name")
		last := fs.String("last-name", "", "last name")
		_ = fs.Parse(args)

		if err := application.Users.UpdateProfile(ctx, *id, *first, *last); err != nil {
			return err
		}
		user, err := application.Users.GetUserByID(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Printf("updated profile for %s\n", user.DisplayName())

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: accountctl <command> [flags]

commands:
  register        create an account (-email, -password, [-first-name, -last-name])
  login           open a session, prints the session token (-email, -password)
  whoami          resolve a session token (-token)
  logout          end a session (-token)
  reset-request   request a password reset, prints the reset token (-email)
  reset-password  consume a reset token (-token, -password)
  profile         update names (-id, -first-name, -last-name)
`)
}
