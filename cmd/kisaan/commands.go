package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
	"github.com/kisaanconnect/marketplace/internal/core/service"
	"github.com/kisaanconnect/marketplace/internal/infrastructure/config"
	"github.com/kisaanconnect/marketplace/internal/ui"
	"github.com/kisaanconnect/marketplace/pkg/logger"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "kisaan"
)

// cli owns the app built for the running command.
type cli struct {
	app *app
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}

func newCLI() (*cobra.Command, *cli) {
	c := &cli{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "KisaanConnect terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			cfg, err := config.LoadClient(cmd.Context())
			if err != nil {
				return err
			}
			log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: appName})

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	cmd.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.verifyCmd(),
		c.openCmd(),
		c.navCmd(),
		c.watchCmd(),
		versionCmd(),
	)
	return cmd, c
}

func (c *cli) loginCmd() *cobra.Command {
	var in service.LoginInput
	var role string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and open your dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			in.Role = domain.Role(role)
			if in.Password == "" {
				in.Password = readSecret(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr(), "Password: ")
			}

			form := a.auth.NewLoginForm()
			defer form.Close()
			path, err := form.Submit(cmd.Context(), in)
			if err != nil {
				return errors.New(service.FormMessage(err))
			}
			return openAndPrint(cmd, a, path)
		},
	}
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "Password (prompted when empty)")
	cmd.Flags().StringVarP(&role, "role", "r", "", "Account type: farmer or consumer")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var in service.SignUpInput
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account, sign in and open your dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			in.Role = domain.Role(role)
			stdin := bufio.NewReader(cmd.InOrStdin())
			if in.Password == "" {
				in.Password = readSecret(stdin, cmd.ErrOrStderr(), "Password: ")
			}
			if in.ConfirmPassword == "" {
				in.ConfirmPassword = readSecret(stdin, cmd.ErrOrStderr(), "Confirm password: ")
			}

			form := a.auth.NewSignUpForm()
			defer form.Close()
			path, err := form.Submit(cmd.Context(), in)
			if err != nil {
				return errors.New(service.FormMessage(err))
			}
			return openAndPrint(cmd, a, path)
		},
	}
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "Username (letters, numbers, underscores)")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "Password, at least 8 characters (prompted when empty)")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm", "", "Password again (prompted when empty)")
	cmd.Flags().StringVarP(&role, "role", "r", "", "Account type: farmer or consumer")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.auth.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.sessions.State(cmd.Context())
			out := cmd.OutOrStdout()
			switch {
			case !state.Authenticated:
				fmt.Fprintln(out, "Not logged in.")
			case state.User == nil:
				fmt.Fprintln(out, "Logged in (profile unavailable).")
			default:
				fmt.Fprintf(out, "%s (%s, id %d)\n", state.User.Username, state.User.Role, state.User.ID)
			}
			return nil
		},
	}
}

func (c *cli) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored token with the server, logging out if it was rejected",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, hadToken := c.app.sessions.Token(cmd.Context())
			ok, err := c.app.auth.Revalidate(cmd.Context())
			out := cmd.OutOrStdout()
			switch {
			case err != nil && ok:
				return errors.New(domain.Message(err))
			case err != nil:
				return err
			case ok:
				fmt.Fprintln(out, "Session is valid.")
			case hadToken:
				fmt.Fprintln(out, domain.Message(domain.ErrTokenInvalid))
			default:
				fmt.Fprintln(out, "Not logged in.")
			}
			return nil
		},
	}
}

func (c *cli) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [path]",
		Short: "Render a page, following route guard redirects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := domain.PathHome
			if len(args) == 1 {
				path = args[0]
			}
			return openAndPrint(cmd, c.app, path)
		},
	}
}

func (c *cli) navCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "Print the navigation bar",
		RunE: func(cmd *cobra.Command, args []string) error {
			nav := c.app.nav
			nav.Mount(cmd.Context())
			defer nav.Unmount()
			fmt.Fprintln(cmd.OutOrStdout(), nav.Render())
			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the navigation bar on screen, updating it when another process logs in or out",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, a, cmd.OutOrStdout())
		},
	}
}

// runWatch prints the bar once, then again whenever its text changes.
func runWatch(ctx context.Context, a *app, out io.Writer) error {
	last := ""
	a.nav.OnChange(func(ui.NavView) {
		text := a.nav.Render()
		if text == last {
			return
		}
		last = text
		fmt.Fprintln(out, text)
	})
	a.nav.Mount(ctx)
	defer a.nav.Unmount()

	return a.Follow(ctx)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

func openAndPrint(cmd *cobra.Command, a *app, path string) error {
	view, trail, err := a.router.Open(cmd.Context(), path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(trail) > 1 {
		fmt.Fprintf(out, "→ %s\n", strings.Join(trail, " → "))
	}
	fmt.Fprintf(out, "== %s ==\n%s\n", view.Title, view.Body)
	return nil
}

func readSecret(r *bufio.Reader, prompt io.Writer, label string) string {
	fmt.Fprint(prompt, label)
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
