package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/scout-bot/app"
	authdomain "github.com/Black-And-White-Club/scout-bot/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/scout-bot/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/scout-bot/config"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "scoutd",
		Usage: "robotics scouting collector",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			tokenCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API, the event router and the notification scheduler",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			application, err := app.NewApp(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer func() { _ = application.Close() }()

			return application.Run(ctx)
		},
	}
}

// tokenCommand issues a bearer token for local testing. Tokens in production come
// from the identity provider sharing JWT_SECRET.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue a signed bearer token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true, Usage: "scout ID"},
			&cli.StringFlag{Name: "name", Usage: "display name"},
			&cli.IntFlag{Name: "team", Usage: "team number"},
			&cli.StringFlag{Name: "role", Value: string(authdomain.RoleMember), Usage: "member or admin"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.JWT.Secret == "" {
				return fmt.Errorf("JWT_SECRET is not configured")
			}

			role := authdomain.Role(c.String("role"))
			if !role.IsValid() {
				return fmt.Errorf("invalid role %q", role)
			}

			provider := authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer)
			token, err := provider.GenerateToken(authdomain.Scout{
				ID:         c.String("user"),
				Name:       c.String("name"),
				TeamNumber: c.Int("team"),
				Role:       role,
			}, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
