// Command server runs the yatube web application and its admin tasks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"yatube/internal/app"
	"yatube/internal/config"
	"yatube/internal/logging"
	"yatube/internal/server"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "yatube",
	Short: "Yatube blog server",
	Long: `yatube serves the blog: post feeds, groups, author profiles and the
post editor. Without a subcommand it starts the HTTP server.

Configuration is read from the file given by --config and then from
YATUBE_* environment variables, e.g. YATUBE_SERVER_ADDR=:9000.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE:  runMigrate,
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage post groups",
}

var groupAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a group",
	Long: `Create a group that posts can be filed under.

Examples:
  yatube group add --title "Cats" --slug cats --description "All about cats"`,
	RunE: runGroupAdd,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	RunE:  runUserAdd,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "yatube.yaml", "path to the YAML config file")

	groupAddCmd.Flags().String("title", "", "group title")
	groupAddCmd.Flags().String("slug", "", "unique URL slug")
	groupAddCmd.Flags().String("description", "", "group description")
	groupAddCmd.MarkFlagRequired("title")
	groupAddCmd.MarkFlagRequired("slug")
	groupCmd.AddCommand(groupAddCmd)

	userAddCmd.Flags().String("username", "", "login name")
	userAddCmd.Flags().String("email", "", "email address")
	userAddCmd.Flags().String("password", "", "password, at least 8 characters")
	userAddCmd.MarkFlagRequired("username")
	userAddCmd.MarkFlagRequired("email")
	userAddCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userAddCmd)

	rootCmd.AddCommand(serveCmd, migrateCmd, groupCmd, userCmd)
}

// setup loads config, builds the logger and opens the application.
func setup(ctx context.Context) (*app.App, *config.Config, *logging.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, nil, err
	}
	return a, cfg, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, _, logger, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()

	logger.Info(ctx, "starting yatube", zap.String("version", version))
	return a.Run(ctx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	a, cfg, logger, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info(cmd.Context(), "database is up to date", zap.String("path", cfg.Database.Path))
	return a.Close()
}

func runGroupAdd(cmd *cobra.Command, _ []string) error {
	title, _ := cmd.Flags().GetString("title")
	slug, _ := cmd.Flags().GetString("slug")
	description, _ := cmd.Flags().GetString("description")
	if strings.TrimSpace(title) == "" || strings.TrimSpace(slug) == "" {
		return fmt.Errorf("title and slug must not be blank")
	}

	a, _, logger, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()

	g, err := a.Store().CreateGroup(cmd.Context(), title, slug, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "group %q created at /group/%s/\n", g.Title, g.Slug)
	return nil
}

func runUserAdd(cmd *cobra.Command, _ []string) error {
	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if errs := server.ValidateSignup(username, email, password); len(errs) > 0 {
		for field, msgs := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid user")
	}

	a, cfg, logger, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer a.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	u, err := a.Store().CreateUser(cmd.Context(), email, username, string(hash))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "user %s created (id %d)\n", u.Username, u.ID)
	return nil
}
