package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/pavelanni/zipreport/internal/analysis"
	"github.com/pavelanni/zipreport/internal/filename"
	"github.com/pavelanni/zipreport/internal/handler"
	"github.com/pavelanni/zipreport/internal/i18n"
	"github.com/pavelanni/zipreport/internal/importer"
	"github.com/pavelanni/zipreport/internal/metrics"
	"github.com/pavelanni/zipreport/internal/model"
	"github.com/pavelanni/zipreport/internal/render"
	"github.com/pavelanni/zipreport/internal/report"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "zipreport",
		Short:        "Analytical reports from ZipGrade CSV exports",
		SilenceUsage: true,
	}
	root.AddCommand(reportCmd(), serveCmd(), hashPasswordCmd(), versionCmd())
	return root
}

func addReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("format", "f", string(model.FormatHTML), "Report format (html, xlsx, json)")
	f.StringP("lang", "l", "en", "Report language (en, ru)")
	f.String("delimiter", ",", "Field delimiter of the export")
	f.Bool("strict", false, "Parse rows as quoted CSV so delimiters inside quotes are kept")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <export.csv>",
		Short: "Build a report from an export file",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	addReportFlags(cmd)
	f := cmd.Flags()
	f.StringP("output-dir", "o", "", "Directory for the report (default: next to the export)")
	f.String("class", "", "Optional class segment for the report file name")
	f.Bool("stdout", false, "Write the report to stdout instead of a file")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP upload server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addReportFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /reports)")
	f.Bool("secure-cookies", true, "Set Secure flag on cookies")
	f.String("username", "", "Basic auth user name")
	f.String("password-hash", "", "bcrypt hash of the basic auth password (see hash-password)")
	f.Int64("max-upload-mb", 10, "Maximum upload size in megabytes")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its bcrypt hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("password is empty")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return err
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "zipreport", version)
		},
	}
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("ZIPREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("zipreport")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/zipreport")
	v.AddConfigPath("/etc/zipreport")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func reportConfig(v *viper.Viper) (model.ReportConfig, error) {
	cfg := model.ReportConfig{
		Format:    model.ParseFormat(v.GetString("format")),
		Lang:      strings.ToLower(v.GetString("lang")),
		Delimiter: v.GetString("delimiter"),
		Strict:    v.GetBool("strict"),
		OutputDir: v.GetString("output-dir"),
	}
	if cfg.Delimiter == `\t` {
		cfg.Delimiter = "\t"
	}
	return cfg, cfg.Validate()
}

func runReport(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	cfg, err := reportConfig(v)
	if err != nil {
		return err
	}
	if err := i18n.Init(cfg.Lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	ctx := i18n.WithLanguage(cmd.Context(), cfg.Lang)

	input := args[0]
	out, name, err := generate(ctx, cfg, input, v.GetString("class"))
	if err != nil {
		return err
	}

	if v.GetBool("stdout") {
		_, err := out.WriteTo(cmd.OutOrStdout())
		return err
	}

	dir := cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	slog.Info("report written", "path", path, "format", cfg.Format)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// generate runs the whole pipeline for one export file and returns the
// rendered document and its file name.
func generate(ctx context.Context, cfg model.ReportConfig, input, class string) (*bytes.Buffer, string, error) {
	renderer, err := render.ForFormat(cfg.Format)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, "", fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	sheets, err := importer.Read(f, importer.Options{Delimiter: cfg.DelimiterRune(), Strict: cfg.Strict})
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", input, err)
	}
	coll := analysis.NewCollection(sheets)
	slog.Debug("parsed export", "path", input, "students", coll.Len(), "classes", coll.Classes())

	rep, err := report.Build(ctx, coll)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := renderer.Render(ctx, &buf, rep); err != nil {
		return nil, "", err
	}

	first, _ := coll.First()
	name, err := filename.Derive(first.QuizName, class, first.DateExported, renderer.Extension())
	if err != nil {
		slog.Warn("using fallback report name", "error", err)
		name = filename.Fallback(renderer.Extension())
	}
	return &buf, name, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	rc, err := reportConfig(v)
	if err != nil {
		return err
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.ServerConfig{
		Addr:          v.GetString("addr"),
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		Username:      v.GetString("username"),
		PasswordHash:  v.GetString("password-hash"),
		MaxUploadMB:   v.GetInt64("max-upload-mb"),
		Report:        rc,
	}

	if err := i18n.Init(rc.Lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	h, err := handler.New(cfg, metrics.New())
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server",
			"addr", cfg.Addr,
			"base_path", basePath,
			"lang", rc.Lang,
			"format", rc.Format,
			"auth", cfg.PasswordHash != "",
			"version", version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
