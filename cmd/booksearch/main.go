package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"github.com/RobBrazier/booksearch/config"
	"github.com/RobBrazier/booksearch/internal/logger"
	"github.com/RobBrazier/booksearch/internal/model"
	"github.com/RobBrazier/booksearch/internal/server"
	"github.com/RobBrazier/booksearch/internal/version"
)

type serveCmd struct{}

type searchCmd struct {
	JSON  bool     `arg:"--json" help:"print results as JSON"`
	Terms []string `arg:"positional,required" placeholder:"TERM" help:"words to search the catalog for"`
}

type args struct {
	Serve  *serveCmd  `arg:"subcommand:serve" help:"run the HTTP search API"`
	Search *searchCmd `arg:"subcommand:search" help:"run a single search and print the results"`
}

func (args) Version() string {
	return "booksearch " + version.Version
}

func (args) Description() string {
	return "Search the book catalog from the command line or over HTTP."
}

func main() {
	var cli args
	p := arg.MustParse(&cli)

	if err := config.LoadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	logger.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case cli.Search != nil:
		err = runSearch(ctx, cli.Search, os.Stdout)
	case cli.Serve != nil:
		err = runServe(ctx)
	default:
		p.WriteHelp(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("booksearch failed")
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	srv := server.NewServer()
	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Listening")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runSearch(ctx context.Context, cmd *searchCmd, out io.Writer) error {
	term := strings.Join(cmd.Terms, " ")
	result, err := server.NewSearcherFromConfig().Search(term).Wait(ctx)
	if err != nil {
		return err
	}
	if cmd.JSON {
		return printJSON(out, term, result)
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("search %q: %w", term, err)
	}
	printBooks(out, result.Books())
	return nil
}

func printJSON(out io.Writer, term string, result model.QueryResult) error {
	body := struct {
		Query string       `json:"query"`
		Books []model.Book `json:"books"`
		Error string       `json:"error,omitempty"`
	}{Query: term, Books: result.Books()}
	if err := result.Err(); err != nil {
		body.Error = err.Error()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		return err
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("search %q: %w", term, err)
	}
	return nil
}

func printBooks(out io.Writer, books []model.Book) {
	if len(books) == 0 {
		fmt.Fprintln(out, "No books found")
		return
	}
	for _, book := range books {
		authors := "Unknown author"
		if names := book.Authors(); len(names) > 0 {
			authors = strings.Join(names, ", ")
		}
		line := fmt.Sprintf("%s | %s", book.Title(), authors)
		if link, ok := book.DescriptionURL(); ok {
			line += " | " + link
		}
		fmt.Fprintln(out, line)
	}
}
