package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/david/support-finder/internal/catalog"
	"github.com/david/support-finder/internal/discovery"
	"github.com/david/support-finder/internal/ingest"
	"github.com/david/support-finder/internal/locale"
	"github.com/david/support-finder/internal/logger"
)

// quiz runs a domain's question flow in the terminal and prints the
// matching entities.
func main() {
	domainID := flag.String("domain", "legal", "Domain to run")
	lang := flag.String("lang", locale.DefaultLanguage, "Display language")
	query := flag.String("q", "", "Free-text search applied to the results")
	flag.Parse()

	log := logger.New("warn", "text")
	defer func() { _ = log.Sync() }()

	cfg, err := catalog.LoadConfig("")
	if err != nil {
		log.Fatal("failed to load domains", zap.Error(err))
	}
	cat, err := loadCatalog(context.Background(), cfg, ingest.NewFetcher(ingest.FetchConfig{}), log)
	if err != nil {
		log.Fatal("failed to load catalog", zap.Error(err))
	}
	d, err := cat.Domain(*domainID)
	if err != nil {
		log.Fatal("unknown domain", zap.Error(err))
	}

	session := discovery.NewSession(d, log)
	if err := ask(session, locale.NormalizeLanguage(*lang), bufio.NewScanner(os.Stdin), os.Stdout); err != nil {
		log.Fatal("quiz aborted", zap.Error(err))
	}
	printResults(session, locale.NormalizeLanguage(*lang), *query, os.Stdout)
}

// loadCatalog reads the embedded datasets and fetches remote ones through f.
func loadCatalog(ctx context.Context, cfg *catalog.Config, f *ingest.Fetcher, log *zap.Logger) (*catalog.Catalog, error) {
	reg, err := locale.Embedded()
	if err != nil {
		return nil, err
	}
	return catalog.Load(ctx, cfg, reg, catalog.EmbeddedSource(cfg, log).WithFetcher(f), log)
}

// ask reads one line per question: an option number, "s" to skip or "q" to
// stop the quiz.
func ask(session *discovery.Session, lang string, in *bufio.Scanner, out io.Writer) error {
	qc := session.Quiz()
	skip := session.Text("buttons.skip", lang)
	closeLabel := session.Text("buttons.close", lang)

	for !qc.Completed() {
		q, _ := qc.Current()
		answered, total := qc.Progress()
		fmt.Fprintf(out, "\n[%d/%d] %s\n", qc.CurrentIndex()+1, total, q.Prompt(session.Domain().Text, lang))
		for i, a := range q.Answers {
			fmt.Fprintf(out, "  %d) %s\n", i+1, a.Text(session.Domain().Text, lang))
		}
		fmt.Fprintf(out, "  s) %s   q) %s   (%d answered)\n> ", skip, closeLabel, answered)

		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			qc.Close()
			return nil
		}

		switch input := strings.TrimSpace(in.Text()); input {
		case "s", "":
			if err := qc.Skip(); err != nil {
				return err
			}
		case "q":
			qc.Close()
		default:
			n, err := strconv.Atoi(input)
			if err != nil {
				fmt.Fprintln(out, "?")
				continue
			}
			if err := qc.Choose(n - 1); err != nil {
				fmt.Fprintln(out, err)
			}
		}
	}
	return nil
}

func printResults(session *discovery.Session, lang, query string, out io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(session.Text("title", lang))
	t.AppendHeader(table.Row{"ID", "Title", "Location", "Support", "Urgency", "Contact"})

	for _, e := range session.ResultsFor(query, lang) {
		contact := e.Contact.Phone
		if contact == "" {
			contact = e.Contact.Email
		}
		if contact == "" {
			contact = e.Contact.Website
		}
		t.AppendRow(table.Row{e.ID, e.Title.Text(lang), e.Location, strings.Join(e.SupportTypes, ", "), e.Urgency, contact})
	}

	filters := session.Filters()
	parts := make([]string, 0, len(filters))
	for _, dim := range filters.Active() {
		parts = append(parts, dim+"="+filters.Get(dim))
	}
	t.AppendFooter(table.Row{"", strings.Join(parts, " "), "", "", "", fmt.Sprintf("%d", t.Length())})
	t.Render()
}
