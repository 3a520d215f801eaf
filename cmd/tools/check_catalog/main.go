package main

import (
	"context"
	"flag"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/david/support-finder/internal/catalog"
	"github.com/david/support-finder/internal/locale"
	"github.com/david/support-finder/internal/logger"
)

// check_catalog prints how every dataset normalizes and which interface
// keys have no translation.
func main() {
	domainFile := flag.String("domains", "", "domains.yaml to check (default: embedded)")
	lang := flag.String("lang", locale.DefaultLanguage, "Language to check translations for")
	flag.Parse()

	log := logger.New("warn", "text")
	defer func() { _ = log.Sync() }()

	cfg, err := catalog.LoadConfig(*domainFile)
	if err != nil {
		log.Fatal("failed to load domains", zap.Error(err))
	}
	reg, err := locale.Embedded()
	if err != nil {
		log.Fatal("failed to load dictionaries", zap.Error(err))
	}
	src := catalog.EmbeddedSource(cfg, log)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Domain", "Dataset", "Shape", "Seen", "Kept", "Missing ID", "Duplicates", "Missing Texts"})

	missingByDomain := map[string][]string{}
	for _, d := range cfg.Domains {
		_, rep, err := src.Load(context.Background(), d.ID)
		if err != nil {
			t.AppendRow(table.Row{d.ID, d.Dataset, "error: " + err.Error(), "-", "-", "-", "-", "-"})
			continue
		}
		missing := missingKeys(reg, d, *lang)
		missingByDomain[d.ID] = missing
		t.AppendRow(table.Row{d.ID, d.Dataset, rep.Shape, rep.Seen, rep.Kept, rep.MissingID, rep.Duplicates, len(missing)})
	}
	t.Render()

	for _, d := range cfg.Domains {
		for _, key := range missingByDomain[d.ID] {
			log.Warn("missing translation", zap.String("domain", d.ID), zap.String("key", key), zap.String("lang", *lang))
		}
	}
}

// missingKeys lists the dictionary keys d refers to that resolve neither in
// its namespace nor in common.
func missingKeys(reg *locale.Registry, d catalog.DomainConfig, lang string) []string {
	keys := map[string]bool{d.Title: true}
	for _, q := range d.Quiz {
		keys[q.Question] = true
		for _, a := range q.Answers {
			if a.LabelKey != "" {
				keys[a.LabelKey] = true
			}
		}
	}

	var out []string
	for key := range keys {
		if locale.Missing(reg.Dictionary(d.Namespace), key, lang) &&
			locale.Missing(reg.Dictionary(locale.CommonNamespace), key, lang) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
