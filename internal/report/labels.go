package report

import (
	"fmt"
	"strings"
)

// Labels are the fixed strings of a report.
type Labels struct {
	Title         string
	GeneratedAt   string
	Summary       string
	TotalExpected string
	Movements     string
	Matched       string
	Unmatched     string
	MatchRate     string
	UnmatchedList string
	MatchedList   string
	AllMovements  string
}

// EnglishLabels is the default report language.
var EnglishLabels = Labels{
	Title:         "BANK STATEMENT VERIFICATION REPORT",
	GeneratedAt:   "Generated",
	Summary:       "SUMMARY:",
	TotalExpected: "Total expected amounts",
	Movements:     "Statement movements",
	Matched:       "Matched",
	Unmatched:     "Unmatched",
	MatchRate:     "Match rate",
	UnmatchedList: "UNMATCHED AMOUNTS:",
	MatchedList:   "MATCHES FOUND:",
	AllMovements:  "ALL STATEMENT MOVEMENTS:",
}

// PortugueseLabels match the wording operators of Portuguese bank exports expect.
var PortugueseLabels = Labels{
	Title:         "RELATÓRIO DE VERIFICAÇÃO DE EXTRATOS BANCÁRIOS",
	GeneratedAt:   "Data/Hora",
	Summary:       "RESUMO:",
	TotalExpected: "Total valores folha de cofre",
	Movements:     "Movimentos dos extratos",
	Matched:       "Encontrados",
	Unmatched:     "Não encontrados",
	MatchRate:     "Taxa correspondência",
	UnmatchedList: "VALORES NÃO ENCONTRADOS:",
	MatchedList:   "CORRESPONDÊNCIAS ENCONTRADAS:",
	AllMovements:  "TODOS OS MOVIMENTOS DOS EXTRATOS:",
}

// LabelsFor returns the labels for a language code ("en" or "pt").
func LabelsFor(lang string) (Labels, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "en", "english":
		return EnglishLabels, nil
	case "pt", "pt-pt", "portuguese":
		return PortugueseLabels, nil
	default:
		return Labels{}, fmt.Errorf("unsupported report language %q", lang)
	}
}
