// seed_tax_rates genera el script SQL que carga las ventanas de alícuotas IBS/CBS de la reforma
// a partir de una planilla CSV exportada en ISO-8859-1 (separador ';', decimales con coma).
//
// Columnas: categoria;vigencia_inicio;vigencia_fim;ibs_pct;cbs_pct;seletivo_pct
// Fechas DD/MM/AAAA; vigencia_fim vacía = vigente sin fin. Los porcentajes se guardan como fracción.
//
// Uso: go run ./cmd/seed_tax_rates [ruta/aliquotas.csv]
// Por defecto busca aliquotas.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_tax_reform_rates.sql
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type window struct {
	category  string
	from      time.Time
	to        *time.Time
	ibs       decimal.Decimal
	cbs       decimal.Decimal
	selective decimal.Decimal
}

func main() {
	csvPath := "aliquotas.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	windows, err := parse(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	sort.Slice(windows, func(i, j int) bool {
		if windows[i].category != windows[j].category {
			return windows[i].category < windows[j].category
		}
		return windows[i].from.Before(windows[j].from)
	})

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_tax_reform_rates.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Ventanas de alícuotas IBS/CBS (reforma tributaria, LC 214/2025)\n")
	fmt.Fprintf(out, "-- Generado desde %s\n\n", filepath.Base(csvPath))
	out.WriteString("INSERT INTO tax_reform_rate_windows (id, category, valid_from, valid_to, ibs_rate, cbs_rate, selective_rate) VALUES\n")
	for i, w := range windows {
		validTo := "NULL"
		if w.to != nil {
			validTo = "'" + w.to.Format(time.RFC3339) + "'"
		}
		sep := ","
		if i == len(windows)-1 {
			sep = ""
		}
		fmt.Fprintf(out, "  ('%s', '%s', '%s', %s, %s, %s, %s)%s\n",
			seedID(w), escapeSQL(w.category), w.from.Format(time.RFC3339), validTo,
			w.ibs.String(), w.cbs.String(), w.selective.String(), sep)
	}
	out.WriteString("ON CONFLICT (id) DO UPDATE SET\n")
	out.WriteString("  valid_to = EXCLUDED.valid_to, ibs_rate = EXCLUDED.ibs_rate,\n")
	out.WriteString("  cbs_rate = EXCLUDED.cbs_rate, selective_rate = EXCLUDED.selective_rate;\n")

	fmt.Printf("Generado %s: %d ventanas\n", outPath, len(windows))
}

func parse(r io.Reader) ([]window, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = 6

	var (
		out  []window
		line int
	)
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "categoria") {
			continue
		}
		w, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil, errors.New("planilla sin ventanas")
	}
	return out, nil
}

func parseRecord(rec []string) (window, error) {
	w := window{category: strings.ToUpper(strings.TrimSpace(rec[0]))}
	from, err := time.Parse("02/01/2006", strings.TrimSpace(rec[1]))
	if err != nil {
		return w, fmt.Errorf("vigencia_inicio: %w", err)
	}
	w.from = from
	if s := strings.TrimSpace(rec[2]); s != "" {
		to, err := time.Parse("02/01/2006", s)
		if err != nil {
			return w, fmt.Errorf("vigencia_fim: %w", err)
		}
		// Inclusivo: la ventana cubre todo el último día.
		end := to.Add(24*time.Hour - time.Second)
		if end.Before(from) {
			return w, errors.New("vigencia_fim anterior a vigencia_inicio")
		}
		w.to = &end
	}
	rates := make([]decimal.Decimal, 3)
	for i, raw := range rec[3:6] {
		raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
		if raw == "" {
			raw = "0"
		}
		pct, err := decimal.NewFromString(raw)
		if err != nil {
			return w, fmt.Errorf("alícuota %q: %w", rec[3+i], err)
		}
		if pct.IsNegative() {
			return w, fmt.Errorf("alícuota negativa: %s", pct)
		}
		rates[i] = pct.Div(decimal.NewFromInt(100))
	}
	w.ibs, w.cbs, w.selective = rates[0], rates[1], rates[2]
	return w, nil
}

// seedID estable por categoría e inicio, para que regenerar el script actualice en vez de duplicar.
func seedID(w window) string {
	category := w.category
	if category == "" {
		category = "GERAL"
	}
	return "seed-" + strings.ToLower(strings.ReplaceAll(category, " ", "_")) + "-" + w.from.Format("20060102")
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
