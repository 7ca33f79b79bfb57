// seed_catalog genera un script SQL para poblar el catálogo (artículos y
// clientes) a partir de exportaciones CSV. Los exports de sistemas locales
// suelen venir en ISO-8859-1; se decodifican a UTF-8 al leer.
//
// Uso: go run ./cmd/seed_catalog [items.csv] [customers.csv]
// Escribe: migrations/002_seed_catalog.sql
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	itemsPath := "items.csv"
	customersPath := "customers.csv"
	if len(os.Args) > 1 {
		itemsPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		customersPath = os.Args[2]
	}

	items, err := readCSV(itemsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer %s: %v\n", itemsPath, err)
		os.Exit(1)
	}
	customers, err := readCSV(customersPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer %s: %v\n", customersPath, err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "migrations", "002_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Catálogo inicial generado desde exportaciones CSV\n\n")

	out.WriteString("-- 1. Artículos (code, name, description, uom, standard_rate)\n")
	nItems := 0
	for _, rec := range items {
		if len(rec) < 5 || rec[0] == "" || rec[1] == "" {
			continue
		}
		fmt.Fprintf(out, "INSERT INTO items (id, code, name, description, unit_measure, standard_rate)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', %s, %s, %s)\n",
			uuid.New().String(), escapeSQL(rec[0]), escapeSQL(rec[1]),
			quoteOrNull(rec[2]), quoteOrNull(rec[3]), coerceRate(rec[4]))
		out.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, standard_rate = EXCLUDED.standard_rate;\n")
		nItems++
	}

	out.WriteString("\n-- 2. Clientes (code, name, tax_id, email, phone)\n")
	nCustomers := 0
	for _, rec := range customers {
		if len(rec) < 5 || rec[0] == "" || rec[1] == "" {
			continue
		}
		fmt.Fprintf(out, "INSERT INTO customers (id, code, name, tax_id, email, phone)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', %s, %s, %s)\n",
			uuid.New().String(), escapeSQL(rec[0]), escapeSQL(rec[1]),
			quoteOrNull(rec[2]), quoteOrNull(rec[3]), quoteOrNull(rec[4]))
		out.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name;\n")
		nCustomers++
	}

	fmt.Printf("Generado %s: %d artículos, %d clientes\n", outPath, nItems, nCustomers)
}

// readCSV lee el archivo completo saltando la fila de encabezados.
// Si el contenido no es UTF-8 válido se decodifica como ISO-8859-1.
func readCSV(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content := string(raw)
	if !utf8.ValidString(content) {
		decoded, _, terr := transform.String(charmap.ISO8859_1.NewDecoder(), content)
		if terr != nil {
			return nil, fmt.Errorf("decodificar ISO-8859-1: %w", terr)
		}
		content = decoded
	}
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		records = records[1:] // encabezados
	}
	return records, nil
}

// coerceRate valida la tarifa del export antes de emitirla como literal SQL.
// Lo que no parsea como decimal queda en 0, igual que una tarifa ausente.
func coerceRate(s string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return "0"
	}
	return d.String()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "'", "''")
}

func quoteOrNull(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
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
