// seed_products genera un script SQL para poblar el catálogo mínimo (tabla products)
// a partir de un CSV exportado del sistema de productos: sku;nombre[;id].
//
// Uso: go run ./cmd/seed_products [-latin1] [ruta/productos.csv]
// Por defecto busca productos.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/seed_products.sql
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// productNamespace fija los IDs derivados del SKU entre ejecuciones.
var productNamespace = uuid.MustParse("6f1c1f4e-3b8a-4f57-9a44-5f0c2f9d7a10")

type productRow struct {
	id   string
	sku  string
	name string
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1 (exportaciones de Excel)")
	flag.Parse()

	csvPath := "productos.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}

	rows, err := readProducts(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "seed_products.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d productos\n", outPath, len(rows))
}

// readProducts lee filas sku;nombre[;id]. Sin id se deriva uno estable del SKU.
// La primera fila se descarta si es encabezado; los SKU repetidos conservan la última fila.
func readProducts(r io.Reader) ([]productRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	bySKU := make(map[string]productRow)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("línea %d: se esperan al menos sku;nombre", line)
		}
		p := productRow{sku: strings.TrimSpace(rec[0]), name: strings.TrimSpace(rec[1])}
		if p.sku == "" || p.name == "" {
			continue
		}
		if len(rec) > 2 {
			p.id = strings.TrimSpace(rec[2])
		}
		if p.id == "" {
			p.id = uuid.NewSHA1(productNamespace, []byte(p.sku)).String()
		}
		bySKU[p.sku] = p
	}

	rows := make([]productRow, 0, len(bySKU))
	for _, p := range bySKU {
		rows = append(rows, p)
	}
	// Orden por SKU para salida estable
	sort.Slice(rows, func(i, j int) bool { return rows[i].sku < rows[j].sku })
	return rows, nil
}

func writeSQL(w io.Writer, rows []productRow) error {
	var b strings.Builder
	b.WriteString("-- Catálogo mínimo para el libro de stock\n")
	b.WriteString("-- Generado por cmd/seed_products\n\n")
	if len(rows) == 0 {
		b.WriteString("-- Sin productos\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("INSERT INTO products (id, sku, name) VALUES\n")
	for i, p := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', '%s', '%s')%s\n", escapeSQL(p.id), escapeSQL(p.sku), escapeSQL(p.name), sep)
	}
	b.WriteString("ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name;\n")
	_, err := io.WriteString(w, b.String())
	return err
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
