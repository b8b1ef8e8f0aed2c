// seed_permissions genera el script SQL que puebla role_permissions con los
// permisos por defecto de cada rol del portal.
//
// Uso: go run ./cmd/seed_permissions [ruta/salida.sql]
// Por defecto escribe internal/infrastructure/postgres/migrations/002_seed_role_permissions.sql
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jhoicas/Concesionario-api/internal/application/catalog"
)

func main() {
	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_role_permissions.sql")
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	n, err := writeSeed(out, catalog.DefaultGrants())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d permisos\n", outPath, n)
}

// writeSeed escribe un INSERT por rol, en orden estable, y devuelve cuántos permisos escribió.
func writeSeed(w io.Writer, grants map[string][]string) (int, error) {
	roles := make([]string, 0, len(grants))
	for role := range grants {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	var b strings.Builder
	b.WriteString("-- Permisos por defecto de cada rol ({recurso}:{operación})\n")
	b.WriteString("-- Generado por cmd/seed_permissions; no editar a mano\n\n")
	total := 0
	for _, role := range roles {
		perms := append([]string(nil), grants[role]...)
		sort.Strings(perms)
		if len(perms) == 0 {
			continue
		}
		fmt.Fprintf(&b, "-- %s\n", role)
		b.WriteString("INSERT INTO role_permissions (role, permission) VALUES\n")
		for i, p := range perms {
			sep := ","
			if i == len(perms)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "  ('%s', '%s')%s\n", escapeSQL(role), escapeSQL(p), sep)
		}
		b.WriteString("ON CONFLICT (role, permission) DO NOTHING;\n\n")
		total += len(perms)
	}
	_, err := io.WriteString(w, b.String())
	return total, err
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
