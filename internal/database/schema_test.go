package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const migrationsDir = "../../migrations"

var expectedTables = map[string]string{
	"users":            "00001_create_users_table.sql",
	"refresh_tokens":   "00002_create_refresh_tokens_table.sql",
	"categories":       "00003_create_categories_table.sql",
	"products":         "00004_create_products_table.sql",
	"cart_items":       "00005_create_cart_items_table.sql",
	"wishlist_items":   "00006_create_wishlist_items_table.sql",
	"orders":           "00007_create_orders_table.sql",
	"order_items":      "00008_create_order_items_table.sql",
	"contact_messages": "00009_create_contact_messages_table.sql",
}

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		t.Fatalf("Failed to read migration %s: %v", name, err)
	}
	return string(content)
}

func TestMigrationFilesAreSequential(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("No SQL migration files found")
	}

	sort.Strings(files)
	for i, file := range files {
		prefix := filepath.Base(file)[:5]
		want := fmt.Sprintf("%05d", i+1)
		if prefix != want {
			t.Errorf("Migration %s out of sequence, expected prefix %s", filepath.Base(file), want)
		}
	}
}

func TestMigrationFilesHaveGooseDirectives(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}

	directives := []string{
		"-- +goose Up",
		"-- +goose Down",
		"-- +goose StatementBegin",
		"-- +goose StatementEnd",
	}

	for _, file := range files {
		content := readMigration(t, filepath.Base(file))
		for _, directive := range directives {
			if !strings.Contains(content, directive) {
				t.Errorf("Migration %s missing %q", filepath.Base(file), directive)
			}
		}
	}
}

func TestMigrationsCreateAndDropTables(t *testing.T) {
	for table, file := range expectedTables {
		t.Run(table, func(t *testing.T) {
			content := readMigration(t, file)
			if !strings.Contains(content, "CREATE TABLE IF NOT EXISTS "+table) {
				t.Errorf("%s does not create %s", file, table)
			}
			if !strings.Contains(content, "DROP TABLE IF EXISTS "+table) {
				t.Errorf("%s does not drop %s", file, table)
			}
		})
	}
}

func TestMigrationsDeclareConstraints(t *testing.T) {
	cases := []struct {
		file      string
		fragments []string
	}{
		{
			file: "00004_create_products_table.sql",
			fragments: []string{
				"slug VARCHAR(220) UNIQUE NOT NULL",
				"price NUMERIC(12, 2)",
				"original_price NUMERIC(12, 2)",
				"CHECK (stock >= 0)",
				"is_available BOOLEAN",
				"FOREIGN KEY (category_id)",
			},
		},
		{
			file:      "00005_create_cart_items_table.sql",
			fragments: []string{"UNIQUE (user_id, product_id)", "CHECK (quantity >= 1)", "CHECK (quantity <= 99)"},
		},
		{
			file:      "00006_create_wishlist_items_table.sql",
			fragments: []string{"UNIQUE (user_id, product_id)"},
		},
		{
			file:      "00007_create_orders_table.sql",
			fragments: []string{"order_number VARCHAR(32) UNIQUE NOT NULL", "'pending'", "'confirmed'", "'shipped'", "'delivered'", "'cancelled'"},
		},
		{
			file:      "00008_create_order_items_table.sql",
			fragments: []string{"price NUMERIC(12, 2) NOT NULL", "product_name VARCHAR"},
		},
		{
			file:      "00009_create_contact_messages_table.sql",
			fragments: []string{"is_read BOOLEAN NOT NULL DEFAULT FALSE", "'No Subject'"},
		},
	}

	for _, tc := range cases {
		content := readMigration(t, tc.file)
		for _, fragment := range tc.fragments {
			if !strings.Contains(content, fragment) {
				t.Errorf("%s missing %q", tc.file, fragment)
			}
		}
	}
}
