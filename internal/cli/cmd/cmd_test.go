package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agonsep/21stCentury/internal/api"
	"github.com/agonsep/21stCentury/internal/database"
	"github.com/agonsep/21stCentury/pkg/auth"
	"github.com/agonsep/21stCentury/pkg/models"
)

const adminPassword = "correct-horse-battery"

type cliEnv struct {
	db      *database.BunDB
	server  *httptest.Server
	cfgFile string
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	jwtManager := auth.NewJWTManager("cli-test-secret-key-with-enough-bytes", "catalog", time.Hour)
	passwords, err := auth.NewPasswordVerifier(adminPassword, "")
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewServer(db, jwtManager, passwords, api.Options{}).Handler())
	t.Cleanup(srv.Close)

	viper.Reset()
	t.Cleanup(viper.Reset)
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	return &cliEnv{
		db:      db,
		server:  srv,
		cfgFile: filepath.Join(t.TempDir(), "config.yaml"),
	}
}

// run executes catalogctl with args against the test server
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--server", e.server.URL, "--config", e.cfgFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) seedProduct(t *testing.T, name string) *models.Product {
	t.Helper()

	origin := "USA"
	p := &models.Product{
		Category:     "Level 2 Charger",
		Name:         name,
		Cost:         1299.5,
		Currency:     "USD",
		Rating:       "4.5/5",
		Manufacturer: "ChargePoint",
		Origin:       &origin,
		NEVIEligible: true,
	}
	require.NoError(t, e.db.Products.Create(context.Background(), p))
	return p
}

func TestHealthCommand(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	out, err = env.run(t, "health", "-o", "json")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &health))
	assert.Equal(t, "OK", health["status"])
}

func TestLoginStatusLogout(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")

	_, err = env.run(t, "login", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid password")

	out, err = env.run(t, "login", "--password", adminPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in")

	data, err := os.ReadFile(env.cfgFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "token")

	out, err = env.run(t, "status", "-o", "json")
	require.NoError(t, err)
	var status statusInfo
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.LoggedIn)
	assert.Equal(t, "admin", status.Subject)

	_, err = env.run(t, "logout")
	require.NoError(t, err)

	out, err = env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")
}

func TestUsersCommands(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "users", "create", "--name", "Ada Lovelace", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user 1")

	_, err = env.run(t, "users", "create", "--name", "No Email")
	require.Error(t, err)

	out, err = env.run(t, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "EMAIL")
	assert.Contains(t, out, "ada@example.com")

	out, err = env.run(t, "users", "get", "1", "-o", "json")
	require.NoError(t, err)
	var user models.User
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, "Ada Lovelace", user.Name)

	_, err = env.run(t, "users", "get", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User not found")

	_, err = env.run(t, "users", "get", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestProductsCommands(t *testing.T) {
	env := setupCLI(t)
	p := env.seedProduct(t, "Home Flex")
	env.seedProduct(t, "Express Plus")

	out, err := env.run(t, "products", "list", "--sort", "name")
	require.NoError(t, err)
	assert.Contains(t, out, "Home Flex")
	assert.Contains(t, out, "1,299.5 USD")

	out, err = env.run(t, "products", "list", "--search", "express", "-o", "json")
	require.NoError(t, err)
	var products []models.Product
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Express Plus", products[0].Name)

	_, err = env.run(t, "products", "list", "--sort", "bogus")
	require.Error(t, err)

	out, err = env.run(t, "products", "get", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "NEVI eligible: yes")

	out, err = env.run(t, "products", "facets")
	require.NoError(t, err)
	assert.Contains(t, out, "ChargePoint")
	assert.Contains(t, out, "USA")

	// Mutations need a token
	_, err = env.run(t, "products", "delete", "1")
	require.Error(t, err)

	_, err = env.run(t, "login", "--password", adminPassword)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "product.json")
	p.Name = "Home Flex Pro"
	p.Cost = 1499
	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, data, 0o644))

	out, err = env.run(t, "products", "update", "1", "-f", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Home Flex Pro")

	out, err = env.run(t, "products", "create", "-f", file, "-o", "json")
	require.NoError(t, err)
	var created models.Product
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, int64(3), created.ID)

	out, err = env.run(t, "products", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted product 1")
}

func TestMapsCommands(t *testing.T) {
	env := setupCLI(t)

	icons := []models.Icon{
		{ID: "a", Type: "ev-demand", Position: models.LatLng{Lat: 40.7, Lng: -74}, Name: "EV Demand 1"},
		{ID: "b", Type: "battery", Position: models.LatLng{Lat: 40.71, Lng: -74}, Name: "Battery Storage 1"},
	}
	m := &models.Map{
		Name:        "Depot",
		Center:      models.LatLng{Lat: 40.7, Lng: -74},
		Layer:       models.LayerStreet,
		Icons:       icons,
		Connections: models.ResolveConnections(icons, []models.Connection{{ID: "c", From: "b", To: "a"}}),
	}
	require.NoError(t, env.db.Maps.Create(context.Background(), m))

	out, err := env.run(t, "maps", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Depot")
	assert.Contains(t, out, "CONNECTIONS")

	out, err = env.run(t, "maps", "get", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Battery Storage 1")
	assert.Contains(t, out, "EV Demand 1")

	out, err = env.run(t, "maps", "layers")
	require.NoError(t, err)
	assert.Contains(t, out, "satellite")

	_, err = env.run(t, "maps", "delete", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out, err = env.run(t, "maps", "delete", "1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted map 1")

	_, err = env.run(t, "maps", "get", "1")
	require.Error(t, err)
}

func TestMapsCreateCommand(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "maps", "create", "--name", "Depot", "--layer", "street",
		"--icon", "solar@40.71,-74.00",
		"--icon", "battery@40.72,-74.01",
		"--icon", "ev-demand@40.73,-74.02",
		"--connect", "1:2", "--connect", "2:3")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved map 1 (Depot) with 3 icons and 2 connections")

	m, err := env.db.Maps.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.LayerStreet, m.Layer)
	assert.Equal(t, models.LatLng{Lat: 40.71, Lng: -74.00}, m.Center)
	require.Len(t, m.Icons, 3)
	assert.Equal(t, "Solar PV 1", m.Icons[0].Name)
	require.Len(t, m.Connections, 2)
	assert.Equal(t, m.Icons[0].ID, m.Connections[0].From)
	assert.Equal(t, m.Icons[1].ID, m.Connections[0].To)
	assert.Equal(t, "Battery Storage 1", m.Connections[1].FromName)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no icons", []string{"--name", "Empty"}, "no icons"},
		{"bad icon", []string{"--name", "X", "--icon", "solar"}, "type@lat,lng"},
		{"unknown type", []string{"--name", "X", "--icon", "reactor@1,2"}, "unknown icon type"},
		{"connector type", []string{"--name", "X", "--icon", "cable@1,2"}, "cannot be placed"},
		{"out of range", []string{"--name", "X", "--icon", "solar@95,0"}, "latitude"},
		{"self cable", []string{"--name", "X", "--icon", "solar@1,2", "--icon", "battery@1,3", "--connect", "1:1"}, "two different icons"},
		{"bad index", []string{"--name", "X", "--icon", "solar@1,2", "--icon", "battery@1,3", "--connect", "1:3"}, "between 1 and 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, append([]string{"maps", "create"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	count, err := env.db.Maps.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
