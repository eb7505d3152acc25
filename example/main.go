// FILE: lixenwraith/confvar/example/main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/lixenwraith/confvar"
)

// Limits is stored as a single struct-valued variable
type Limits struct {
	MaxConns int           `yaml:"max_conns"`
	Idle     time.Duration `yaml:"idle"`
}

const document = `
server:
  host: 0.0.0.0
  port: not-a-number   # rejected, port keeps its value
  upstreams: [a.internal:9000, b.internal:9000]
limits:
  max_conns: 512
  idle: 90s
feature_flags:
  metrics: true
  tracing: false
unknown:
  ignored: 1           # never creates a variable
`

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	reg := config.NewWithLogger(logger)

	host := config.MustDeclare(reg, "server.host", "listen address", "localhost")
	port := config.MustDeclare(reg, "server.port", "listen port", 8080)
	upstreams := config.MustDeclare(reg, "server.upstreams", "upstream servers", []string{})
	limits := config.MustDeclare(reg, "limits", "connection limits", Limits{MaxConns: 64, Idle: time.Minute})
	flags := config.MustDeclare(reg, "feature_flags", "feature switches", map[string]bool{})

	dir, err := os.MkdirTemp("", "confvar-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "app.yaml")
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		log.Fatal(err)
	}

	if err := reg.LoadFile(path); err != nil {
		// Bad entries are reported together, good ones are already applied
		fmt.Println("load reported:", err)
	}

	fmt.Println("host:", host.Value())
	fmt.Println("port:", port.Value())
	fmt.Println("upstreams:", upstreams.ValueString())
	fmt.Printf("limits: %+v\n", limits.Value())
	fmt.Println("flags:", flags.ValueString())
	_, found := reg.Lookup("unknown.ignored")
	fmt.Println("unknown.ignored declared:", found)

	// Re-declaring with another type is refused
	if _, err := config.Declare(reg, "server.port", "listen port", "8080"); errors.Is(err, config.ErrTypeMismatch) {
		fmt.Println("redeclare:", err)
	}

	// Environment overrides go through the same canonical form
	os.Setenv("APP_SERVER_PORT", "9090")
	defer os.Unsetenv("APP_SERVER_PORT")
	if err := reg.ApplyEnv("APP_"); err != nil {
		log.Fatal(err)
	}
	fmt.Println("port after env:", port.Value())

	var server struct {
		Host      string   `yaml:"host"`
		Port      int      `yaml:"port"`
		Upstreams []string `yaml:"upstreams"`
	}
	if err := reg.Scan("server", &server); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("scanned: %+v\n", server)

	fmt.Print(reg.Debug())
}
