//go:build matr
// +build matr

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matr-builder/matr/matr"
	"github.com/pkg/errors"
	"github.com/quesurifn/portal-deadline-sync/pkg/sliceutil"
)

// Build will build the requested binary
func Build(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	var platform = fs.String("p", "linux", "platform")
	fs.Parse(args)
	args = fs.Args()

	if len(args) < 1 {
		// every directory under ./cmd is a binary
		entries, err := os.ReadDir("./cmd")
		if err != nil {
			log.Fatal(err)
		}

		for _, e := range entries {
			if e.IsDir() {
				args = append(args, e.Name())
			}
		}
	}

	var wg sync.WaitGroup

	for _, b := range args {
		wg.Add(1)
		go func(b string) {
			startTime := time.Now()
			defer func() {
				fmt.Println("Finished Building:", b, time.Since(startTime))
				wg.Done()
			}()
			fmt.Println("Building:", b)
			cmd := matr.Sh(`GOOS=%s CGO_ENABLED=0 go build -ldflags '-extldflags "-static"' -o build/%s ./cmd/%s`, *platform, b, b)
			if err := cmd.Run(); err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
			}
		}(b)
	}
	wg.Wait()

	return nil
}

// Lint run linters against codebase
func Lint(ctx context.Context, args []string) error {
	if len(args) < 1 {
		args = []string{"go", "vet"}
	}

	if sliceutil.Contains(args, "go") {
		fmt.Println("Running GolangCI-Lint...")
		if err := matr.Sh(`go run github.com/golangci/golangci-lint/cmd/golangci-lint run ./...`).Run(); err != nil {
			return errors.Wrap(err, "[GO-LINT ERRORS]")
		}
	}

	if sliceutil.Contains(args, "vet") {
		fmt.Println("Running go vet...")
		if err := matr.Sh(`go vet ./...`).Run(); err != nil {
			return errors.Wrap(err, "[GO-VET ERRORS]")
		}
	}

	return nil
}

// Test runs the unit tests, with the race detector when -race is given
func Test(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	var race = fs.Bool("race", false, "enable the race detector")
	fs.Parse(args)

	flags := "-count=1"
	if *race || sliceutil.ContainsAny(fs.Args(), "ci", "race") {
		flags += " -race"
	}
	if err := matr.Sh(`go test %s ./...`, flags).Run(); err != nil {
		return errors.Wrap(err, "[TEST ERRORS]")
	}

	return nil
}

// Docker will build the docker image for the sync server
func Docker(ctx context.Context, args []string) error {
	dockerfile := "."
	imgName := "deadline-sync"
	if len(args) > 0 {
		dockerfile = args[0] + ".Dockerfile"
		imgName = args[0]
	}
	fmt.Println("Building Docker Image")
	if err := matr.Sh(`docker build %s -t portal-deadline-sync/%s:latest`, dockerfile, imgName).Run(); err != nil {
		return errors.Wrap(err, "[DOCKER ERROR]")
	}

	return nil
}

// Run will run deadline-sync with the given arguments, serve when left empty
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"serve"}
	}

	if err := matr.Sh(`go run ./cmd/deadline-sync ` + strings.Join(args, " ")).Run(); err != nil {
		return err
	}

	return nil
}
