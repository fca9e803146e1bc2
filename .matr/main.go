// +build matr

package main

import (
	"context"
	"os"

	"github.com/matr-builder/matr/matr"
)

func main() {
	// Create new Matr instance
	m := matr.New()
	
	
	//  Build will build the requested binary
	m.Handle(&matr.Task{
		Name: "build",
		Summary: "Build will build the requested binary",
		Doc: `Build will build the requested binary`,
		Handler: Build,
	})
	
	//  Lint run linters against codebase
	m.Handle(&matr.Task{
		Name: "lint",
		Summary: "Lint run linters against codebase",
		Doc: `Lint run linters against codebase`,
		Handler: Lint,
	})
	
	//  Test runs the unit tests, with the race detector when -race is given
	m.Handle(&matr.Task{
		Name: "test",
		Summary: "Test runs the unit tests, with the race detector when -race is given",
		Doc: `Test runs the unit tests, with the race detector when -race is given`,
		Handler: Test,
	})
	
	//  Docker will build the docker image for the sync server
	m.Handle(&matr.Task{
		Name: "docker",
		Summary: "Docker will build the docker image for the sync server",
		Doc: `Docker will build the docker image for the sync server`,
		Handler: Docker,
	})
	
	//  Run will run deadline-sync with the given arguments, serve when left empty
	m.Handle(&matr.Task{
		Name: "run",
		Summary: "Run will run deadline-sync with the given arguments, serve when left empty",
		Doc: `Run will run deadline-sync with the given arguments, serve when left empty`,
		Handler: Run,
	})

	// Run Matr
	if err := m.Run(context.Background(), os.Args[1:]...); err != nil {
		os.Stderr.WriteString("ERROR: "+err.Error()+"\n")
	}
}
