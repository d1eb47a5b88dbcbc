//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles both executables into ./bin
func Build() error {
	mg.Deps(BuildEmulator, BuildMemgen)
	fmt.Println("Compilation finished")
	return nil
}

// goCommand runs the go tool with cgo enabled, the HDF5 bindings need it.
func goCommand(args ...string) error {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func BuildEmulator() error {
	fmt.Println("Building emulator executable...")
	return goCommand("build", "-o", "./bin/emulator", "./emulator")
}

func BuildMemgen() error {
	fmt.Println("Building memgen executable...")
	return goCommand("build", "-o", "./bin/memgen", "./memgen")
}

// Memories regenerates the default trigger memories in ./memories
func Memories() error {
	mg.Deps(BuildMemgen)
	cmd := exec.Command("./bin/memgen", "-out", "./memories")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func Test() error {
	fmt.Println("Running tests...")
	return goCommand("test", "./pkg/...", "./internal/...", "./emulator/...")
}
