//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds gltool into ./bin.
func (Build) Tool() error {
	if err := os.MkdirAll("bin", 0755); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "gltool"), "./cmd/gltool"), withStream())
	return err
}

// Runs go mod tidy.
func (Build) Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"), withStream())
	return err
}

// Removes build output.
func (Build) Clean() error {
	return os.RemoveAll("bin")
}
