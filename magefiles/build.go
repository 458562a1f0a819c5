//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the engine binary into bin/kiln.
func (Build) Engine() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/kiln", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Imports every model without a .dsm cache.
func (Build) MeshCache() error {
	mg.Deps(Build.Engine)
	if _, err := executeCmd("bin/kiln", withArgs("-config", configPath, "-warm-cache"), withStream()); err != nil {
		return err
	}
	return nil
}
