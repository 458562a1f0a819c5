//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

const configPath = "config/engine.toml"

// Runs the testbed with the sample configuration.
func (Run) Engine() error {
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", configPath), withStream()); err != nil {
		return err
	}
	return nil
}
