//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests of every package.
func (Test) Unit() error {
	if err := goTidy(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./engine/...", "./testbed/..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Regenerates the backend mock.
func (Test) Mocks() error {
	if _, err := executeCmd("go", withArgs("generate", "./engine/renderer/..."), withStream()); err != nil {
		return err
	}
	return nil
}
