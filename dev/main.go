package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func create(recreate, skipPrompts bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll("dev/.state", 0777)
	if err != nil && !os.IsExist(err) {
		return err
	}

	err = CreateIdentityDB()
	if err != nil {
		return err
	}
	if skipPrompts {
		return nil
	}
	err = SetupCatalogTests()
	if err != nil {
		return err
	}
	return WriteLocalConfig()
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	skipPrompts := flag.Bool("no-prompt", false, "only create the state directory and databases")
	flag.Parse()

	err := create(*recreate, *skipPrompts)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
