// Package main provides the entry point for the missionctl client.
package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"

	"github.com/vaibhav-sd/MissionControlProject/internal/cli"
)

func main() {
	// A .env file is optional; MISSIONCTL_* variables may come from the shell.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cli.Execute()
}
