package main

import (
	"fmt"
	"os"

	"github.com/ostafen/pnglet/cmd/cmd"
	"github.com/ostafen/pnglet/internal/env"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "version" || os.Args[1] == "--version") {
		PrintLogo()
		return
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func PrintLogo() {
	fmt.Println("                   _      _   ")
	fmt.Println(" _ __  _ __   __ _| | ___| |_ ")
	fmt.Println("| '_ \\| '_ \\ / _` | |/ _ \\ __|")
	fmt.Println("| |_) | | | | (_| | |  __/ |_ ")
	fmt.Println("| .__/|_| |_|\\__, |_|\\___|\\__|")
	fmt.Println("|_|          |___/            ")
	fmt.Println()
	fmt.Println("PNG encoder, decoder and carver")
	fmt.Println()
	fmt.Printf("Version:   %s\n", env.Version)
	fmt.Printf("Commit:    %s\n", env.CommitHash)
	fmt.Printf("Build Time: %s\n", env.BuildTime)
}
