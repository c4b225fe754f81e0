package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/tsawler/pdflayer/config"
	"github.com/tsawler/pdflayer/fetch"
	"github.com/tsawler/pdflayer/inspect"
)

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	password := fs.String("password", "", "Document password")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("inspect needs exactly one source, got %d", fs.NArg())
	}

	fetcher, err := fetch.NewRouter(config.Duration(cfg.Fetch.Timeout, 30*time.Second), cfg.Fetch.FileRoot)
	if err != nil {
		return err
	}
	data, err := fetcher.Fetch(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}

	info, err := inspect.Inspect(data, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Kind:      %s\n", info.Kind)
	fmt.Printf("Size:      %d bytes\n", info.Size)
	fmt.Printf("Version:   %s\n", info.Version)
	fmt.Printf("Pages:     %d\n", info.PageCount)
	fmt.Printf("Encrypted: %t\n", info.Encrypted)
	if info.HeaderOffset > 0 {
		fmt.Printf("Header at: %d\n", info.HeaderOffset)
	}
	if info.ParseErr != nil {
		fmt.Printf("Warning:   %v\n", info.ParseErr)
	}
	return nil
}
