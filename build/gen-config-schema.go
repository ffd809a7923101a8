package main

import (
	"log"
	"os"

	"github.com/grassfps/grassfps/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s path/to/schema.json", os.Args[0])
	}
	bs, err := config.ReflectSchema()
	if err != nil {
		log.Fatalf("failed to reflect configuration schema: %v", err)
	}
	if err := os.WriteFile(os.Args[1], append(bs, '\n'), 0o644); err != nil {
		log.Fatal(err)
	}
}
