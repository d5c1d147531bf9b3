/*
Copyright © 2025 docqa
*/
package main

import (
	"github.com/joho/godotenv"

	"github.com/docqa/docqa-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()
}
