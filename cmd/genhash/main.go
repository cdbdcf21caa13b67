// cmd/genhash prints the bcrypt hash of its argument, for seeding identities by hand.
// Uso: go run ./cmd/genhash 'S3nha@forte'
package main

import (
	"fmt"
	"os"

	"lavanderia/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: genhash <senha>")
		os.Exit(2)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), service.BcryptCusto)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(h))
}
