package main

import (
	"fmt"
	"log"

	"github.com/railtransit/reservation-engine/internal/utils"
)

func main() {
	secret, err := utils.GenerateTokenSecret()
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("Add this to your .env file:")
	fmt.Println()
	fmt.Printf("TOKEN_SECRET=%s\n", secret)
	fmt.Println()
	fmt.Println("Keep this secret safe and never commit it to version control.")
}
